package domain

// Build is a host build invocation and the causes recorded against it.
type Build struct {
	ID      string `json:"id" yaml:"id"`
	Project string `json:"project" yaml:"project"`
	Number  int    `json:"number" yaml:"number"`

	// Causes are kept in insertion order. The first one is the primary trigger.
	Causes []Cause `json:"causes" yaml:"causes"`

	// ParentID and Combination are set on matrix runs only.
	ParentID    string            `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Combination map[string]string `json:"combination,omitempty" yaml:"combination,omitempty"`
}

// NewBuild creates a build started by the given primary cause and any causes appended after it.
func NewBuild(id, project string, number int, causes ...Cause) *Build {
	b := &Build{
		ID:      id,
		Project: project,
		Number:  number,
		Causes:  make([]Cause, 0, len(causes)),
	}
	b.Causes = append(b.Causes, causes...)
	return b
}

// AddCause appends a cause after the ones already recorded.
func (b *Build) AddCause(c Cause) {
	b.Causes = append(b.Causes, c)
}

// CauseList returns a copy of the causes, safe to hand out for an evaluation.
func (b *Build) CauseList() []Cause {
	out := make([]Cause, len(b.Causes))
	copy(out, b.Causes)
	return out
}

// IsMatrixRun reports whether the build is a sub-invocation of a matrix build.
func (b *Build) IsMatrixRun() bool {
	return b.ParentID != ""
}

// Clone returns a deep copy of the build.
func (b *Build) Clone() *Build {
	c := *b
	c.Causes = b.CauseList()
	if b.Combination != nil {
		c.Combination = make(map[string]string, len(b.Combination))
		for k, v := range b.Combination {
			c.Combination[k] = v
		}
	}
	return &c
}
