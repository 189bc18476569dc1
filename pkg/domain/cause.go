package domain

import "fmt"

// CauseKind discriminates the origin of a build trigger.
// The set is open: hosts may record kinds this package does not know about.
type CauseKind string

const (
	CauseUser     CauseKind = "user"
	CauseUpstream CauseKind = "upstream"
	CauseTimer    CauseKind = "timer"
	CauseRemote   CauseKind = "remote"
	CauseLegacy   CauseKind = "legacy"
	CauseOther    CauseKind = "other"
)

// SystemUser is the identity recorded when a build is started by a user cause
// without an authenticated principal.
const SystemUser = "SYSTEM"

// Known reports whether the kind is one of the recognized kinds.
func (k CauseKind) Known() bool {
	switch k {
	case CauseUser, CauseUpstream, CauseTimer, CauseRemote, CauseLegacy, CauseOther:
		return true
	}
	return false
}

// Normalize maps unrecognized kinds to CauseOther.
func (k CauseKind) Normalize() CauseKind {
	if k.Known() {
		return k
	}
	return CauseOther
}

// Cause is one reason a build started.
// Only the payload fields relevant to Kind are populated.
type Cause struct {
	Kind CauseKind `json:"kind" yaml:"kind" mapstructure:"kind"`

	// UserID identifies the user for CauseUser.
	UserID string `json:"user_id,omitempty" yaml:"user_id,omitempty" mapstructure:"user_id"`

	// Upstream payload for CauseUpstream.
	UpstreamProject string `json:"upstream_project,omitempty" yaml:"upstream_project,omitempty" mapstructure:"upstream_project"`
	UpstreamBuild   int    `json:"upstream_build,omitempty" yaml:"upstream_build,omitempty" mapstructure:"upstream_build"`
	UpstreamURL     string `json:"upstream_url,omitempty" yaml:"upstream_url,omitempty" mapstructure:"upstream_url"`

	// Remote payload for CauseRemote.
	RemoteHost string `json:"remote_host,omitempty" yaml:"remote_host,omitempty" mapstructure:"remote_host"`
	Note       string `json:"note,omitempty" yaml:"note,omitempty" mapstructure:"note"`
}

// UserCause records a build started by the given user.
func UserCause(userID string) Cause {
	return Cause{Kind: CauseUser, UserID: userID}
}

// SystemUserCause records a build started by a user cause with no authenticated principal.
func SystemUserCause() Cause {
	return UserCause(SystemUser)
}

// UpstreamCause records a build triggered by build number `build` of `project`.
func UpstreamCause(project string, build int) Cause {
	return Cause{
		Kind:            CauseUpstream,
		UpstreamProject: project,
		UpstreamBuild:   build,
		UpstreamURL:     fmt.Sprintf("job/%s/", project),
	}
}

// RemoteCause records a build started through the remote trigger API.
func RemoteCause(host, note string) Cause {
	return Cause{Kind: CauseRemote, RemoteHost: host, Note: note}
}

// TimerCause records a build started by a scheduled trigger.
func TimerCause() Cause {
	return Cause{Kind: CauseTimer}
}

// LegacyCause records a build started by code that predates cause tracking.
func LegacyCause() Cause {
	return Cause{Kind: CauseLegacy}
}

// OtherCause records a cause of an arbitrary kind.
func OtherCause(kind string) Cause {
	return Cause{Kind: CauseKind(kind)}
}

// ShortDescription returns the human readable summary a host prints for the cause.
func (c Cause) ShortDescription() string {
	switch c.Kind {
	case CauseUser:
		return fmt.Sprintf("Started by user %s", c.UserID)
	case CauseUpstream:
		return fmt.Sprintf("Started by upstream project %q build number %d", c.UpstreamProject, c.UpstreamBuild)
	case CauseRemote:
		if c.Note == "" {
			return fmt.Sprintf("Started by remote host %s", c.RemoteHost)
		}
		return fmt.Sprintf("Started by remote host %s with note: %s", c.RemoteHost, c.Note)
	case CauseTimer:
		return "Started by timer"
	case CauseLegacy:
		return "Legacy code started this job.  No cause information is available"
	default:
		if c.Kind == "" {
			return "Started by unknown cause"
		}
		return fmt.Sprintf("Started by %s", c.Kind)
	}
}

// String implements fmt.Stringer.
func (c Cause) String() string {
	return c.ShortDescription()
}
