package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/runcondition/pkg/condition"
	"github.com/aretw0/runcondition/pkg/domain"
)

// Loader adapts the Loam library to the ports.ConditionLoader interface.
type Loader struct {
	Repo *loam.TypedRepository[ConditionMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[ConditionMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository at dir and wraps it in a Loader.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Conditions are never written back.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	return New(loam.NewTypedRepository[ConditionMetadata](repo)), nil
}

// GetCondition retrieves and validates a condition document.
// Documents are addressed by the same ID ListConditions reports: the metadata
// id when set, otherwise the file name.
func (l *Loader) GetCondition(ctx context.Context, id string) (domain.Condition, error) {
	doc, err := l.Repo.Get(ctx, id)
	if err == nil && docID(doc.ID, doc.Data.ID) == id {
		return decode(id, doc.Data)
	}

	// The metadata ID may differ from the file name; fall back to a scan.
	docs, listErr := l.Repo.List(ctx)
	if listErr != nil {
		return domain.Condition{}, fmt.Errorf("loam list failed: %w", listErr)
	}
	for _, d := range docs {
		if docID(d.ID, d.Data.ID) == id {
			return decode(id, d.Data)
		}
	}
	return domain.Condition{}, fmt.Errorf("%w: %s", domain.ErrConditionNotFound, id)
}

// ListConditions lists all condition IDs in the repository.
func (l *Loader) ListConditions(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))

	for _, doc := range docs {
		id := docID(doc.ID, doc.Data.ID)

		// Collision Detection
		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func decode(id string, meta ConditionMetadata) (domain.Condition, error) {
	cond := meta.Condition(id)
	if _, err := condition.New(cond); err != nil {
		return domain.Condition{}, fmt.Errorf("invalid condition %s: %w", id, err)
	}
	return cond, nil
}

// docID uses the ID from metadata if available, otherwise the file name, without extension.
func docID(path, metaID string) string {
	raw := metaID
	if raw == "" {
		raw = path
	}
	return trimExtension(raw)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
