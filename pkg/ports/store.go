package ports

import (
	"context"

	"github.com/aretw0/runcondition/pkg/domain"
)

// CauseSource supplies the causes of a build invocation.
type CauseSource interface {
	// Causes returns the build's causes in insertion order.
	// Returns domain.ErrBuildNotFound if the build does not exist.
	// A build with no causes yields an empty, non-nil slice.
	Causes(ctx context.Context, buildID string) ([]domain.Cause, error)
}

// BuildStore persists build invocations and their causes.
type BuildStore interface {
	CauseSource

	// Save persists the build, replacing any previous record with the same ID.
	Save(ctx context.Context, build *domain.Build) error

	// Load retrieves a build.
	// Returns domain.ErrBuildNotFound if the build does not exist.
	Load(ctx context.Context, buildID string) (*domain.Build, error)

	// AppendCause records an additional cause after the existing ones.
	// Returns domain.ErrBuildNotFound if the build does not exist.
	AppendCause(ctx context.Context, buildID string, cause domain.Cause) error

	// Delete removes the build.
	Delete(ctx context.Context, buildID string) error

	// List returns the IDs of the stored builds.
	List(ctx context.Context) ([]string, error)
}
