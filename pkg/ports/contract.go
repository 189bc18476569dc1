package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/runcondition/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunBuildStoreContract runs a suite of tests to verify that a BuildStore implementation
// adheres to the defined interface contract.
func RunBuildStoreContract(t *testing.T, store BuildStore) {
	ctx := context.Background()
	buildID := "contract-test-build-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		build := domain.NewBuild(buildID, "contract", 7,
			domain.UserCause("fred"),
			domain.UpstreamCause("firstProject", 3),
		)

		require.NoError(t, store.Save(ctx, build), "Save should not return error")

		loaded, err := store.Load(ctx, buildID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, build.ID, loaded.ID)
		assert.Equal(t, build.Project, loaded.Project)
		assert.Equal(t, build.Number, loaded.Number)
		assert.Equal(t, build.Causes, loaded.Causes)
	})

	t.Run("Causes keep insertion order", func(t *testing.T) {
		id := buildID + "-order"
		require.NoError(t, store.Save(ctx, domain.NewBuild(id, "contract", 1, domain.LegacyCause())))
		defer func() { _ = store.Delete(ctx, id) }()

		require.NoError(t, store.AppendCause(ctx, id, domain.UserCause("remote")))
		require.NoError(t, store.AppendCause(ctx, id, domain.UpstreamCause("up", 1)))
		require.NoError(t, store.AppendCause(ctx, id, domain.RemoteCause("dummy_host", "dummynote")))

		causes, err := store.Causes(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []domain.Cause{
			domain.LegacyCause(),
			domain.UserCause("remote"),
			domain.UpstreamCause("up", 1),
			domain.RemoteCause("dummy_host", "dummynote"),
		}, causes)
	})

	t.Run("Build without causes", func(t *testing.T) {
		id := buildID + "-empty"
		require.NoError(t, store.Save(ctx, domain.NewBuild(id, "contract", 1)))
		defer func() { _ = store.Delete(ctx, id) }()

		causes, err := store.Causes(ctx, id)
		require.NoError(t, err)
		assert.NotNil(t, causes)
		assert.Empty(t, causes)
	})

	t.Run("Unknown kinds survive persistence", func(t *testing.T) {
		id := buildID + "-other"
		require.NoError(t, store.Save(ctx, domain.NewBuild(id, "contract", 1, domain.OtherCause("scm"))))
		defer func() { _ = store.Delete(ctx, id) }()

		causes, err := store.Causes(ctx, id)
		require.NoError(t, err)
		require.Len(t, causes, 1)
		assert.Equal(t, domain.CauseKind("scm"), causes[0].Kind)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+buildID)
		assert.ErrorIs(t, err, domain.ErrBuildNotFound)

		_, err = store.Causes(ctx, "non-existent-"+buildID)
		assert.ErrorIs(t, err, domain.ErrBuildNotFound)

		err = store.AppendCause(ctx, "non-existent-"+buildID, domain.TimerCause())
		assert.ErrorIs(t, err, domain.ErrBuildNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewBuild(buildID, "contract", 7)))

		require.NoError(t, store.Delete(ctx, buildID), "Delete should not return error")

		_, err := store.Load(ctx, buildID)
		assert.ErrorIs(t, err, domain.ErrBuildNotFound, "Load after Delete should return ErrBuildNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := buildID + "-1"
		id2 := buildID + "-2"
		_ = store.Save(ctx, domain.NewBuild(id1, "contract", 1))
		_ = store.Save(ctx, domain.NewBuild(id2, "contract", 2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		builds, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, builds, id1)
		assert.Contains(t, builds, id2)
	})
}
