package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/runcondition/pkg/adapters/memory"
	"github.com/aretw0/runcondition/pkg/domain"
	"github.com/aretw0/runcondition/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunBuildStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	build := domain.NewBuild("b#1", "b", 1, domain.UserCause("fred"))
	require.NoError(t, store.Save(ctx, build))

	// Mutating the saved value must not leak into the store.
	build.Causes[0] = domain.TimerCause()

	loaded, err := store.Load(ctx, "b#1")
	require.NoError(t, err)
	assert.Equal(t, domain.UserCause("fred"), loaded.Causes[0])

	loaded.AddCause(domain.LegacyCause())
	causes, err := store.Causes(ctx, "b#1")
	require.NoError(t, err)
	assert.Len(t, causes, 1)
}

func TestMemoryStore_ConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Save(ctx, domain.NewBuild("b#1", "b", 1)))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.AppendCause(ctx, "b#1", domain.TimerCause()))
		}()
	}
	wg.Wait()

	causes, err := store.Causes(ctx, "b#1")
	require.NoError(t, err)
	assert.Len(t, causes, 20)
}
