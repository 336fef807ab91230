package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/hunt/internal/models"
)

var _ AccidentRepository = (*MemoryAccidentRepository)(nil)

func TestMemoryAccidentRepository(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) AccidentRepository {
		return NewMemoryAccidentRepository()
	})
}

func TestMemoryAccidentRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAccidentRepository()
	in := sampleAccidents(t)

	_, err := repo.CreateMany(ctx, in)
	require.NoError(t, err)
	assert.Zero(t, in[0].ID, "input slice must not be modified")

	all, err := repo.FindAll(ctx, models.NewQuery())
	require.NoError(t, err)
	all[0].Fatal = !all[0].Fatal

	found, err := repo.FindByID(ctx, all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, in[0].Fatal, found.Fatal)
}

func TestMemoryAccidentRepository_IDsKeepIncreasing(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAccidentRepository()

	_, err := repo.ReplaceAll(ctx, sampleAccidents(t))
	require.NoError(t, err)
	_, err = repo.ReplaceAll(ctx, sampleAccidents(t))
	require.NoError(t, err)

	all, err := repo.FindAll(ctx, models.NewQuery())
	require.NoError(t, err)
	assert.Equal(t, int64(7), all[0].ID)
	require.NoError(t, repo.Ping(ctx))
}

func TestMemoryAccidentRepository_ConcurrentReads(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAccidentRepository()
	_, err := repo.ReplaceAll(ctx, sampleAccidents(t))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := repo.FindAll(ctx, models.NewQuery(models.Fatal()))
			assert.NoError(t, err)
			assert.Len(t, got, 3)
		}()
	}
	wg.Wait()
}
