package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/AzielCF/az-plant/domains/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestReadingGormRepository_AppendRecent(t *testing.T) {
	repo := NewReadingGormRepository(newTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Init(ctx))

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Append(ctx, history.Reading{
			Temperature: "2" + string(rune('0'+i)),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Append(ctx, history.Reading{
		Label: "rose_rust", Confidence: 0.91, CreatedAt: base.Add(time.Hour),
	}))

	got, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "rose_rust", got[0].Label)
	assert.InDelta(t, 0.91, got[0].Confidence, 1e-9)
	assert.Equal(t, "22", got[1].Temperature)
	assert.NotEmpty(t, got[0].ID)
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestReadingGormRepository_DefaultLimit(t *testing.T) {
	repo := NewReadingGormRepository(newTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Init(ctx))

	for i := 0; i < 25; i++ {
		require.NoError(t, repo.Append(ctx, history.Reading{}))
	}
	got, err := repo.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, 20)
}
