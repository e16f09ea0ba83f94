package application

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/AzielCF/az-plant/core/settings/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *SettingsService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "settings.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	s := NewSettingsService(db)
	require.NoError(t, s.Init(context.Background()))
	return s
}

func intPtr(v int) *int { return &v }

func TestRuntimeSettings_EmptyUsesDefaults(t *testing.T) {
	s := newTestService(t)
	rs, err := s.GetRuntimeSettings(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rs.MonitorIntervalSeconds)

	iv, w, d := rs.Durations(300*time.Second, 5*time.Second, 3*time.Second)
	assert.Equal(t, 300*time.Second, iv)
	assert.Equal(t, 5*time.Second, w)
	assert.Equal(t, 3*time.Second, d)
}

func TestRuntimeSettings_UpdateAndReset(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, RuntimeSettings{
		MonitorIntervalSeconds: intPtr(60),
		WaterDurationSeconds:   intPtr(-3),
	}))
	require.NoError(t, s.Update(ctx, RuntimeSettings{MonitorIntervalSeconds: intPtr(90)}))

	rs, err := s.GetRuntimeSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, rs.MonitorIntervalSeconds)
	assert.Equal(t, 90, *rs.MonitorIntervalSeconds)
	require.NotNil(t, rs.WaterDurationSeconds)
	assert.Equal(t, 0, *rs.WaterDurationSeconds)
	assert.Nil(t, rs.DetectDelaySeconds)

	require.NoError(t, s.Reset(ctx, domain.KeyMonitorIntervalSeconds))
	rs, _ = s.GetRuntimeSettings(ctx)
	assert.Nil(t, rs.MonitorIntervalSeconds)
}
