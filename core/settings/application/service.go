package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/AzielCF/az-plant/core/settings/domain"
	"github.com/AzielCF/az-plant/core/settings/infrastructure"
	"gorm.io/gorm"
)

type SettingsService struct {
	repo domain.ISettingsRepository
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{
		repo: infrastructure.NewRuntimeSettingsGormRepository(db),
	}
}

// RuntimeSettings holds the stored overrides; nil means "use the env default".
type RuntimeSettings struct {
	MonitorIntervalSeconds *int `json:"monitor_interval_seconds,omitempty"`
	WaterDurationSeconds   *int `json:"water_duration_seconds,omitempty"`
	DetectDelaySeconds     *int `json:"detect_delay_seconds,omitempty"`
}

// Durations resolves the overrides against defaults.
func (r RuntimeSettings) Durations(interval, water, detect time.Duration) (time.Duration, time.Duration, time.Duration) {
	if r.MonitorIntervalSeconds != nil {
		interval = time.Duration(*r.MonitorIntervalSeconds) * time.Second
	}
	if r.WaterDurationSeconds != nil {
		water = time.Duration(*r.WaterDurationSeconds) * time.Second
	}
	if r.DetectDelaySeconds != nil {
		detect = time.Duration(*r.DetectDelaySeconds) * time.Second
	}
	return interval, water, detect
}

func (s *SettingsService) Init(ctx context.Context) error {
	return s.repo.InitSchema(ctx)
}

func (s *SettingsService) GetRuntimeSettings(ctx context.Context) (*RuntimeSettings, error) {
	rs := &RuntimeSettings{}
	var err error
	if rs.MonitorIntervalSeconds, err = s.getInt(ctx, domain.KeyMonitorIntervalSeconds); err != nil {
		return nil, err
	}
	if rs.WaterDurationSeconds, err = s.getInt(ctx, domain.KeyWaterDurationSeconds); err != nil {
		return nil, err
	}
	if rs.DetectDelaySeconds, err = s.getInt(ctx, domain.KeyDetectDelaySeconds); err != nil {
		return nil, err
	}
	return rs, nil
}

// Update stores every non-nil field of rs.
func (s *SettingsService) Update(ctx context.Context, rs RuntimeSettings) error {
	pairs := []struct {
		key string
		val *int
	}{
		{domain.KeyMonitorIntervalSeconds, rs.MonitorIntervalSeconds},
		{domain.KeyWaterDurationSeconds, rs.WaterDurationSeconds},
		{domain.KeyDetectDelaySeconds, rs.DetectDelaySeconds},
	}
	for _, p := range pairs {
		if p.val == nil {
			continue
		}
		v := *p.val
		if v < 0 {
			v = 0
		}
		if err := s.repo.Set(ctx, p.key, strconv.Itoa(v)); err != nil {
			return fmt.Errorf("save %s: %w", p.key, err)
		}
	}
	return nil
}

func (s *SettingsService) Reset(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}

func (s *SettingsService) getInt(ctx context.Context, key string) (*int, error) {
	val, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if val == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return nil, nil
	}
	return &n, nil
}
