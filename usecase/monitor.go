package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AzielCF/az-plant/domains/camera"
	domainClassifier "github.com/AzielCF/az-plant/domains/classifier"
	"github.com/AzielCF/az-plant/domains/history"
	domainMonitor "github.com/AzielCF/az-plant/domains/monitor"
	domainNotifier "github.com/AzielCF/az-plant/domains/notifier"
	"github.com/AzielCF/az-plant/domains/plant"
	"github.com/AzielCF/az-plant/domains/sensor"
	"github.com/AzielCF/az-plant/domains/telemetry"
	"github.com/AzielCF/az-plant/pkg/botmonitor"
	"github.com/AzielCF/az-plant/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// MonitorDeps wires the cycle. Classifier, Publisher and History are optional.
type MonitorDeps struct {
	Reader     sensor.IReader
	Capturer   camera.ICapturer
	Classifier domainClassifier.IClassifier
	Notifier   domainNotifier.INotifier
	State      plant.IStateStore
	Publisher  telemetry.ITelemetryPublisher
	History    history.IHistoryRepository
	Window     time.Duration
	Interval   time.Duration
}

type monitorService struct {
	deps     MonitorDeps
	interval atomic.Int64
	metrics  *metrics.Metrics

	mu        sync.RWMutex
	callbacks []func(domainMonitor.CycleResult)
}

func NewMonitorService(deps MonitorDeps) domainMonitor.IMonitorUsecase {
	s := &monitorService{deps: deps, metrics: metrics.Default()}
	s.SetInterval(deps.Interval)
	return s
}

func (s *monitorService) SetInterval(d time.Duration) {
	if d <= 0 {
		d = 300 * time.Second
	}
	s.interval.Store(int64(d))
}

func (s *monitorService) Interval() time.Duration {
	return time.Duration(s.interval.Load())
}

func (s *monitorService) OnCycle(fn func(domainMonitor.CycleResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

func (s *monitorService) RunCycle(ctx context.Context) (domainMonitor.CycleResult, error) {
	start := time.Now()
	res, err := s.runCycle(ctx)
	res.Duration = time.Since(start)

	s.metrics.ObserveCycle(res.Duration, err)
	ev := botmonitor.Event{
		Stage:      botmonitor.StageCycle,
		Status:     botmonitor.StatusOK,
		DurationMs: res.Duration.Milliseconds(),
	}
	if err != nil {
		ev.Status = botmonitor.StatusError
		ev.Error = err.Error()
		botmonitor.Record(ev)
		return res, err
	}
	if res.Result != nil {
		ev.Metadata = map[string]string{"label": res.Result.Label}
	}
	botmonitor.Record(ev)

	s.mu.RLock()
	callbacks := append([]func(domainMonitor.CycleResult){}, s.callbacks...)
	s.mu.RUnlock()
	for _, fn := range callbacks {
		fn(res)
	}
	return res, nil
}

func (s *monitorService) runCycle(ctx context.Context) (domainMonitor.CycleResult, error) {
	var res domainMonitor.CycleResult

	record, err := s.deps.Reader.Read(ctx, s.deps.Window)
	if err != nil {
		return res, fmt.Errorf("read sensors: %w", err)
	}
	res.Record = record
	s.observeRecord(record)

	if err := s.deps.State.SetSnapshot(ctx, record); err != nil {
		logrus.WithError(err).Error("[MONITOR] failed to store snapshot")
	}

	img, err := s.deps.Capturer.Capture(ctx)
	if err != nil {
		return res, fmt.Errorf("capture image: %w", err)
	}
	res.Image = img

	if s.deps.Classifier != nil {
		result, err := s.deps.Classifier.Classify(ctx, img.Path)
		if err != nil {
			logrus.WithError(err).Warn("[MONITOR] classifier unavailable, continuing without result")
		} else if result != nil {
			res.Result = result
			logrus.WithFields(logrus.Fields{"label": result.Label, "confidence": result.Confidence}).Info("[MONITOR] classifier result")
		}
	}

	s.deps.Notifier.SendUpdate(ctx, record, img, res.Result)

	if s.deps.Publisher != nil {
		if err := s.deps.Publisher.Publish(ctx, record); err != nil {
			logrus.WithError(err).Warn("[MONITOR] telemetry publish failed")
		}
	}

	if s.deps.History != nil {
		reading := history.Reading{
			Temperature:  record.Temperature,
			Humidity:     record.Humidity,
			SoilMoisture: record.SoilMoisture,
			LightLevel:   record.LightLevel,
			Pump:         record.Pump,
			Lights:       record.Lights,
			ImagePath:    img.Path,
			CreatedAt:    img.CapturedAt,
		}
		if res.Result != nil {
			reading.Label = res.Result.Label
			reading.Confidence = res.Result.Confidence
		}
		if err := s.deps.History.Append(ctx, reading); err != nil {
			logrus.WithError(err).Warn("[MONITOR] failed to persist reading")
		}
	}
	return res, nil
}

func (s *monitorService) observeRecord(r telemetry.Record) {
	s.metrics.SetSensor("temperature", r.Temperature)
	s.metrics.SetSensor("humidity", r.Humidity)
	s.metrics.SetSensor("soil_moisture", r.SoilMoisture)
	s.metrics.SetSensor("light_level", r.LightLevel)
	if r.Pump != "" {
		s.metrics.SetSwitch("pump", r.Pump == string(plant.SwitchOn))
	}
	if r.Lights != "" {
		s.metrics.SetSwitch("lights", r.Lights == string(plant.SwitchOn))
	}
}

// Run executes a cycle immediately and then once per interval. A failed
// cycle is logged and the loop keeps going.
func (s *monitorService) Run(ctx context.Context) error {
	logrus.Infof("[MONITOR] starting loop, interval %s", s.Interval())
	for {
		if _, err := s.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logrus.WithError(err).Error("[MONITOR] cycle failed")
		} else {
			logrus.Info("[MONITOR] update sent, waiting for next cycle")
		}

		t := time.NewTimer(s.Interval())
		select {
		case <-ctx.Done():
			t.Stop()
			logrus.Info("[MONITOR] loop stopped")
			return nil
		case <-t.C:
		}
	}
}
