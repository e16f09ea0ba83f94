package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCycleAndCommand(t *testing.T) {
	m := New()

	m.ObserveCycle(2*time.Second, nil)
	m.ObserveCycle(time.Second, errors.New("serial: port closed"))
	m.ObserveCycle(time.Second, errors.New("camera failed"))
	m.ObserveCommand("water", 5*time.Second, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cyclesTotal.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cyclesTotal.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commandsTotal.WithLabelValues("water", "ok")))
}

func TestSetSensorIgnoresText(t *testing.T) {
	m := New()

	m.SetSensor("temperature", "21.5")
	m.SetSensor("humidity", "N/A")

	assert.Equal(t, 21.5, testutil.ToFloat64(m.sensorValue.WithLabelValues("temperature")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.sensorValue))
}

func TestSetSwitch(t *testing.T) {
	m := New()
	m.SetSwitch("pump", true)
	m.SetSwitch("uv", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.switchState.WithLabelValues("pump")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.switchState.WithLabelValues("uv")))
}
