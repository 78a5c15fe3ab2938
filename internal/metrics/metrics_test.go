package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistration(t *testing.T) {
	assert.NotNil(t, SchedulerTickDuration)
	assert.NotNil(t, SchedulerAdmittedTotal)
	assert.NotNil(t, SchedulerPanicsTotal)
	assert.NotNil(t, SupervisorSpawnTotal)
	assert.NotNil(t, SupervisorSignalTotal)
	assert.NotNil(t, RequestsTotal)
	assert.NotNil(t, RequestDuration)
	assert.NotNil(t, QueryDuration)
	assert.NotNil(t, TasksByStatus)
	assert.NotNil(t, WebSocketConnections)
	assert.NotNil(t, WebSocketMessagesTotal)
}

func TestRecordRequest(t *testing.T) {
	RequestsTotal.Reset()
	RecordRequest("add", "ok", 0.01)

	assert.Equal(t, float64(1), testutil.ToFloat64(RequestsTotal.WithLabelValues("add", "ok")))
}

func TestRecordAdmission(t *testing.T) {
	SchedulerAdmittedTotal.Reset()
	RecordAdmission("default")
	RecordAdmission("default")

	assert.Equal(t, float64(2), testutil.ToFloat64(SchedulerAdmittedTotal.WithLabelValues("default")))
}

func TestSetTasksByStatus(t *testing.T) {
	SetTasksByStatus("default", "running", 3)
	assert.Equal(t, float64(3), testutil.ToFloat64(TasksByStatus.WithLabelValues("default", "running")))
}

func TestSetWebSocketConnections(t *testing.T) {
	SetWebSocketConnections(4)
	assert.Equal(t, float64(4), testutil.ToFloat64(WebSocketConnections))
}

func TestRecordWebSocketMessage(t *testing.T) {
	WebSocketMessagesTotal.Reset()
	RecordWebSocketMessage("task.changed")
	RecordWebSocketMessage("task.changed")

	assert.Equal(t, float64(2), testutil.ToFloat64(WebSocketMessagesTotal.WithLabelValues("task.changed")))
}
