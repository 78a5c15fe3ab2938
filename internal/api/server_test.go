package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pueued/pueue-go/internal/config"
	"github.com/pueued/pueue-go/internal/events"
	"github.com/pueued/pueue-go/internal/store"
	"github.com/pueued/pueue-go/internal/task"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), "state.json"))
	bus := events.NewBus()
	cfg := &config.DebugConfig{Enabled: true, RateLimitRPS: 0}
	return NewServer(cfg, st, bus), st
}

func TestServer_HandleState_ReturnsAllTasks(t *testing.T) {
	s, st := newTestServer(t)
	tk := task.New("echo hi", "/tmp", nil, task.DefaultGroup)
	_, err := st.AddTask(tk)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/debug/state", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var tasks []*task.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	assert.Len(t, tasks, 1)
}

func TestServer_HandleState_AppliesQueryFragments(t *testing.T) {
	s, st := newTestServer(t)
	_, err := st.AddTask(task.New("echo one", "/tmp", nil, task.DefaultGroup))
	require.NoError(t, err)
	_, err = st.AddTask(task.New("echo two", "/tmp", nil, task.DefaultGroup))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/debug/state?q=first+1", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var tasks []*task.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	assert.Len(t, tasks, 1)
}

func TestServer_HandleState_InvalidQueryIsBadRequest(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/debug/state?q=not-a-real-filter", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_HealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/debug/health", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
