package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pueued/pueue-go/internal/task"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	return New(path)
}

func TestStore_AddTaskAssignsIncrementingIDs(t *testing.T) {
	s := newTestStore(t)

	t1, err := s.AddTask(task.New("echo 1", "/tmp", nil, task.DefaultGroup))
	require.NoError(t, err)
	t2, err := s.AddTask(task.New("echo 2", "/tmp", nil, task.DefaultGroup))
	require.NoError(t, err)

	assert.Equal(t, int64(1), t1.ID)
	assert.Equal(t, int64(2), t2.ID)
}

func TestStore_AddTaskUnknownGroupFails(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddTask(task.New("echo 1", "/tmp", nil, "nope"))
	assert.ErrorIs(t, err, task.ErrGroupNotFound)
}

func TestStore_AddTaskUnknownDependencyFails(t *testing.T) {
	s := newTestStore(t)
	tk := task.New("echo 1", "/tmp", nil, task.DefaultGroup)
	tk.Dependencies = []int64{999}
	_, err := s.AddTask(tk)
	assert.Error(t, err)
}

func TestStore_RemoveTaskRejectsActive(t *testing.T) {
	s := newTestStore(t)
	added, err := s.AddTask(task.New("sleep 5", "/tmp", nil, task.DefaultGroup))
	require.NoError(t, err)

	require.NoError(t, s.MutateTask(added.ID, func(t *task.Task) error {
		return task.NewStateMachine(t).Start()
	}))

	err = s.RemoveTask(added.ID)
	assert.Error(t, err)
}

func TestStore_PersistAndLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := New(path)

	_, err := s.AddTask(task.New("echo 1", "/tmp", nil, task.DefaultGroup))
	require.NoError(t, err)
	_, err = s.AddGroup("build", 2)
	require.NoError(t, err)

	reloaded := New(path)
	require.NoError(t, reloaded.Load())

	tasks := reloaded.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "echo 1", tasks[0].Command)

	g, err := reloaded.GetGroup("build")
	require.NoError(t, err)
	assert.Equal(t, 2, g.ParallelSlots)
}

func TestStore_LoadRewritesLiveTasksToKilled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := New(path)

	added, err := s.AddTask(task.New("sleep 60", "/tmp", nil, task.DefaultGroup))
	require.NoError(t, err)
	require.NoError(t, s.MutateTask(added.ID, func(t *task.Task) error {
		return task.NewStateMachine(t).Start()
	}))

	reloaded := New(path)
	require.NoError(t, reloaded.Load())

	got, err := reloaded.GetTask(added.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Done, got.Status.Kind)
	assert.Equal(t, task.Killed, got.Status.Result.Kind)
}

func TestStore_RemoveGroupRejectsDefaultAndNonEmpty(t *testing.T) {
	s := newTestStore(t)

	err := s.RemoveGroup(task.DefaultGroup)
	assert.Error(t, err)

	_, err = s.AddGroup("build", 1)
	require.NoError(t, err)
	_, err = s.AddTask(task.New("echo", "/tmp", nil, "build"))
	require.NoError(t, err)

	err = s.RemoveGroup("build")
	assert.ErrorIs(t, err, task.ErrGroupNotEmpty)
}

func TestStore_SetGroupParallel(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddGroup("build", 1)
	require.NoError(t, err)

	require.NoError(t, s.SetGroupParallel("build", 4))

	g, err := s.GetGroup("build")
	require.NoError(t, err)
	assert.Equal(t, 4, g.ParallelSlots)
	assert.Equal(t, task.GroupRunning, g.Status, "changing slots leaves run/pause status untouched")

	assert.ErrorIs(t, s.SetGroupParallel("missing", 2), task.ErrGroupNotFound)
}

func TestStore_Clean(t *testing.T) {
	s := newTestStore(t)

	keep, err := s.AddTask(task.New("sleep 1", "/tmp", nil, task.DefaultGroup))
	require.NoError(t, err)
	done, err := s.AddTask(task.New("echo done", "/tmp", nil, task.DefaultGroup))
	require.NoError(t, err)

	require.NoError(t, s.MutateTask(done.ID, func(t *task.Task) error {
		sm := task.NewStateMachine(t)
		if err := sm.Start(); err != nil {
			return err
		}
		return sm.Finish(task.SuccessResult())
	}))

	removed, err := s.Clean("")
	require.NoError(t, err)
	assert.Equal(t, []int64{done.ID}, removed)

	_, err = s.GetTask(keep.ID)
	assert.NoError(t, err)
	_, err = s.GetTask(done.ID)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}

type recordingNotifier struct {
	taskEvents  int
	groupEvents int
}

func (r *recordingNotifier) TaskChanged(*task.Task)   { r.taskEvents++ }
func (r *recordingNotifier) GroupChanged(*task.Group) { r.groupEvents++ }

func TestStore_NotifiesOnMutation(t *testing.T) {
	s := newTestStore(t)
	rec := &recordingNotifier{}
	s.SetNotifier(rec)

	added, err := s.AddTask(task.New("echo", "/tmp", nil, task.DefaultGroup))
	require.NoError(t, err)
	assert.Equal(t, 1, rec.taskEvents)

	require.NoError(t, s.MutateTask(added.ID, func(t *task.Task) error {
		return task.NewStateMachine(t).Start()
	}))
	assert.Equal(t, 2, rec.taskEvents)

	_, err = s.AddGroup("build", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.groupEvents)
}
