package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pueued/pueue-go/internal/task"
)

// testFixture builds the same five-task state used by the original
// status_query test suite: a failed task from a day ago, a successful
// task from two days ago, a stashed task, a scheduled (stashed-with-time)
// task, and a running task.
func testFixture() []*task.Task {
	now := time.Now()

	failed := task.New("sleep 60", "/tmp", nil, task.DefaultGroup)
	failed.ID = 0
	failed.Status = task.NewDone(task.FailedResult(255))
	start := now.Add(-24 * time.Hour)
	end := start.Add(time.Minute)
	failed.Start, failed.End = &start, &end

	success := task.New("sleep 60", "/tmp", nil, task.DefaultGroup)
	success.ID = 1
	success.Status = task.NewDone(task.SuccessResult())
	start2 := now.Add(-48 * time.Hour).Add(time.Minute)
	end2 := start2.Add(4 * time.Minute)
	success.Start, success.End = &start2, &end2

	stashed := task.New("sleep 60", "/tmp", nil, task.DefaultGroup)
	stashed.ID = 2
	stashed.Status = task.NewStashed(nil)

	scheduledAt := now.Add(time.Hour)
	scheduled := task.New("sleep 60", "/tmp", nil, task.DefaultGroup)
	scheduled.ID = 3
	scheduled.Status = task.NewStashed(&scheduledAt)

	running := task.New("sleep 60", "/tmp", nil, task.DefaultGroup)
	running.ID = 4
	running.Status = task.NewRunning()
	rstart := now
	running.Start = &rstart

	return []*task.Task{failed, success, stashed, scheduled, running}
}

func TestParse_Columns(t *testing.T) {
	plan, err := Parse([]string{"columns=id,status,command"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "status", "command"}, plan.Columns)
}

func TestParse_LimitFirstLast(t *testing.T) {
	plan, err := Parse([]string{"first 4"})
	require.NoError(t, err)
	assert.Equal(t, Limit{Kind: LimitFirst, N: 4}, plan.Limit)

	plan, err = Parse([]string{"last 4"})
	require.NoError(t, err)
	assert.Equal(t, Limit{Kind: LimitLast, N: 4}, plan.Limit)
}

func TestParse_OrderBy(t *testing.T) {
	plan, err := Parse([]string{"order_by status"})
	require.NoError(t, err)
	assert.True(t, plan.HasOrder)
	assert.Equal(t, FieldStatus, plan.OrderBy)
}

func TestApply_Default(t *testing.T) {
	tasks := testFixture()
	plan, err := Parse(nil)
	require.NoError(t, err)

	result := Apply(tasks, plan)
	require.Len(t, result, 5)
	assert.Equal(t, int64(0), result[0].ID, "default order is ascending by id")
}

func TestApply_LimitFirst(t *testing.T) {
	tasks := testFixture()
	plan, err := Parse([]string{"first 4"})
	require.NoError(t, err)

	result := Apply(tasks, plan)
	require.Len(t, result, 4)
	assert.Equal(t, int64(3), result[3].ID)
}

func TestApply_LimitLast(t *testing.T) {
	tasks := testFixture()
	plan, err := Parse([]string{"last 4"})
	require.NoError(t, err)

	result := Apply(tasks, plan)
	require.Len(t, result, 4)
	assert.Equal(t, int64(1), result[0].ID)
}

func TestApply_OrderByStatus(t *testing.T) {
	tasks := testFixture()
	plan, err := Parse([]string{"order_by status"})
	require.NoError(t, err)

	result := Apply(tasks, plan)
	require.Len(t, result, 5)
	assert.Equal(t, task.Stashed, result[0].Status.Kind, "Stashed sorts before Running/Done in Kind order")
}

func TestApply_FilterStart(t *testing.T) {
	tasks := testFixture()
	cutoff := time.Now().Add(-24 * time.Hour).Format(dateTimeLayout)

	plan, err := Parse([]string{"start>" + cutoff})
	require.NoError(t, err)

	result := Apply(tasks, plan)
	for _, r := range result {
		require.NotNil(t, r.Start)
		assert.True(t, r.Start.After(parseTestTime(t, cutoff)))
	}
}

func TestApply_FilterEndDateOnlyWidensToEndOfDay(t *testing.T) {
	tasks := testFixture()
	today := time.Now().Format(dateLayout)

	plan, err := Parse([]string{"end<" + today})
	require.NoError(t, err)

	result := Apply(tasks, plan)
	for _, r := range result {
		assert.NotNil(t, r.End, "only Done tasks have an End time")
	}
}

func TestApply_FilterStatus(t *testing.T) {
	cases := []struct {
		query    string
		expected int
	}{
		{"status=queued", 0},
		{"status=running", 1},
		{"status=paused", 0},
		{"status=success", 1},
		{"status=failed", 1},
		{"status=stashed", 2},
	}

	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			tasks := testFixture()
			plan, err := Parse([]string{tc.query})
			require.NoError(t, err)

			result := Apply(tasks, plan)
			assert.Len(t, result, tc.expected)
		})
	}
}

func TestApply_FilterStatusNeq(t *testing.T) {
	tasks := testFixture()
	plan, err := Parse([]string{"status!=stashed"})
	require.NoError(t, err)

	result := Apply(tasks, plan)
	assert.Len(t, result, 3, "2 stashed tasks excluded from 5")
	for _, r := range result {
		assert.NotEqual(t, task.Stashed, r.Status.Kind)
	}
}

func TestApply_FilterStatusShorthand(t *testing.T) {
	cases := []struct {
		query    string
		expected int
	}{
		{"queued", 0},
		{"running", 1},
		{"paused", 0},
		{"success", 1},
		{"failed", 1},
		{"stashed", 2},
	}

	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			tasks := testFixture()
			plan, err := Parse([]string{tc.query})
			require.NoError(t, err)

			result := Apply(tasks, plan)
			assert.Len(t, result, tc.expected)
		})
	}
}

func TestApply_FilterEnqueueAt(t *testing.T) {
	tasks := testFixture()
	cutoff := time.Now().Format(dateTimeLayout)

	plan, err := Parse([]string{"enqueue_at>" + cutoff})
	require.NoError(t, err)

	result := Apply(tasks, plan)
	require.Len(t, result, 1, "only the scheduled stashed task has a future enqueue_at")
	assert.Equal(t, int64(3), result[0].ID)
}

func TestApply_FilterLabelNeq(t *testing.T) {
	tasks := testFixture()
	plan, err := Parse([]string{"label!=nope"})
	require.NoError(t, err)

	result := Apply(tasks, plan)
	assert.Len(t, result, 5, "no task has label 'nope' so != matches everything")
}

func parseTestTime(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation(dateTimeLayout, s, time.Local)
	require.NoError(t, err)
	return parsed
}
