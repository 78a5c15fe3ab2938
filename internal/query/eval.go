package query

import (
	"sort"
	"strconv"
	"time"

	"github.com/pueued/pueue-go/internal/task"
)

// Apply runs the full pipeline spec'd for the query engine: filters, then
// ordering (ascending by id when the plan has none), then the first/last
// limit. The input slice is not mutated.
func Apply(tasks []*task.Task, plan *Plan) []*task.Task {
	filtered := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if matchesAll(t, plan.Filters) {
			filtered = append(filtered, t)
		}
	}

	if plan.HasOrder {
		sortBy(filtered, plan.OrderBy)
	} else {
		sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })
	}

	return applyLimit(filtered, plan.Limit)
}

func matchesAll(t *task.Task, filters []Filter) bool {
	for _, f := range filters {
		if !matches(t, f) {
			return false
		}
	}
	return true
}

func matches(t *task.Task, f Filter) bool {
	switch f.Field {
	case FieldStatus:
		hit := matchesStatus(t, f.StatusValues)
		if f.Op == OpNeq {
			return !hit
		}
		return hit
	case FieldStart:
		return matchesTime(t.Start, f.Op, f.TimeValue)
	case FieldEnd:
		return matchesTime(t.End, f.Op, f.TimeValue)
	case FieldEnqueueAt:
		return matchesTime(t.Status.EnqueueAt, f.Op, f.TimeValue)
	case FieldLabel:
		return matchesString(t.Label, f.Op, f.StringValue)
	case FieldCommand:
		return matchesString(t.Command, f.Op, f.StringValue)
	case FieldGroup:
		return matchesString(t.Group, f.Op, f.StringValue)
	default:
		return false
	}
}

func matchesString(field string, op Op, value string) bool {
	if op == OpNeq {
		return field != value
	}
	return field == value
}

func matchesStatus(t *task.Task, values []string) bool {
	for _, v := range values {
		switch v {
		case "queued":
			if t.Status.Kind == task.Queued {
				return true
			}
		case "running":
			if t.Status.Kind == task.Running {
				return true
			}
		case "paused":
			if t.Status.Kind == task.Paused {
				return true
			}
		case "stashed":
			if t.Status.Kind == task.Stashed {
				return true
			}
		case "locked":
			if t.Status.Kind == task.Locked {
				return true
			}
		case "success":
			if t.Status.Kind == task.Done && t.Status.Result != nil && t.Status.Result.Kind == task.Success {
				return true
			}
		case "failed":
			if t.Status.Kind == task.Done && t.Status.Result != nil && t.Status.Result.Kind != task.Success {
				return true
			}
		}
	}
	return false
}

func matchesTime(field *time.Time, op Op, value time.Time) bool {
	if field == nil {
		return false
	}
	switch op {
	case OpEq:
		return field.Equal(value)
	case OpNeq:
		return !field.Equal(value)
	case OpLt:
		return field.Before(value)
	case OpLte:
		return field.Before(value) || field.Equal(value)
	case OpGt:
		return field.After(value)
	case OpGte:
		return field.After(value) || field.Equal(value)
	default:
		return false
	}
}

func sortBy(tasks []*task.Task, field FieldKind) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch field {
		case FieldStatus:
			return a.Status.Kind < b.Status.Kind
		case FieldStart:
			return timeLess(a.Start, b.Start)
		case FieldEnd:
			return timeLess(a.End, b.End)
		case FieldLabel:
			return a.Label < b.Label
		case FieldCommand:
			return a.Command < b.Command
		case FieldGroup:
			return a.Group < b.Group
		default:
			return a.ID < b.ID
		}
	})
}

func timeLess(a, b *time.Time) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	return a.Before(*b)
}

func applyLimit(tasks []*task.Task, limit Limit) []*task.Task {
	switch limit.Kind {
	case LimitFirst:
		if limit.N >= len(tasks) {
			return tasks
		}
		return tasks[:limit.N]
	case LimitLast:
		if limit.N >= len(tasks) {
			return tasks
		}
		return tasks[len(tasks)-limit.N:]
	default:
		return tasks
	}
}

// Project reduces each task to just the requested columns, for rendering.
// A nil/empty columns list means "all supported columns".
func Project(tasks []*task.Task, columns []string) []map[string]string {
	if len(columns) == 0 {
		columns = []string{"id", "status", "command", "group", "label"}
	}

	rows := make([]map[string]string, 0, len(tasks))
	for _, t := range tasks {
		row := make(map[string]string, len(columns))
		for _, col := range columns {
			row[col] = column(t, col)
		}
		rows = append(rows, row)
	}
	return rows
}

func column(t *task.Task, name string) string {
	switch name {
	case "id":
		return strconv.FormatInt(t.ID, 10)
	case "status":
		return t.Status.String()
	case "command":
		return t.Command
	case "group":
		return t.Group
	case "label":
		return t.Label
	case "path":
		return t.Path
	default:
		return ""
	}
}
