package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// Parse builds a Plan from the query fragments a client supplied (each
// fragment is one whitespace-delimited token as typed after `status`,
// e.g. "columns=id,status,command", "first 4", "order_by status",
// "start>2024-01-01 10:00:00", "status=running").
func Parse(fragments []string) (*Plan, error) {
	plan := &Plan{}

	for _, raw := range fragments {
		fragment := strings.TrimSpace(raw)
		if fragment == "" {
			continue
		}

		switch {
		case strings.HasPrefix(fragment, "columns="):
			plan.Columns = strings.Split(strings.TrimPrefix(fragment, "columns="), ",")

		case strings.HasPrefix(fragment, "first "):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(fragment, "first ")))
			if err != nil {
				return nil, fmt.Errorf("query: invalid first N: %w", err)
			}
			plan.Limit = Limit{Kind: LimitFirst, N: n}

		case strings.HasPrefix(fragment, "last "):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(fragment, "last ")))
			if err != nil {
				return nil, fmt.Errorf("query: invalid last N: %w", err)
			}
			plan.Limit = Limit{Kind: LimitLast, N: n}

		case strings.HasPrefix(fragment, "order_by "):
			field, err := parseOrderField(strings.TrimSpace(strings.TrimPrefix(fragment, "order_by ")))
			if err != nil {
				return nil, err
			}
			plan.OrderBy = field
			plan.HasOrder = true

		default:
			if values, ok := statusShorthand(fragment); ok {
				plan.Filters = append(plan.Filters, Filter{Field: FieldStatus, Op: OpEq, StatusValues: values})
				continue
			}

			filter, err := parseFilter(fragment)
			if err != nil {
				return nil, err
			}
			plan.Filters = append(plan.Filters, filter)
		}
	}

	return plan, nil
}

// statusShorthand recognizes a bare status word ("running", "failed", ...)
// as shorthand for "status=<word>", letting the query accept either form.
func statusShorthand(fragment string) ([]string, bool) {
	switch fragment {
	case "queued", "running", "paused", "stashed", "success", "failed", "locked":
		return []string{fragment}, true
	default:
		return nil, false
	}
}

func parseOrderField(name string) (FieldKind, error) {
	switch name {
	case "status":
		return FieldStatus, nil
	case "start":
		return FieldStart, nil
	case "end":
		return FieldEnd, nil
	case "label":
		return FieldLabel, nil
	case "command":
		return FieldCommand, nil
	case "group":
		return FieldGroup, nil
	default:
		return 0, fmt.Errorf("query: unknown order_by field %q", name)
	}
}

func parseFilter(fragment string) (Filter, error) {
	fieldName, opStr, value, err := splitComparison(fragment)
	if err != nil {
		return Filter{}, err
	}
	op, err := opFromString(opStr)
	if err != nil {
		return Filter{}, err
	}

	switch fieldName {
	case "status":
		return Filter{Field: FieldStatus, Op: op, StatusValues: strings.Split(value, "|")}, nil
	case "start":
		t, err := parseTimeValue(value, op)
		if err != nil {
			return Filter{}, err
		}
		return Filter{Field: FieldStart, Op: op, TimeValue: t}, nil
	case "end":
		t, err := parseTimeValue(value, op)
		if err != nil {
			return Filter{}, err
		}
		return Filter{Field: FieldEnd, Op: op, TimeValue: t}, nil
	case "enqueue_at":
		t, err := parseTimeValue(value, op)
		if err != nil {
			return Filter{}, err
		}
		return Filter{Field: FieldEnqueueAt, Op: op, TimeValue: t}, nil
	case "label":
		return Filter{Field: FieldLabel, Op: op, StringValue: value}, nil
	case "command":
		return Filter{Field: FieldCommand, Op: op, StringValue: value}, nil
	case "group":
		return Filter{Field: FieldGroup, Op: op, StringValue: value}, nil
	default:
		return Filter{}, fmt.Errorf("query: unknown filter field %q", fieldName)
	}
}

// parseTimeValue accepts either "%F %T" (full timestamp) or a bare "%F"
// date. A date-only value is widened to the start of day for a lower
// bound (>,>=) and to the end of day for an upper bound (<,<=), so
// "end<2024-01-02" still matches everything that finished during that day.
func parseTimeValue(value string, op Op) (time.Time, error) {
	if t, err := time.ParseInLocation(dateTimeLayout, value, time.Local); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("query: invalid time value %q", value)
	}
	switch op {
	case OpGt, OpGte:
		return t, nil // start of day already
	case OpLt, OpLte:
		return t.Add(24*time.Hour - time.Nanosecond), nil // end of day
	default:
		return t, nil
	}
}
