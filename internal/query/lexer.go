package query

import (
	"fmt"
	"strings"
)

// comparison splits a fragment like "start>2024-01-01 10:00:00" into its
// field name, operator and raw value. Operators are checked longest-first
// so ">=" isn't mis-split as ">" + "=...".
func splitComparison(fragment string) (field, op, value string, err error) {
	operators := []string{">=", "<=", "!=", ">", "<", "="}
	for _, o := range operators {
		if idx := strings.Index(fragment, o); idx > 0 {
			return fragment[:idx], o, fragment[idx+len(o):], nil
		}
	}
	return "", "", "", fmt.Errorf("query: %q has no recognized operator", fragment)
}

func opFromString(s string) (Op, error) {
	switch s {
	case "=":
		return OpEq, nil
	case "!=":
		return OpNeq, nil
	case "<":
		return OpLt, nil
	case "<=":
		return OpLte, nil
	case ">":
		return OpGt, nil
	case ">=":
		return OpGte, nil
	default:
		return 0, fmt.Errorf("query: unknown operator %q", s)
	}
}
