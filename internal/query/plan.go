// Package query implements the daemon's query language: a small grammar
// for selecting columns, filtering, ordering and limiting a task list,
// shared verbatim between the socket Status handler and the CLI's
// format-status path.
package query

import "time"

// Op is a filter comparison operator.
type Op int

const (
	OpEq Op = iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
)

// FieldKind identifies which task field a filter or the order clause
// applies to.
type FieldKind int

const (
	FieldStatus FieldKind = iota
	FieldStart
	FieldEnd
	FieldEnqueueAt
	FieldLabel
	FieldCommand
	FieldGroup
)

// Filter is a single predicate, e.g. "status=running" or "start>2024-01-01".
type Filter struct {
	Field FieldKind
	Op    Op

	// Exactly one of these is populated, depending on Field.
	StatusValues []string // FieldStatus: one-of, e.g. queued|running
	TimeValue    time.Time
	StringValue  string
}

// LimitKind selects the first or last N rows after ordering.
type LimitKind int

const (
	LimitNone LimitKind = iota
	LimitFirst
	LimitLast
)

type Limit struct {
	Kind LimitKind
	N    int
}

// Plan is the fully-parsed query: apply Filters, then Order, then Limit,
// then project down to Columns (nil Columns means "all columns").
type Plan struct {
	Columns []string
	Filters []Filter
	OrderBy FieldKind
	HasOrder bool
	Limit   Limit
}
