package models

import (
	"slices"
)

// Order selects how a Query sorts its results.
type Order int

const (
	// OrderInsertion keeps records in the order they were created.
	OrderInsertion Order = iota
	// OrderDateAsc sorts oldest first, ties broken by ID ascending.
	OrderDateAsc
	// OrderDateDesc is the exact reverse of OrderDateAsc.
	OrderDateDesc
)

// String returns the query-parameter spelling of the order.
func (o Order) String() string {
	switch o {
	case OrderDateAsc:
		return "asc"
	case OrderDateDesc:
		return "desc"
	default:
		return "insertion"
	}
}

// Query is a composed view over accidents. Filters intersect; the last
// ordering scope applied wins. The zero value matches everything in
// insertion order.
type Query struct {
	PartyRelations []string
	Order          Order
	FatalOnly      bool
}

// Scope narrows or orders a Query.
type Scope func(*Query)

// NewQuery builds a Query from scopes, applied left to right.
func NewQuery(scopes ...Scope) Query {
	var q Query
	return q.With(scopes...)
}

// With returns a copy of q with more scopes applied. q itself is unchanged.
func (q Query) With(scopes ...Scope) Query {
	q.PartyRelations = slices.Clone(q.PartyRelations)
	for _, scope := range scopes {
		scope(&q)
	}
	return q
}

// Fatal keeps only fatal incidents.
func Fatal() Scope {
	return func(q *Query) { q.FatalOnly = true }
}

// SelfInflicted keeps only incidents coded SI.
func SelfInflicted() Scope {
	return PartyRelation(PartyRelationSelfInflicted)
}

// SameParty keeps only incidents coded SP.
func SameParty() Scope {
	return PartyRelation(PartyRelationSameParty)
}

// PartyRelation keeps only incidents with exactly this si_sp code.
// Several of them intersect, so two different codes match nothing.
func PartyRelation(code string) Scope {
	return func(q *Query) {
		if !slices.Contains(q.PartyRelations, code) {
			q.PartyRelations = append(q.PartyRelations, code)
		}
	}
}

// Chronological orders by date ascending.
func Chronological() Scope {
	return func(q *Query) { q.Order = OrderDateAsc }
}

// ReverseChronological orders by date descending.
func ReverseChronological() Scope {
	return func(q *Query) { q.Order = OrderDateDesc }
}

// Matches reports whether a satisfies every filter in q.
func (q Query) Matches(a *Accident) bool {
	if q.FatalOnly && !a.Fatal {
		return false
	}
	code := a.PartyRelationCode()
	for _, want := range q.PartyRelations {
		if code != want {
			return false
		}
	}
	return true
}

// Apply filters and orders accidents without modifying the input. The input
// is expected in insertion order.
func (q Query) Apply(accidents []Accident) []Accident {
	out := make([]Accident, 0, len(accidents))
	for i := range accidents {
		if q.Matches(&accidents[i]) {
			out = append(out, accidents[i])
		}
	}

	if q.Order == OrderInsertion {
		return out
	}

	slices.SortStableFunc(out, compareChronological)
	if q.Order == OrderDateDesc {
		slices.Reverse(out)
	}
	return out
}

func compareChronological(a, b Accident) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}
