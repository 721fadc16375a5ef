package store

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Eq is one equality predicate on a top-level column.
type Eq struct {
	Column string
	Value  any
}

// Filters carries the PostgREST-style query modifiers understood by every
// backend: equality predicates, "col.asc"/"col.desc" ordering, limit/offset
// pagination and column selection.
type Filters struct {
	Eqs    []Eq
	Order  string
	Limit  int
	Offset int
	Select string
}

// ByID is the common single-record filter.
func ByID(id string) Filters {
	return Filters{Eqs: []Eq{{"id", id}}}
}

// Encode renders the filters as a PostgREST query string
// (col=eq.value&order=col.desc&limit=n&offset=n).
func (f Filters) Encode() url.Values {
	q := url.Values{}
	for _, eq := range f.Eqs {
		q.Set(eq.Column, "eq."+fmt.Sprint(eq.Value))
	}
	if f.Order != "" {
		q.Set("order", f.Order)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	if f.Select != "" {
		q.Set("select", f.Select)
	}
	return q
}

// OrderColumn splits the order spec into column and direction.
func (f Filters) OrderColumn() (column string, desc bool, ok bool) {
	if f.Order == "" {
		return "", false, false
	}
	column = f.Order
	if i := strings.LastIndexByte(f.Order, '.'); i >= 0 {
		column = f.Order[:i]
		desc = f.Order[i+1:] == "desc"
	}
	return column, desc, true
}

// Match reports whether a record satisfies every equality predicate.
// Values are compared on their canonical string form so callers may pass
// ints where the stored value is a JSON number and vice versa.
func (f Filters) Match(rec Record) bool {
	for _, eq := range f.Eqs {
		got, found := rec[eq.Column]
		if !found {
			return false
		}
		if canonical(got) != canonical(eq.Value) {
			return false
		}
	}
	return true
}

func canonical(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		return strconv.Itoa(n)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
