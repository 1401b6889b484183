// internal/domain/character_query.go
package domain

import (
	"net/url"
	"strconv"

	"characters-api/internal/util"
)

// DefaultPageLimit is the page size used when the client does not send limit.
const DefaultPageLimit = 20

// SortableFields lists the attributes accepted by the sort_by parameter.
var SortableFields = []string{"age", "animal", "death", "house", "name", "nickname", "strength", "symbol", "role"}

// Operator is the comparison applied by a Condition.
type Operator int

const (
	OpEqual          Operator = iota // column = value
	OpEqualFold                      // LOWER(column) = LOWER(value)
	OpLessThan                       // column < value
	OpGreaterOrEqual                 // column >= value
)

// Condition is one predicate of a character filter. All conditions of a filter are ANDed.
type Condition struct {
	Field string
	Op    Operator
	Value interface{}
}

// CharacterFilter holds the optional filter values; nil means "no constraint".
type CharacterFilter struct {
	Age         *int64
	AgeLessThan *int64
	AgeMoreThan *int64
	Death       *int64

	House    *string
	Animal   *string
	Name     *string
	Nickname *string
	Role     *string
	Symbol   *string
	Strength *string
}

// Conditions returns the predicates for every present filter value, in a fixed order.
func (f CharacterFilter) Conditions() []Condition {
	var conds []Condition
	addInt := func(field string, op Operator, v *int64) {
		if v != nil {
			conds = append(conds, Condition{Field: field, Op: op, Value: *v})
		}
	}
	addText := func(field string, v *string) {
		if v != nil {
			conds = append(conds, Condition{Field: field, Op: OpEqualFold, Value: *v})
		}
	}

	addInt("age", OpEqual, f.Age)
	addInt("age", OpLessThan, f.AgeLessThan)
	addInt("age", OpGreaterOrEqual, f.AgeMoreThan)
	addText("house", f.House)
	addText("animal", f.Animal)
	addInt("death", OpEqual, f.Death)
	addText("name", f.Name)
	addText("nickname", f.Nickname)
	addText("role", f.Role)
	addText("symbol", f.Symbol)
	addText("strength", f.Strength)
	return conds
}

// CharacterQuery is a validated list request: filters, ordering and paging.
type CharacterQuery struct {
	Filter     CharacterFilter
	SortBy     string // empty when no explicit sort was requested
	Descending bool
	Skip       *int64 // nil when skip was not sent
	Limit      int64
	LimitSet   bool // true when limit was sent explicitly
}

// RandomOrder reports whether rows should come back in random order: no ordering and
// no paging was requested, so no stable default order is implied.
func (q *CharacterQuery) RandomOrder() bool {
	return q.SortBy == "" && !q.Descending && q.Skip == nil && !q.LimitSet
}

// Offset returns the number of rows to skip.
func (q *CharacterQuery) Offset() int64 {
	if q.Skip == nil {
		return 0
	}
	return *q.Skip
}

// IsSortable reports whether field may be used with sort_by.
func IsSortable(field string) bool {
	for _, f := range SortableFields {
		if f == field {
			return true
		}
	}
	return false
}

// ParseCharacterQuery validates list query parameters. Every failure is a
// util.ErrInvalidInput carrying a client message, raised before any query runs.
func ParseCharacterQuery(values url.Values) (*CharacterQuery, error) {
	q := &CharacterQuery{Limit: DefaultPageLimit}

	// Sorting is checked first so an unknown attribute is rejected regardless of the rest.
	if sortBy := values.Get("sort_by"); sortBy != "" {
		if !IsSortable(sortBy) {
			return nil, util.NewDetailedError(util.ErrInvalidInput, "Invalid Input. Attribute %s doesn't exist.", sortBy)
		}
		q.SortBy = sortBy
	}
	_, q.Descending = values["sort_des"]

	var err error
	intFilters := []struct {
		param string
		dst   **int64
	}{
		{"age", &q.Filter.Age},
		{"age_less_than", &q.Filter.AgeLessThan},
		{"age_more_than", &q.Filter.AgeMoreThan},
		{"death", &q.Filter.Death},
	}
	for _, f := range intFilters {
		raw, ok := values[f.param]
		if !ok || len(raw) == 0 {
			continue
		}
		if *f.dst, err = parseInt(raw[0]); err != nil {
			return nil, util.NewDetailedError(util.ErrInvalidInput, "Invalid numeric value in filters: %s must be an integer, got %q", f.param, raw[0])
		}
	}

	textFilters := []struct {
		param string
		dst   **string
	}{
		{"house", &q.Filter.House},
		{"animal", &q.Filter.Animal},
		{"name", &q.Filter.Name},
		{"nickname", &q.Filter.Nickname},
		{"role", &q.Filter.Role},
		{"symbol", &q.Filter.Symbol},
		{"strength", &q.Filter.Strength},
	}
	for _, f := range textFilters {
		if raw, ok := values[f.param]; ok && len(raw) > 0 {
			v := raw[0]
			*f.dst = &v
		}
	}

	if raw := values.Get("skip"); raw != "" {
		skip, err := parseInt(raw)
		if err != nil || *skip < 0 {
			return nil, util.NewDetailedError(util.ErrInvalidInput, "Invalid Input. skip must be a non-negative integer, got %q", raw)
		}
		q.Skip = skip
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := parseInt(raw)
		if err != nil || *limit < 1 {
			return nil, util.NewDetailedError(util.ErrInvalidInput, "Invalid Input. limit must be a positive integer, got %q", raw)
		}
		q.Limit = *limit
		q.LimitSet = true
	}

	return q, nil
}

func parseInt(raw string) (*int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
