// internal/repository/sqlrepo/character_sql.go
package sqlrepo

import (
	"fmt"
	"strings"

	"characters-api/internal/domain"
)

const characterColumns = "id, name, age, house, animal, symbol, nickname, role, death, strength"

// characterFieldColumns maps filter and sort attributes to columns. Only names in this
// map ever reach the SQL text; values always travel as bind arguments.
var characterFieldColumns = map[string]string{
	"age":      "age",
	"animal":   "animal",
	"death":    "death",
	"house":    "house",
	"name":     "name",
	"nickname": "nickname",
	"strength": "strength",
	"symbol":   "symbol",
	"role":     "role",
}

// buildWhere turns the filter into a conjunction of predicates using "?" placeholders.
// An empty filter yields an empty clause.
func buildWhere(filter domain.CharacterFilter) (string, []interface{}, error) {
	conds := filter.Conditions()
	if len(conds) == 0 {
		return "", nil, nil
	}

	predicates := make([]string, 0, len(conds))
	args := make([]interface{}, 0, len(conds))
	for _, c := range conds {
		col, ok := characterFieldColumns[c.Field]
		if !ok {
			return "", nil, fmt.Errorf("unknown filter field %q", c.Field)
		}
		switch c.Op {
		case domain.OpEqual:
			predicates = append(predicates, col+" = ?")
		case domain.OpEqualFold:
			predicates = append(predicates, "LOWER("+col+") = LOWER(?)")
		case domain.OpLessThan:
			predicates = append(predicates, col+" < ?")
		case domain.OpGreaterOrEqual:
			predicates = append(predicates, col+" >= ?")
		default:
			return "", nil, fmt.Errorf("unsupported operator %d for field %q", c.Op, c.Field)
		}
		args = append(args, c.Value)
	}
	return " WHERE " + strings.Join(predicates, " AND "), args, nil
}

// buildOrderBy picks the ordering for a list query:
//   - explicit sort_by: that column, nulls last in either direction, ties broken by id
//   - reverse flag only: id descending
//   - no ordering and no paging: random
//   - paging without ordering: id ascending, so consecutive pages do not overlap
func buildOrderBy(query *domain.CharacterQuery) (string, error) {
	switch {
	case query.SortBy != "":
		col, ok := characterFieldColumns[query.SortBy]
		if !ok {
			return "", fmt.Errorf("unknown sort field %q", query.SortBy)
		}
		direction := "ASC"
		if query.Descending {
			direction = "DESC"
		}
		return fmt.Sprintf(" ORDER BY %s %s NULLS LAST, id ASC", col, direction), nil
	case query.Descending:
		return " ORDER BY id DESC", nil
	case query.RandomOrder():
		return " ORDER BY RANDOM()", nil
	default:
		return " ORDER BY id ASC", nil
	}
}

// buildListQuery assembles the full page query with "?" placeholders.
func buildListQuery(query *domain.CharacterQuery) (string, []interface{}, error) {
	where, args, err := buildWhere(query.Filter)
	if err != nil {
		return "", nil, err
	}
	orderBy, err := buildOrderBy(query)
	if err != nil {
		return "", nil, err
	}
	sqlText := "SELECT " + characterColumns + " FROM characters" + where + orderBy + " LIMIT ? OFFSET ?"
	args = append(args, query.Limit, query.Offset())
	return sqlText, args, nil
}

// buildCountQuery assembles the count of rows matching the filter.
func buildCountQuery(filter domain.CharacterFilter) (string, []interface{}, error) {
	where, args, err := buildWhere(filter)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) FROM characters" + where, args, nil
}
