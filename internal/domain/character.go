// internal/domain/character.go
package domain

// Character is the single resource exposed by the API. Only Name is mandatory.
type Character struct {
	ID       int64   `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	Age      *int64  `db:"age" json:"age"`
	House    *string `db:"house" json:"house"`
	Animal   *string `db:"animal" json:"animal"`
	Symbol   *string `db:"symbol" json:"symbol"`
	Nickname *string `db:"nickname" json:"nickname"`
	Role     *string `db:"role" json:"role"`
	Death    *int64  `db:"death" json:"death"`
	Strength *string `db:"strength" json:"strength"`
}
