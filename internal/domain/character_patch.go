// internal/domain/character_patch.go
package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"characters-api/internal/util"
)

// MaxTextLength is the widest value a text column of the characters and users tables holds.
const MaxTextLength = 100

// CharacterPatch holds the fields supplied in a create or update payload.
// A nil field was either absent or null and is left untouched.
type CharacterPatch struct {
	Name     *string
	House    *string
	Animal   *string
	Symbol   *string
	Nickname *string
	Role     *string
	Strength *string
	Age      *int64
	Death    *int64
}

func (p *CharacterPatch) stringField(key string) **string {
	switch key {
	case "name":
		return &p.Name
	case "house":
		return &p.House
	case "animal":
		return &p.Animal
	case "symbol":
		return &p.Symbol
	case "nickname":
		return &p.Nickname
	case "role":
		return &p.Role
	case "strength":
		return &p.Strength
	}
	return nil
}

func (p *CharacterPatch) intField(key string) **int64 {
	switch key {
	case "age":
		return &p.Age
	case "death":
		return &p.Death
	}
	return nil
}

// Apply merges the supplied fields into c.
func (p *CharacterPatch) Apply(c *Character) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	setString := func(dst **string, v *string) {
		if v != nil {
			s := *v
			*dst = &s
		}
	}
	setInt := func(dst **int64, v *int64) {
		if v != nil {
			n := *v
			*dst = &n
		}
	}
	setString(&c.House, p.House)
	setString(&c.Animal, p.Animal)
	setString(&c.Symbol, p.Symbol)
	setString(&c.Nickname, p.Nickname)
	setString(&c.Role, p.Role)
	setString(&c.Strength, p.Strength)
	setInt(&c.Age, p.Age)
	setInt(&c.Death, p.Death)
}

// ParseCharacterCreate validates a POST payload; name is mandatory and id is not accepted.
func ParseCharacterCreate(body []byte) (*CharacterPatch, error) {
	patch, err := decodeCharacterPayload(body, "Bad Input. Id cannot be specified")
	if err != nil {
		return nil, err
	}
	if patch.Name == nil {
		return nil, util.NewDetailedError(util.ErrInvalidInput, "Bad Input. Name must be specified")
	}
	return patch, nil
}

// ParseCharacterUpdate validates a PUT payload; every field is optional and id may not change.
func ParseCharacterUpdate(body []byte) (*CharacterPatch, error) {
	return decodeCharacterPayload(body, "ID cannot be updated")
}

// decodeCharacterPayload checks keys against the character schema and values against
// the column types and widths. Keys are visited in sorted order so the reported error is stable.
func decodeCharacterPayload(body []byte, idMessage string) (*CharacterPatch, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, util.NewDetailedError(util.ErrInvalidInput, "Bad Input. Request body must be a JSON object")
	}

	if _, ok := fields["id"]; ok {
		return nil, util.NewDetailedError(util.ErrInvalidInput, "%s", idMessage)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	patch := &CharacterPatch{}
	for _, key := range keys {
		raw := fields[key]
		if dst := patch.stringField(key); dst != nil {
			if isNull(raw) {
				continue
			}
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, util.NewDetailedError(util.ErrInvalidInput, "Bad Input. %s must be a string", capitalize(key))
			}
			if utf8.RuneCountInString(s) > MaxTextLength {
				return nil, util.NewDetailedError(util.ErrInvalidInput, "Bad Input. %s must be at most %d characters", capitalize(key), MaxTextLength)
			}
			*dst = &s
			continue
		}
		if dst := patch.intField(key); dst != nil {
			if isNull(raw) {
				continue
			}
			n, ok := decodeInteger(raw)
			if !ok {
				return nil, util.NewDetailedError(util.ErrInvalidInput, "Bad Input. %s must be an integer", capitalize(key))
			}
			// age and death are 32-bit INTEGER columns.
			if n < math.MinInt32 || n > math.MaxInt32 {
				return nil, util.NewDetailedError(util.ErrInvalidInput, "Bad Input. %s is out of range", capitalize(key))
			}
			*dst = &n
			continue
		}
		return nil, util.NewDetailedError(util.ErrInvalidInput, "Bad Input. Unknown field %q", key)
	}
	return patch, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeInteger accepts only integral JSON numbers; 10.5, "10" and true are rejected.
func decodeInteger(raw json.RawMessage) (int64, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	num, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	n, err := num.Int64()
	if err != nil {
		return 0, false
	}
	return n, true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
