package dbtypes

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// UUIDArray is a cart line's option set. It is stored as a Postgres uuid[]
// literal, which SQLite keeps as plain TEXT.
type UUIDArray []uuid.UUID

// Scan implements sql.Scanner for uuid[] literals such as {a,b}.
func (a *UUIDArray) Scan(src any) error {
	var literal string
	switch v := src.(type) {
	case nil:
	case string:
		literal = v
	case []byte:
		literal = string(v)
	default:
		return fmt.Errorf("dbtypes: cannot scan %T into UUIDArray", src)
	}
	ids, err := parseUUIDLiteral(literal)
	if err != nil {
		return err
	}
	*a = ids
	return nil
}

// Value implements driver.Valuer, writing a uuid[] literal.
func (a UUIDArray) Value() (driver.Value, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, id := range a {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(id.String())
	}
	b.WriteByte('}')
	return b.String(), nil
}

// Canonical returns a sorted copy without duplicates, so equal option sets
// store the same literal.
func (a UUIDArray) Canonical() UUIDArray {
	out := slices.Clone(a)
	if out == nil {
		out = UUIDArray{}
	}
	slices.SortFunc(out, func(x, y uuid.UUID) int { return bytes.Compare(x[:], y[:]) })
	return slices.Compact(out)
}

// SameSet ignores order and repeats.
func (a UUIDArray) SameSet(other UUIDArray) bool {
	return slices.Equal(a.Canonical(), other.Canonical())
}

func parseUUIDLiteral(literal string) (UUIDArray, error) {
	body := strings.TrimSpace(literal)
	body = strings.TrimSuffix(strings.TrimPrefix(body, "{"), "}")
	if strings.TrimSpace(body) == "" {
		return UUIDArray{}, nil
	}
	fields := strings.Split(body, ",")
	ids := make(UUIDArray, len(fields))
	for i, field := range fields {
		field = strings.Trim(strings.TrimSpace(field), `"`)
		id, err := uuid.Parse(field)
		if err != nil {
			return nil, fmt.Errorf("dbtypes: element %d of uuid array: %w", i, err)
		}
		ids[i] = id
	}
	return ids, nil
}
