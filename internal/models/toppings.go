package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// ToppingSet is a set of topping ids stored as a canonical JSON array:
// sorted ascending, deduplicated, never null. Equal sets always serialize
// to identical text, so SQL equality on the column is set equality.
type ToppingSet []uint

// Normalize returns a sorted, deduplicated copy. A nil set normalizes to an
// empty, non-nil set.
func (t ToppingSet) Normalize() ToppingSet {
	out := make(ToppingSet, 0, len(t))
	seen := make(map[uint]struct{}, len(t))
	for _, id := range t {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (t ToppingSet) Equal(other ToppingSet) bool {
	a, b := t.Normalize(), other.Normalize()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (t ToppingSet) Value() (driver.Value, error) {
	raw, err := json.Marshal(t.Normalize())
	if err != nil {
		return nil, fmt.Errorf("encode topping set: %w", err)
	}
	return string(raw), nil
}

func (t *ToppingSet) Scan(src any) error {
	if src == nil {
		*t = ToppingSet{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ToppingSet", src)
	}
	if len(raw) == 0 {
		*t = ToppingSet{}
		return nil
	}
	var ids []uint
	if err := json.Unmarshal(raw, &ids); err != nil {
		return fmt.Errorf("decode topping set: %w", err)
	}
	*t = ToppingSet(ids).Normalize()
	return nil
}
