package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Violation is either a wrong item or a breached dietary restriction
type Violation string

// ViolationWrongItem marks a served item that was never ordered
const ViolationWrongItem Violation = "WRONG_ITEM"

// RestrictionViolation returns the violation for a breached restriction
func RestrictionViolation(r RestrictionType) Violation {
	return Violation(r)
}

// Restriction returns the restriction breached by v, if any
func (v Violation) Restriction() (RestrictionType, bool) {
	r := RestrictionType(v)
	return r, r.Valid()
}

// Valid reports whether v is a known violation
func (v Violation) Valid() bool {
	if v == ViolationWrongItem {
		return true
	}
	_, ok := v.Restriction()
	return ok
}

// ParseViolation converts a raw value into a Violation
func ParseViolation(s string) (Violation, error) {
	v := Violation(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown violation %q", s)
	}
	return v, nil
}

// UnmarshalJSON rejects unknown violations
func (v *Violation) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("violation must be a string: %w", err)
	}
	parsed, err := ParseViolation(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// RestrictionKey returns the sorted, comma-joined form of a restriction set
func RestrictionKey(restrictions []RestrictionType) string {
	tags := make([]string, 0, len(restrictions))
	for _, r := range restrictions {
		tags = append(tags, string(r))
	}
	sort.Strings(tags)
	return strings.Join(tags, ",")
}
