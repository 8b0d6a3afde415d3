// Package patch implements the partial-update protocol shared by every
// resource's PATCH endpoint: an ordered list of edit operations is folded
// into a single merge-set and applied to one record.
package patch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Value is the scalar carried by an edit operation. JSON strings, numbers and
// booleans are accepted; non-strings keep their literal text.
type Value string

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty value")
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
	case '{', '[':
		return fmt.Errorf("value must be a scalar")
	default:
		if bytes.Equal(data, []byte("null")) {
			return fmt.Errorf("value must not be null")
		}
		if !json.Valid(data) {
			return fmt.Errorf("invalid value %q", data)
		}
		*v = Value(data)
	}
	return nil
}

// Operation is a single field edit.
type Operation struct {
	PropName string `json:"propName" validate:"required"`
	Value    Value  `json:"value"`
}

// MergeSet maps field names to the value they end up with.
type MergeSet map[string]string

// UpdateResult is the mutation summary reported to callers.
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// Target applies a merge-set to the record identified by id.
// Matching nothing is reported through a zero MatchedCount, not an error.
type Target interface {
	UpdateFields(ctx context.Context, id string, fields MergeSet) (UpdateResult, error)
}

// Canonicalizer is implemented by targets that accept several spellings of
// one field. CanonicalField returns the single name every spelling maps to.
type Canonicalizer interface {
	CanonicalField(name string) string
}

// Fold builds the merge-set for ops. Operations are applied left to right,
// so the last operation for a field wins.
func Fold(ops []Operation) MergeSet {
	return FoldWith(ops, nil)
}

// FoldWith is Fold with field names passed through canonical first, so two
// spellings of one field still resolve by operation order. A nil canonical
// keeps names as given.
func FoldWith(ops []Operation, canonical func(string) string) MergeSet {
	set := make(MergeSet, len(ops))
	for _, op := range ops {
		name := op.PropName
		if canonical != nil {
			name = canonical(name)
		}
		set[name] = string(op.Value)
	}
	return set
}

// Applier applies edit operations to stored records.
type Applier struct{}

// NewApplier creates an Applier.
func NewApplier() *Applier {
	return &Applier{}
}

// Apply folds ops and writes the result to the record id of target.
func (a *Applier) Apply(ctx context.Context, target Target, id string, ops []Operation) (UpdateResult, error) {
	var canonical func(string) string
	if c, ok := target.(Canonicalizer); ok {
		canonical = c.CanonicalField
	}
	return target.UpdateFields(ctx, id, FoldWith(ops, canonical))
}
