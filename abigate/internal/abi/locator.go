package abi

import (
	"errors"
)

var ErrMemberNotFound = errors.New("function not found")

// Find returns the first function named name with exactly arity inputs.
// Overloads are told apart by arity only; parameter types are not considered.
// Duplicate (name, arity) entries resolve to the first one in source order.
func Find(desc *Description, name string, arity int) (*Member, error) {
	for i := range desc.members {
		m := &desc.members[i]
		if m.Kind != KindFunction {
			continue
		}
		if m.Name == name && len(m.Inputs) == arity {
			res := m.Clone()
			return &res, nil
		}
	}
	return nil, ErrMemberNotFound
}
