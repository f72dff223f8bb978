package abi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedAbi = errors.New("malformed abi")

// Description is the parsed interface of one contract. It keeps the bytes it was parsed from
// so that cached copies stay byte-identical to what the indexing service returned.
// A Description is never modified after Parse.
type Description struct {
	members []Member
	raw     []byte
}

// Parse decodes a JSON ABI (an array of member objects), preserving source order.
func Parse(raw []byte) (*Description, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformedAbi)
	}

	var members []Member
	if err := json.Unmarshal(trimmed, &members); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedAbi, err)
	}
	for i, m := range members {
		if m.Kind == KindFunction && m.Name == "" {
			return nil, fmt.Errorf("%w: function at index %d has no name", ErrMalformedAbi, i)
		}
	}

	return &Description{
		members: members,
		raw:     bytes.Clone(raw),
	}, nil
}

// Members returns a copy of all entries in source order.
func (d *Description) Members() []Member {
	res := make([]Member, len(d.members))
	for i := range d.members {
		res[i] = d.members[i].Clone()
	}
	return res
}

// Functions returns the function-kind entries in source order.
func (d *Description) Functions() []Member {
	res := make([]Member, 0, len(d.members))
	for i := range d.members {
		if d.members[i].Kind == KindFunction {
			res = append(res, d.members[i].Clone())
		}
	}
	return res
}

// Raw returns the verbatim serialized description.
func (d *Description) Raw() []byte {
	return bytes.Clone(d.raw)
}

func (d *Description) MarshalJSON() ([]byte, error) {
	return json.RawMessage(d.raw).MarshalJSON()
}
