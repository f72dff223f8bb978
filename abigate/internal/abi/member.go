package abi

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// MemberKind is the closed set of ABI entry kinds the gateway distinguishes.
// Switches over MemberKind must stay exhaustive.
type MemberKind uint8

const (
	KindOther MemberKind = iota
	KindFunction
	KindEvent
	KindConstructor
	KindFallback
)

func (k MemberKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindEvent:
		return "event"
	case KindConstructor:
		return "constructor"
	case KindFallback:
		return "fallback"
	case KindOther:
		return "other"
	}
	return fmt.Sprintf("MemberKind(%d)", uint8(k))
}

// kindFromType maps the "type" discriminator of a JSON ABI entry.
// Solidity ABI JSON allows omitting "type" for functions.
func kindFromType(t string) MemberKind {
	switch t {
	case "function", "":
		return KindFunction
	case "event":
		return KindEvent
	case "constructor":
		return KindConstructor
	case "fallback":
		return KindFallback
	default:
		return KindOther
	}
}

const (
	MutabilityPure       = "pure"
	MutabilityView       = "view"
	MutabilityNonPayable = "nonpayable"
	MutabilityPayable    = "payable"
)

// Param is one entry of Member inputs or outputs.
type Param struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	InternalType string  `json:"internalType,omitempty"`
	Components   []Param `json:"components,omitempty"`
	Indexed      bool    `json:"indexed,omitempty"`
}

// Member is one entry of a contract ABI.
type Member struct {
	Kind MemberKind
	// RawType is the "type" field as published. It distinguishes e.g. "receive" from "error"
	// for members of KindOther.
	RawType    string
	Name       string
	Inputs     []Param
	Outputs    []Param
	Mutability string
}

type memberJson struct {
	Type            string  `json:"type"`
	Name            string  `json:"name"`
	Inputs          []Param `json:"inputs"`
	Outputs         []Param `json:"outputs"`
	StateMutability string  `json:"stateMutability"`
	Constant        bool    `json:"constant"`
	Payable         bool    `json:"payable"`
}

func (m *Member) UnmarshalJSON(data []byte) error {
	var raw memberJson
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	mutability := raw.StateMutability
	if mutability == "" {
		switch {
		case raw.Constant:
			mutability = MutabilityView
		case raw.Payable:
			mutability = MutabilityPayable
		default:
			mutability = MutabilityNonPayable
		}
	}
	*m = Member{
		Kind:       kindFromType(raw.Type),
		RawType:    raw.Type,
		Name:       raw.Name,
		Inputs:     raw.Inputs,
		Outputs:    raw.Outputs,
		Mutability: mutability,
	}
	return nil
}

func (m Member) MarshalJSON() ([]byte, error) {
	rawType := m.RawType
	if rawType == "" {
		rawType = m.Kind.String()
	}
	return json.Marshal(memberJson{
		Type:            rawType,
		Name:            m.Name,
		Inputs:          m.Inputs,
		Outputs:         m.Outputs,
		StateMutability: m.Mutability,
	})
}

// Clone returns a copy of m that shares no memory with it.
func (m *Member) Clone() Member {
	res := *m
	res.Inputs = cloneParams(m.Inputs)
	res.Outputs = cloneParams(m.Outputs)
	return res
}

func cloneParams(params []Param) []Param {
	res := slices.Clone(params)
	for i := range res {
		res[i].Components = cloneParams(res[i].Components)
	}
	return res
}

// Arity is the number of declared inputs.
func (m *Member) Arity() int {
	return len(m.Inputs)
}

// IsReadOnly reports whether the member does not modify state.
func (m *Member) IsReadOnly() bool {
	return m.Mutability == MutabilityView || m.Mutability == MutabilityPure
}

// Signature returns the canonical signature, e.g. "transfer(address,uint256)".
func (m *Member) Signature() string {
	types := make([]string, len(m.Inputs))
	for i, in := range m.Inputs {
		types[i] = in.canonicalType()
	}
	return fmt.Sprintf("%s(%s)", m.Name, strings.Join(types, ","))
}

func (p Param) canonicalType() string {
	if !strings.HasPrefix(p.Type, "tuple") {
		return p.Type
	}
	types := make([]string, len(p.Components))
	for i, c := range p.Components {
		types[i] = c.canonicalType()
	}
	return "(" + strings.Join(types, ",") + ")" + strings.TrimPrefix(p.Type, "tuple")
}
