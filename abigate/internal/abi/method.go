package abi

import (
	"errors"
	"fmt"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

var ErrUnsupportedType = errors.New("unsupported abi type")

// Method converts a function member into the go-ethereum representation used for packing
// calldata and unpacking results.
func (m *Member) Method() (ethabi.Method, error) {
	if m.Kind != KindFunction {
		return ethabi.Method{}, fmt.Errorf("%w: %s is a %s", ErrUnsupportedType, m.Name, m.Kind)
	}
	inputs, err := toArguments(m.Inputs)
	if err != nil {
		return ethabi.Method{}, fmt.Errorf("inputs of %s: %w", m.Name, err)
	}
	outputs, err := toArguments(m.Outputs)
	if err != nil {
		return ethabi.Method{}, fmt.Errorf("outputs of %s: %w", m.Name, err)
	}
	return ethabi.NewMethod(
		m.Name, m.Name, ethabi.Function, m.Mutability,
		m.IsReadOnly(), m.Mutability == MutabilityPayable,
		inputs, outputs,
	), nil
}

func toArguments(params []Param) (ethabi.Arguments, error) {
	args := make(ethabi.Arguments, 0, len(params))
	for _, p := range params {
		tp, err := ethabi.NewType(p.Type, p.InternalType, toMarshaling(p.Components))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrUnsupportedType, p.Type, err)
		}
		args = append(args, ethabi.Argument{Name: p.Name, Type: tp, Indexed: p.Indexed})
	}
	return args, nil
}

func toMarshaling(params []Param) []ethabi.ArgumentMarshaling {
	if len(params) == 0 {
		return nil
	}
	res := make([]ethabi.ArgumentMarshaling, len(params))
	for i, p := range params {
		res[i] = ethabi.ArgumentMarshaling{
			Name:         p.Name,
			Type:         p.Type,
			InternalType: p.InternalType,
			Components:   toMarshaling(p.Components),
			Indexed:      p.Indexed,
		}
	}
	return res
}
