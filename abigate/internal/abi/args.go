package abi

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/NilFoundation/abigate/abigate/internal/types"
	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")

	bigIntType = reflect.TypeOf(&big.Int{})
)

// ConvertArgs turns untyped caller values (JSON-decoded values or CLI strings) into the Go
// values go-ethereum expects when packing inputs. The caller checks the argument count.
func ConvertArgs(inputs ethabi.Arguments, args []any) ([]any, error) {
	if len(args) != len(inputs) {
		return nil, fmt.Errorf("%w: expected %d arguments but got %d", ErrInvalidArgument, len(inputs), len(args))
	}
	res := make([]any, 0, len(args))
	for i, arg := range args {
		val, err := convertArg(arg, inputs[i].Type)
		if err != nil {
			return nil, fmt.Errorf("failed to parse argument %d (%s): %w", i, inputs[i].Type.String(), err)
		}
		res = append(res, val)
	}
	return res, nil
}

func convertArg(arg any, tp ethabi.Type) (any, error) {
	refTp := tp.GetType()
	val := reflect.New(refTp).Elem()
	switch tp.T {
	case ethabi.IntTy, ethabi.UintTy:
		i, err := parseInteger(arg)
		if err != nil {
			return nil, err
		}
		if err := checkIntRange(i, tp); err != nil {
			return nil, err
		}
		switch {
		case refTp == bigIntType:
			val.Set(reflect.ValueOf(i))
		case tp.T == ethabi.UintTy:
			val.SetUint(i.Uint64())
		default:
			val.SetInt(i.Int64())
		}
	case ethabi.StringTy:
		s, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected string, got %T", ErrInvalidArgument, arg)
		}
		val.SetString(s)
	case ethabi.BoolTy:
		b, err := parseBool(arg)
		if err != nil {
			return nil, err
		}
		val.SetBool(b)
	case ethabi.AddressTy:
		addr, err := parseAddress(arg)
		if err != nil {
			return nil, err
		}
		val.Set(reflect.ValueOf(addr))
	case ethabi.BytesTy:
		data, err := parseBytes(arg)
		if err != nil {
			return nil, err
		}
		val.SetBytes(data)
	case ethabi.FixedBytesTy:
		data, err := parseBytes(arg)
		if err != nil {
			return nil, err
		}
		if len(data) != tp.Size {
			return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidArgument, tp.Size, len(data))
		}
		reflect.Copy(val, reflect.ValueOf(data))
	case ethabi.SliceTy:
		elems, err := splitList(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range elems {
			elem, err := convertArg(e, *tp.Elem)
			if err != nil {
				return nil, fmt.Errorf("failed to parse slice element: %w", err)
			}
			val = reflect.Append(val, reflect.ValueOf(elem))
		}
	case ethabi.ArrayTy:
		elems, err := splitList(arg)
		if err != nil {
			return nil, err
		}
		if len(elems) != tp.Size {
			return nil, fmt.Errorf("%w: expected %d elements, got %d", ErrInvalidArgument, tp.Size, len(elems))
		}
		for i, e := range elems {
			elem, err := convertArg(e, *tp.Elem)
			if err != nil {
				return nil, fmt.Errorf("failed to parse array element %d: %w", i, err)
			}
			val.Index(i).Set(reflect.ValueOf(elem))
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, tp.String())
	}
	return val.Interface(), nil
}

func parseInteger(arg any) (*big.Int, error) {
	switch v := arg.(type) {
	case string:
		return parseIntegerString(v)
	case json.Number:
		return parseIntegerString(v.String())
	case float64:
		d := decimal.NewFromFloat(v)
		if !d.IsInteger() {
			return nil, fmt.Errorf("%w: %v is not an integer", ErrInvalidArgument, v)
		}
		return d.BigInt(), nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("%w: nil integer", ErrInvalidArgument)
		}
		return new(big.Int).Set(v), nil
	}
	return nil, fmt.Errorf("%w: expected integer, got %T", ErrInvalidArgument, arg)
}

// parseIntegerString accepts decimal, 0x-hex and scientific notation ("1e18").
func parseIntegerString(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if i, ok := new(big.Int).SetString(s, 0); ok {
		return i, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse int argument %q", ErrInvalidArgument, s)
	}
	if !d.IsInteger() {
		return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidArgument, s)
	}
	return d.BigInt(), nil
}

func checkIntRange(i *big.Int, tp ethabi.Type) error {
	if tp.T == ethabi.UintTy {
		if i.Sign() < 0 || i.BitLen() > tp.Size {
			return fmt.Errorf("%w: %s out of range for %s", ErrInvalidArgument, i, tp.String())
		}
		return nil
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(tp.Size-1))
	minValue := new(big.Int).Neg(limit)
	if i.Cmp(minValue) < 0 || i.Cmp(limit) >= 0 {
		return fmt.Errorf("%w: %s out of range for %s", ErrInvalidArgument, i, tp.String())
	}
	return nil
}

func parseBool(arg any) (bool, error) {
	switch v := arg.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("%w: failed to parse bool argument: %w", ErrInvalidArgument, err)
		}
		return b, nil
	}
	return false, fmt.Errorf("%w: expected bool, got %T", ErrInvalidArgument, arg)
}

func parseAddress(arg any) (ethcommon.Address, error) {
	switch v := arg.(type) {
	case string:
		addr, err := types.ParseAddress(v)
		if err != nil {
			return ethcommon.Address{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		return addr.Eth(), nil
	case ethcommon.Address:
		return v, nil
	case types.Address:
		return v.Eth(), nil
	}
	return ethcommon.Address{}, fmt.Errorf("%w: expected address, got %T", ErrInvalidArgument, arg)
}

func parseBytes(arg any) ([]byte, error) {
	switch v := arg.(type) {
	case string:
		data, err := hexutil.Decode(v)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse bytes argument: %w", ErrInvalidArgument, err)
		}
		return data, nil
	case []byte:
		return v, nil
	}
	return nil, fmt.Errorf("%w: expected hex string, got %T", ErrInvalidArgument, arg)
}

// splitList accepts a JSON array or a comma-separated string.
func splitList(arg any) ([]any, error) {
	switch v := arg.(type) {
	case []any:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		parts := strings.Split(v, ",")
		res := make([]any, len(parts))
		for i, p := range parts {
			res[i] = strings.TrimSpace(p)
		}
		return res, nil
	}
	return nil, fmt.Errorf("%w: expected list, got %T", ErrInvalidArgument, arg)
}
