package types

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
)

// AddrSize is the expected length of the address (in bytes)
const AddrSize = 20

var (
	ErrInvalidAddress  = errors.New("invalid contract address")
	ErrInvalidChecksum = errors.New("address checksum mismatch")
)

// Address represents the 20-byte address of a deployed contract.
type Address [AddrSize]byte

var EmptyAddress = Address{}

// Checking compliance with the pflag.Value interface.
var _ pflag.Value = (*Address)(nil)

// BytesToAddress returns Address with value b.
// If b is larger than len(h), b will be cropped from the left.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// HexToAddress converts a hex string to Address without checksum validation.
func HexToAddress(s string) Address {
	return Address(ethcommon.HexToAddress(s))
}

// ParseAddress parses a hex address with or without 0x prefix. Single-case input is accepted
// as is, mixed-case input must carry a valid EIP-55 checksum.
func ParseAddress(s string) (Address, error) {
	body := s
	if has0xPrefix(body) {
		body = body[2:]
	}
	if len(body) != 2*AddrSize {
		return Address{}, fmt.Errorf("%w: %q has %d hex digits, expected %d", ErrInvalidAddress, s, len(body), 2*AddrSize)
	}
	raw, err := hex.DecodeString(body)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, s, err)
	}
	addr := BytesToAddress(raw)

	if body != strings.ToLower(body) && body != strings.ToUpper(body) {
		if addr.Hex()[2:] != body {
			return Address{}, fmt.Errorf("%w: %q", ErrInvalidChecksum, s)
		}
	}
	return addr, nil
}

// IsAddress reports whether s passes ParseAddress.
func IsAddress(s string) bool {
	_, err := ParseAddress(s)
	return err == nil
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// Bytes gets the string representation of the underlying address.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns an EIP55-compliant hex string representation of the address.
func (a Address) Hex() string {
	return ethcommon.Address(a).Hex()
}

// Eth converts the address into the go-ethereum representation.
func (a Address) Eth() ethcommon.Address {
	return ethcommon.Address(a)
}

func (a Address) Equal(b Address) bool {
	return bytes.Equal(a.Bytes(), b.Bytes())
}

func (a Address) IsEmpty() bool {
	return a.Equal(EmptyAddress)
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return a.Hex()
}

// SetBytes sets the address to the value of b.
// If b is larger than len(a), b will be cropped from the left.
func (a *Address) SetBytes(b []byte) {
	if len(b) > len(a) {
		b = b[len(b)-AddrSize:]
	}
	copy(a[AddrSize-len(b):], b)
}

// MarshalText returns the checksummed hex representation of a.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

func (a *Address) UnmarshalText(input []byte) error {
	addr, err := ParseAddress(string(input))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// Set implements pflag.Value.
func (a *Address) Set(val string) error {
	return a.UnmarshalText([]byte(val))
}

func (a *Address) Type() string {
	return "Address"
}
