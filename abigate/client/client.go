package client

import (
	"context"

	"github.com/NilFoundation/abigate/abigate/internal/types"
	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// CallMsg describes a single contract call. Args are already converted to the Go values
// expected by Method.Inputs; packing them is up to the transport.
type CallMsg struct {
	To     types.Address
	Method ethabi.Method
	Args   []any
}

// Submission is the raw result of a call sent as a transaction. The function outputs are not
// known until the transaction is executed, so there is nothing to decode.
type Submission struct {
	TxHash ethcommon.Hash `json:"txHash"`
}

func (s *Submission) String() string {
	return s.TxHash.Hex()
}

// Transport places a call against the network and returns the raw result. A single-output
// call yields that output, a call with several outputs yields []any in declaration order.
// A call sent as a transaction yields *Submission.
//
//go:generate go run github.com/matryer/moq -out client_generated_mock.go -rm -stub -with-resets . Transport
type Transport interface {
	Call(ctx context.Context, msg CallMsg) (any, error)
}
