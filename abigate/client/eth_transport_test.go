package client

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/NilFoundation/abigate/abigate/common/logging"
	"github.com/NilFoundation/abigate/abigate/internal/types"
	ethereum "github.com/ethereum/go-ethereum"
	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

// callBackend answers eth_call only; any other backend method panics through the nil embedding.
type callBackend struct {
	bind.ContractBackend

	calls []ethereum.CallMsg
	reply func(data []byte) ([]byte, error)
}

func (b *callBackend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	b.calls = append(b.calls, call)
	return b.reply(call.Data)
}

func (b *callBackend) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

// txBackend additionally accepts transactions. Headers carry no base fee, so the bound
// contract builds legacy transactions.
type txBackend struct {
	*callBackend

	sent []*ethtypes.Transaction
}

func (b *txBackend) HeaderByNumber(context.Context, *big.Int) (*ethtypes.Header, error) {
	return &ethtypes.Header{Number: big.NewInt(1)}, nil
}

func (b *txBackend) PendingCodeAt(context.Context, ethcommon.Address) ([]byte, error) {
	return []byte{0x60}, nil
}

func (b *txBackend) PendingNonceAt(context.Context, ethcommon.Address) (uint64, error) {
	return uint64(len(b.sent)), nil
}

func (b *txBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (b *txBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 50_000, nil
}

func (b *txBackend) SendTransaction(_ context.Context, tx *ethtypes.Transaction) error {
	b.sent = append(b.sent, tx)
	return nil
}

func newMethod(t *testing.T, name, mutability string, inputs, outputs []string) ethabi.Method {
	t.Helper()

	toArgs := func(types []string) ethabi.Arguments {
		res := make(ethabi.Arguments, len(types))
		for i, tp := range types {
			abiType, err := ethabi.NewType(tp, "", nil)
			require.NoError(t, err)
			res[i] = ethabi.Argument{Type: abiType}
		}
		return res
	}
	return ethabi.NewMethod(name, name, ethabi.Function, mutability,
		mutability == "view" || mutability == "pure", mutability == "payable",
		toArgs(inputs), toArgs(outputs))
}

func TestEthTransportCallSingleOutput(t *testing.T) {
	t.Parallel()

	method := newMethod(t, "balanceOf", "view", []string{"address"}, []string{"uint256"})
	backend := &callBackend{
		reply: func([]byte) ([]byte, error) {
			return method.Outputs.Pack(big.NewInt(1234))
		},
	}
	transport, err := NewEthTransport(backend, "", logging.Nop())
	require.NoError(t, err)

	to := types.HexToAddress("0xABCDEF0123456789000000000000000000000001")
	owner := ethcommon.HexToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	res, err := transport.Call(t.Context(), CallMsg{To: to, Method: method, Args: []any{owner}})
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1234), res)

	require.Len(t, backend.calls, 1)
	call := backend.calls[0]
	require.Equal(t, to.Eth(), *call.To)
	require.Equal(t, []byte{0x70, 0xa0, 0x82, 0x31}, call.Data[:4])
	require.Len(t, call.Data, 4+32)
}

func TestEthTransportCallMultipleOutputs(t *testing.T) {
	t.Parallel()

	// Without a signing key a state-changing member is still evaluated through eth_call.
	method := newMethod(t, "transfer", "nonpayable", []string{"address", "uint256"}, []string{"bool", "uint256"})
	backend := &callBackend{
		reply: func([]byte) ([]byte, error) {
			return method.Outputs.Pack(true, big.NewInt(5))
		},
	}
	transport, err := NewEthTransport(backend, "", logging.Nop())
	require.NoError(t, err)

	res, err := transport.Call(t.Context(), CallMsg{
		To:     types.HexToAddress("0x0000000000000000000000000000000000000002"),
		Method: method,
		Args:   []any{ethcommon.Address{}, big.NewInt(7)},
	})
	require.NoError(t, err)
	require.Equal(t, []any{true, big.NewInt(5)}, res)
}

func TestEthTransportErrors(t *testing.T) {
	t.Parallel()

	reverted := errors.New("execution reverted")
	method := newMethod(t, "f", "view", []string{"uint8"}, []string{"uint256"})
	backend := &callBackend{
		reply: func([]byte) ([]byte, error) {
			return nil, reverted
		},
	}
	transport, err := NewEthTransport(backend, "", logging.Nop())
	require.NoError(t, err)

	_, err = transport.Call(t.Context(), CallMsg{Method: method, Args: []any{uint8(1)}})
	require.ErrorIs(t, err, reverted)

	// Wrong Go type for the declared input.
	_, err = transport.Call(t.Context(), CallMsg{Method: method, Args: []any{"1"}})
	require.Error(t, err)
	require.Len(t, backend.calls, 1)

	// Empty return data cannot be unpacked into a declared output.
	backend.reply = func([]byte) ([]byte, error) { return nil, nil }
	_, err = transport.Call(t.Context(), CallMsg{Method: method, Args: []any{uint8(1)}})
	require.Error(t, err)
}

func TestNewEthTransportInvalidKey(t *testing.T) {
	t.Parallel()

	_, err := NewEthTransport(&callBackend{}, "not a key", logging.Nop())
	require.Error(t, err)

	transport, err := NewEthTransport(&callBackend{},
		"0000000000000000000000000000000000000000000000000000000000000001", logging.Nop())
	require.NoError(t, err)
	chainId, err := transport.getChainId(t.Context())
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1), chainId)
}

func TestEthTransportTransact(t *testing.T) {
	t.Parallel()

	method := newMethod(t, "mint", "nonpayable", []string{"uint256"}, []string{"uint256"})
	backend := &txBackend{callBackend: &callBackend{}}
	transport, err := NewEthTransport(backend,
		"0000000000000000000000000000000000000000000000000000000000000001", logging.Nop())
	require.NoError(t, err)

	to := types.HexToAddress("0x0000000000000000000000000000000000000003")
	res, err := transport.Call(t.Context(), CallMsg{To: to, Method: method, Args: []any{big.NewInt(9)}})
	require.NoError(t, err)

	require.Len(t, backend.sent, 1)
	require.Empty(t, backend.calls)
	tx := backend.sent[0]
	require.Equal(t, to.Eth(), *tx.To())
	require.Equal(t, method.ID, tx.Data()[:4])

	submission, ok := res.(*Submission)
	require.True(t, ok)
	require.Equal(t, tx.Hash(), submission.TxHash)
	require.Equal(t, tx.Hash().Hex(), submission.String())
}
