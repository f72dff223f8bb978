package client

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/NilFoundation/abigate/abigate/common/logging"
	ethereum "github.com/ethereum/go-ethereum"
	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

var ErrNoSigner = errors.New("no signing key configured")

// EthBackend is the subset of ethclient.Client the transport needs.
type EthBackend interface {
	bind.ContractBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

// EthTransport executes calls against an Ethereum JSON-RPC node. Read-only members go through
// eth_call; state-changing members are sent as signed transactions when a key is configured.
type EthTransport struct {
	backend    EthBackend
	privateKey *ecdsa.PrivateKey
	logger     logging.Logger

	chainIdMu sync.Mutex
	chainId   *big.Int
}

var _ Transport = (*EthTransport)(nil)

func DialEthTransport(ctx context.Context, endpoint string, privateKeyHex string, logger logging.Logger) (*EthTransport, error) {
	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", endpoint, err)
	}
	t, err := NewEthTransport(client, privateKeyHex, logger)
	if err != nil {
		client.Close()
		return nil, err
	}
	return t, nil
}

// NewEthTransport wraps an existing backend. An empty privateKeyHex makes every call an eth_call.
func NewEthTransport(backend EthBackend, privateKeyHex string, logger logging.Logger) (*EthTransport, error) {
	t := &EthTransport{
		backend: backend,
		logger:  logger,
	}
	if privateKeyHex != "" {
		key, err := crypto.HexToECDSA(privateKeyHex)
		if err != nil {
			return nil, fmt.Errorf("converting private key hex to ECDSA: %w", err)
		}
		t.privateKey = key
	}
	return t, nil
}

func (t *EthTransport) Call(ctx context.Context, msg CallMsg) (any, error) {
	calldata, err := msg.Method.Inputs.Pack(msg.Args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", msg.Method.Sig, err)
	}
	calldata = append(append([]byte{}, msg.Method.ID...), calldata...)

	if msg.Method.IsConstant() || t.privateKey == nil {
		return t.call(ctx, msg, calldata)
	}
	return t.transact(ctx, msg, calldata)
}

func (t *EthTransport) call(ctx context.Context, msg CallMsg, calldata []byte) (any, error) {
	to := msg.To.Eth()
	out, err := t.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: calldata}, nil)
	if err != nil {
		return nil, fmt.Errorf("call contract: %w", err)
	}
	outputs, err := msg.Method.Outputs.Unpack(out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", msg.Method.Sig, err)
	}
	if len(outputs) == 1 {
		return outputs[0], nil
	}
	return outputs, nil
}

func (t *EthTransport) transact(ctx context.Context, msg CallMsg, calldata []byte) (any, error) {
	opts, err := t.getEthTransactOpts(ctx)
	if err != nil {
		return nil, err
	}

	contract := bind.NewBoundContract(
		msg.To.Eth(), ethabi.ABI{Methods: map[string]ethabi.Method{msg.Method.Name: msg.Method}},
		t.backend, t.backend, t.backend)
	txn, err := contract.RawTransact(opts, calldata)
	if err != nil {
		return nil, fmt.Errorf("send transaction: %w", err)
	}

	t.logger.Info().
		Stringer(logging.FieldContractAddress, msg.To).
		Str(logging.FieldFunction, msg.Method.Sig).
		Stringer(logging.FieldTxHash, txn.Hash()).
		Msg("Transaction sent")
	return &Submission{TxHash: txn.Hash()}, nil
}

func (t *EthTransport) getEthTransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	if t.privateKey == nil {
		return nil, ErrNoSigner
	}
	chainId, err := t.getChainId(ctx)
	if err != nil {
		return nil, err
	}

	opts, err := bind.NewKeyedTransactorWithChainID(t.privateKey, chainId)
	if err != nil {
		return nil, fmt.Errorf("creating keyed transactor with chain ID: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}

func (t *EthTransport) getChainId(ctx context.Context) (*big.Int, error) {
	t.chainIdMu.Lock()
	defer t.chainIdMu.Unlock()

	if t.chainId == nil {
		chainId, err := t.backend.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve chain ID: %w", err)
		}
		t.chainId = chainId
	}
	return t.chainId, nil
}
