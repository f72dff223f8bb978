package invoker

import (
	"context"
	"fmt"

	"github.com/NilFoundation/abigate/abigate/client"
	"github.com/NilFoundation/abigate/abigate/common/logging"
	"github.com/NilFoundation/abigate/abigate/internal/abi"
	"github.com/NilFoundation/abigate/abigate/internal/telemetry"
	"github.com/NilFoundation/abigate/abigate/internal/telemetry/telattr"
	"github.com/NilFoundation/abigate/abigate/internal/types"
)

const meterName = "github.com/NilFoundation/abigate/abigate/services/invoker"

// CallResult holds the raw transport value and, when decoding was requested, the decoded one.
type CallResult struct {
	Raw     any
	Value   any
	Decoded bool
}

type Invoker struct {
	transport client.Transport
	decoder   *Decoder
	measurer  *telemetry.Measurer
	logger    logging.Logger
}

func New(transport client.Transport, logger logging.Logger) (*Invoker, error) {
	meter := telemetry.NewMeter(meterName)
	decoder, err := NewDecoder(meter, logger)
	if err != nil {
		return nil, err
	}
	measurer, err := telemetry.NewMeasurer(meter, "abigate.invoker.call")
	if err != nil {
		return nil, err
	}
	return &Invoker{
		transport: transport,
		decoder:   decoder,
		measurer:  measurer,
		logger:    logger,
	}, nil
}

// Call executes member on the contract at address. With wantDecoded the single declared output
// is run through the Decoder; members with several outputs can only be called raw.
// A call the transport sent as a transaction is never decoded: Decoded stays false and Raw
// holds the *client.Submission.
func (inv *Invoker) Call(
	ctx context.Context,
	address types.Address,
	member *abi.Member,
	args []any,
	wantDecoded bool,
) (*CallResult, error) {
	if member == nil || member.Kind != abi.KindFunction {
		return nil, ErrNotFunction
	}
	if len(args) != member.Arity() {
		return nil, fmt.Errorf("%w: %s expects %d arguments, got %d",
			ErrArityMismatch, member.Name, member.Arity(), len(args))
	}
	if wantDecoded && len(member.Outputs) > 1 {
		return nil, fmt.Errorf("%w: %s returns %d values", ErrUnsupportedOutputArity, member.Name, len(member.Outputs))
	}

	method, err := member.Method()
	if err != nil {
		return nil, err
	}
	values, err := abi.ConvertArgs(method.Inputs, args)
	if err != nil {
		return nil, err
	}

	logger := inv.logger.With().
		Stringer(logging.FieldContractAddress, address).
		Str(logging.FieldFunction, method.Sig).
		Int(logging.FieldArity, member.Arity()).
		Str(logging.FieldMutability, member.Mutability).
		Logger()
	logger.Debug().Msg("Calling contract")

	done := inv.measurer.Start()
	raw, err := inv.transport.Call(ctx, client.CallMsg{To: address, Method: method, Args: values})
	done(ctx, telattr.Function(member.Name), telattr.Mutability(member.Mutability), telattr.Success(err == nil))
	if err != nil {
		logger.Debug().Err(err).Msg("Contract call failed")
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	res := &CallResult{Raw: raw}
	if _, ok := raw.(*client.Submission); ok {
		logger.Debug().Msg("Call was sent as a transaction, outputs are not decoded")
		return res, nil
	}
	if wantDecoded {
		res.Decoded = true
		if len(member.Outputs) == 1 {
			res.Value = inv.decoder.Decode(ctx, raw, member.Outputs[0].Type)
		}
	}
	return res, nil
}
