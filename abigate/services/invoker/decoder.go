package invoker

import (
	"context"

	"github.com/NilFoundation/abigate/abigate/common/logging"
	"github.com/NilFoundation/abigate/abigate/internal/telemetry"
	"github.com/NilFoundation/abigate/abigate/internal/telemetry/telattr"
	"go.opentelemetry.io/otel/metric"
)

type rule func(raw any) any

func identity(raw any) any {
	return raw
}

// Decoder maps a raw call result to a caller-facing value by its declared wire type.
// Types without a rule are passed through unchanged and reported; decoding never fails.
type Decoder struct {
	rules     map[string]rule
	unhandled telemetry.Counter
	logger    logging.Logger
}

func NewDecoder(meter telemetry.Meter, logger logging.Logger) (*Decoder, error) {
	unhandled, err := meter.Int64Counter("abigate.decoder.unhandled_type")
	if err != nil {
		return nil, err
	}
	return &Decoder{
		rules: map[string]rule{
			// The transport already yields *big.Int for uint256.
			"uint256": identity,
		},
		unhandled: unhandled,
		logger:    logger,
	}, nil
}

func (d *Decoder) Decode(ctx context.Context, raw any, wireType string) any {
	if decode, ok := d.rules[wireType]; ok {
		return decode(raw)
	}

	d.logger.Warn().
		Str(logging.FieldWireType, wireType).
		Msg("Unhandled return type, passing raw value through")
	d.unhandled.Add(ctx, 1, metric.WithAttributes(telattr.WireType(wireType)))
	return raw
}
