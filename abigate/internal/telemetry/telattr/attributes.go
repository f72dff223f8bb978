package telattr

import (
	"github.com/NilFoundation/abigate/abigate/common/logging"
	"go.opentelemetry.io/otel/attribute"
)

func Function(name string) attribute.KeyValue {
	return attribute.String(logging.FieldFunction, name)
}

func WireType(t string) attribute.KeyValue {
	return attribute.String(logging.FieldWireType, t)
}

func Mutability(m string) attribute.KeyValue {
	return attribute.String(logging.FieldMutability, m)
}

func Success(ok bool) attribute.KeyValue {
	return attribute.Bool("success", ok)
}
