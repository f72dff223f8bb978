package logging

const (
	FieldComponent = "component"

	FieldDuration = "duration"
	FieldReqId    = "reqId"
	FieldMethod   = "method"
	FieldPath     = "path"
	FieldStatus   = "status"

	FieldContractAddress = "contractAddress"
	FieldFunction        = "function"
	FieldArity           = "arity"
	FieldWireType        = "wireType"
	FieldMutability      = "mutability"
	FieldTxHash          = "txHash"

	FieldStorage  = "storage"
	FieldEndpoint = "endpoint"
)
