package abigate

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"reflect"
	"time"

	"github.com/NilFoundation/abigate/abigate/common/logging"
	"github.com/NilFoundation/abigate/abigate/internal/abi"
	"github.com/NilFoundation/abigate/abigate/internal/types"
	"github.com/NilFoundation/abigate/abigate/services/abicache"
	"github.com/NilFoundation/abigate/abigate/services/etherscan"
	"github.com/NilFoundation/abigate/abigate/services/invoker"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/gorilla/handlers"
)

const (
	headerRequestId = "X-Request-Id"

	maxRequestBodySize = 1 << 20
)

var errInvalidBody = errors.New("invalid request body")

type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type abiResponse struct {
	ContractAddress string           `json:"contractAddress"`
	Abi             *abi.Description `json:"abi"`
}

type callRequest struct {
	Inputs []any `json:"inputs"`
	Decode bool  `json:"decode"`
}

type callResponse struct {
	ContractAddress string `json:"contractAddress"`
	Function        string `json:"function"`
	Result          any    `json:"result"`
}

// Handler serves the HTTP API with CORS and gzip applied.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /contracts/{address}/abi", s.handleGetAbi)
	mux.HandleFunc("POST /contracts/{address}/functions/{name}", s.handleCallFunction)

	var h http.Handler = s.withRequestLog(mux)
	h = handlers.CompressHandler(h)
	return handlers.CORS(
		handlers.AllowedOrigins(s.cfg.CorsOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.ExposedHeaders([]string{headerRequestId}),
		handlers.MaxAge(600),
	)(h)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Service) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqId := uuid.NewString()
		w.Header().Set(headerRequestId, reqId)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Debug().
			Str(logging.FieldReqId, reqId).
			Str(logging.FieldMethod, r.Method).
			Str(logging.FieldPath, r.URL.Path).
			Int(logging.FieldStatus, rec.status).
			Dur(logging.FieldDuration, time.Since(start)).
			Msg("Request served")
	})
}

func (s *Service) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "abigate: contract ABI gateway")
}

func (s *Service) handleGetAbi(w http.ResponseWriter, r *http.Request) {
	address, ok := parseAddressParam(w, r)
	if !ok {
		return
	}

	desc, err := s.ResolveAbi(r.Context(), address)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJson(w, http.StatusOK, abiResponse{ContractAddress: address.Hex(), Abi: desc})
}

func (s *Service) handleCallFunction(w http.ResponseWriter, r *http.Request) {
	address, ok := parseAddressParam(w, r)
	if !ok {
		return
	}

	var req callRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	decoder.UseNumber()
	if err := decoder.Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: %w", errInvalidBody, err))
		return
	}

	member, res, err := s.CallFunction(r.Context(), address, r.PathValue("name"), req.Inputs, req.Decode)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result := res.Raw
	if res.Decoded {
		result = res.Value
	}
	writeJson(w, http.StatusOK, callResponse{
		ContractAddress: address.Hex(),
		Function:        member.Signature(),
		Result:          toJsonValue(result),
	})
}

func parseAddressParam(w http.ResponseWriter, r *http.Request) (types.Address, bool) {
	address, err := types.ParseAddress(r.PathValue("address"))
	if err != nil {
		writeJson(w, http.StatusBadRequest, errorResponse{
			Status:  http.StatusBadRequest,
			Message: "Contract Address invalid",
		})
		return types.Address{}, false
	}
	return address, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, abi.ErrMemberNotFound), errors.Is(err, etherscan.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, invoker.ErrArityMismatch),
		errors.Is(err, abi.ErrInvalidArgument),
		errors.Is(err, errInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, invoker.ErrUnsupportedOutputArity),
		errors.Is(err, invoker.ErrNotFunction),
		errors.Is(err, abi.ErrUnsupportedType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, etherscan.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, etherscan.ErrUpstream),
		errors.Is(err, abi.ErrMalformedAbi),
		errors.Is(err, invoker.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, abicache.ErrStorage):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// writeError reports client errors verbatim. Server-side failures are logged and answered with
// the status text only, the details stay in the log under the request id.
func (s *Service) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).
			Str(logging.FieldReqId, w.Header().Get(headerRequestId)).
			Int(logging.FieldStatus, status).
			Msg("Request failed")
		message = http.StatusText(status)
	}
	writeJson(w, status, errorResponse{Status: status, Message: message})
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn().Err(err).Msg("Failed to write response")
	}
}

// toJsonValue renders call results for JSON: integers as decimal strings and byte values as
// 0x-prefixed hex.
func toJsonValue(v any) any {
	switch v := v.(type) {
	case nil:
		return nil
	case *big.Int:
		return v.String()
	case []byte:
		return hexutil.Encode(v)
	case []any:
		res := make([]any, len(v))
		for i, e := range v {
			res[i] = toJsonValue(e)
		}
		return res
	case fmt.Stringer:
		return v.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int()).String()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Int).SetUint64(rv.Uint()).String()
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return "0x" + hex.EncodeToString(b)
		}
		fallthrough
	case reflect.Slice:
		res := make([]any, rv.Len())
		for i := range res {
			res[i] = toJsonValue(rv.Index(i).Interface())
		}
		return res
	}
	return v
}
