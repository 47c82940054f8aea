package node

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/NethermindEth/ethcall/contract"
	"github.com/NethermindEth/ethcall/outcall"
	"github.com/NethermindEth/ethcall/utils"
	"github.com/NethermindEth/ethcall/validator"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const maxRequestBytes = 64 << 10

// CallRequest is the body of POST /call. ABI names an embedded ABI; arguments use the
// textual forms accepted by contract.ParseArgs.
type CallRequest struct {
	Network string   `json:"network" validate:"omitempty,network"`
	Address string   `json:"address" validate:"required,eth_addr"`
	ABI     string   `json:"abi" validate:"required,abi_name"`
	Method  string   `json:"method" validate:"required"`
	Args    []string `json:"args"`
}

type CallResponse struct {
	Function string `json:"function"`
	Outputs  []any  `json:"outputs"`
}

type ErrorBody struct {
	Class   string `json:"class"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ABIFunction struct {
	Signature string   `json:"signature"`
	Selector  string   `json:"selector"`
	Outputs   []string `json:"outputs"`
}

type ABIResponse struct {
	Name      string        `json:"name"`
	Functions []ABIFunction `json:"functions"`
}

type callHandler struct {
	caller         Caller
	defaultNetwork utils.Network
	log            utils.SimpleLogger
}

func (h *callHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req CallRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, outcall.ClassConfiguration, fmt.Sprintf("decode request: %v", err))
		return
	}
	if err := validator.Validator().Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, outcall.ClassConfiguration, err.Error())
		return
	}

	network := req.Network
	if network == "" {
		network = h.defaultNetwork.String()
	}

	iface, err := contract.Embedded(req.ABI)
	if err != nil {
		writeCallError(w, err)
		return
	}
	fn, err := iface.Resolve(req.Method)
	if err != nil {
		writeCallError(w, err)
		return
	}
	args, err := contract.ParseArgs(fn, req.Args)
	if err != nil {
		writeCallError(w, err)
		return
	}

	values, err := h.caller.CallFunction(r.Context(), network, req.Address, fn, args...)
	if err != nil {
		h.log.Debugw("Call failed", "network", network, "to", req.Address, "function", fn.Signature(), "err", err)
		writeCallError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CallResponse{
		Function: fn.Signature(),
		Outputs:  contract.FormatOutputs(fn, values),
	})
}

func handleABI(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	iface, err := contract.Embedded(name)
	if err != nil {
		writeError(w, http.StatusNotFound, outcall.ClassConfiguration, err.Error())
		return
	}

	res := ABIResponse{Name: name}
	for _, fn := range iface.Functions() {
		outputs := make([]string, 0, len(fn.Outputs()))
		for _, out := range fn.Outputs() {
			outputs = append(outputs, out.Type.String())
		}
		res.Functions = append(res.Functions, ABIFunction{
			Signature: fn.Signature(),
			Selector:  hexutil.Encode(fn.Selector()),
			Outputs:   outputs,
		})
	}
	writeJSON(w, http.StatusOK, res)
}

func handleABINames(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, contract.EmbeddedNames())
}

// StatusCode maps an outcall failure to the status the service answers with.
func StatusCode(err error) int {
	if errors.Is(err, utils.ErrResourceBusy) {
		return http.StatusServiceUnavailable
	}
	switch outcall.Classify(err) {
	case outcall.ClassConfiguration, outcall.ClassProtocol:
		return http.StatusBadRequest
	case outcall.ClassRemote:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeCallError(w http.ResponseWriter, err error) {
	writeError(w, StatusCode(err), outcall.Classify(err), err.Error())
}

func writeError(w http.ResponseWriter, status int, class outcall.Class, msg string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{Class: class.String(), Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument reports every request served by next under route.
func instrument(route string, next http.Handler, listener RequestListener) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		listener.OnRequestHandled(route, rec.status, time.Since(start))
	})
}
