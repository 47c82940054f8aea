package outcall

import (
	"fmt"
	"sync"
)

// HandleTransformName is the name HandleTransform is registered under.
const HandleTransformName = "handle_transform"

type TransformArgs struct {
	Response HTTPResponse
	Context  []byte
}

// TransformFunc normalises a raw response on each replica before the responses are
// compared. It must be total and depend only on its arguments.
type TransformFunc func(args TransformArgs) HTTPResponse

var transforms = struct {
	sync.RWMutex
	byName map[string]TransformFunc
}{byName: make(map[string]TransformFunc)}

func init() {
	RegisterTransform(HandleTransformName, HandleTransform)
}

// RegisterTransform makes fn callable by name. Registering a name twice panics.
func RegisterTransform(name string, fn TransformFunc) {
	transforms.Lock()
	defer transforms.Unlock()

	if _, ok := transforms.byName[name]; ok {
		panic(fmt.Sprintf("transform %q already registered", name))
	}
	transforms.byName[name] = fn
}

func LookupTransform(name string) (TransformFunc, bool) {
	transforms.RLock()
	defer transforms.RUnlock()

	fn, ok := transforms.byName[name]
	return fn, ok
}

// HandleTransform keeps status and body and drops every header: dates, server ids and
// rate-limit counters differ between replicas and must not reach consensus.
func HandleTransform(args TransformArgs) HTTPResponse {
	return HTTPResponse{
		Status: args.Response.Status,
		Body:   args.Response.Body,
	}
}
