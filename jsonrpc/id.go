package jsonrpc

import "sync/atomic"

// IDGenerator hands out request identifiers for response correlation. Identifiers start
// at 0 and wrap around on overflow.
type IDGenerator struct {
	next atomic.Uint64
}

func (g *IDGenerator) Next() uint64 {
	return g.next.Add(1) - 1
}

var defaultIDs IDGenerator

// NextID draws from the process-wide generator.
func NextID() uint64 {
	return defaultIDs.Next()
}
