package jsonrpc

func SetNextID(g *IDGenerator, v uint64) {
	g.next.Store(v)
}
