package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/NethermindEth/ethcall/node"
)

func newNode(cfg *node.Config, version string) (node.OutcallNode, error) {
	n, err := node.New(cfg, version)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewCmd(newNode, node.NewTransport).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
