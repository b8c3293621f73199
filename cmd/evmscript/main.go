// Command evmscript encodes, decodes and validates governance EVM scripts.
//
//	evmscript selector "transfer(address,uint256)"
//	evmscript encode --type primary --target dai.eth \
//	    --signature "transfer(address,uint256)" --params '["alice.eth","1000"]'
//	evmscript decode 0x00000001... --signature "transfer(address,uint256)"
//	evmscript validate 0x00000001... --proposal-id 42
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
