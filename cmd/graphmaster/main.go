package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/peco/graphmaster/internal/cli"
	"github.com/peco/graphmaster/internal/sighandler"
	"github.com/peco/graphmaster/internal/util"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := sighandler.New(os.Interrupt, syscall.SIGTERM)
	sig.SignalReceivedFunc = func(s os.Signal) bool {
		fmt.Fprintf(os.Stderr, "graphmaster: received %s, stopping\n", s)
		cancel()
		return false
	}
	go sig.Loop(ctx)

	err := cli.New().Run(ctx)
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "graphmaster: %s\n", err)
	st, ok := util.GetExitStatus(err)
	if !ok {
		st = 1
	}
	cancel()
	os.Exit(st)
}
