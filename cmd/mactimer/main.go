// Command mactimer converts forensic tool exports into bodyfile timeline
// lines.
//
// Usage
//
//	mactimer -t ief -z EST-5EDT "Chrome Web History.csv" > chrome.body
//	mactimer -t tln --skew -60 < timeline.tln
//	mactimer -t notes --custom1 interview --store case.db notes.csv
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newApp()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "mactimer:", err)
		stop()
		os.Exit(1)
	}
}
