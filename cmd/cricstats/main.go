package main

import (
	"cricstats/cmd/cricstats/commands"
	"cricstats/pkg/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext()
	defer cancel()
	commands.ExecuteContext(ctx)
}
