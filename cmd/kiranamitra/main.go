package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
