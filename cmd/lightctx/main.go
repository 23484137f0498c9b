package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cosmos/ibc-lightctx/cmd/lightctx/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
