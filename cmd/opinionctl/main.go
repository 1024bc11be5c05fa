package main

import (
	"context"
	"fmt"
	"os"

	pkglogger "github.com/damoang/opinion-backend/pkg/logger"
)

func main() {
	if err := run(context.Background(), os.Args); err != nil {
		pkglogger.GetLogger().Error().Err(err).Msg("opinionctl failed")
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
