// Command shaderstub stands in for the shader compiler. It is started the
// same way (basePath logFile channel) and only answers c:getPlatforms.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/danmuck/shaderctl/internal/observability"
	"github.com/danmuck/shaderctl/internal/stub"
	"github.com/danmuck/shaderctl/internal/worker"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "shaderstub: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: shaderstub <basePath> <logFile> <channel>")
	}
	logger := observability.InitLogger("shaderstub", "")
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	conn, err := worker.Dial(ctx, args[2])
	if err != nil {
		return err
	}
	defer conn.Close()
	logger.Debug().Str("base", args[0]).Str("channel", args[2]).Msg("connected")
	return stub.ServeWithLogger(ctx, conn, logger)
}
