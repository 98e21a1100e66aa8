// Command shaderrelay stands in for the shader compiler and forwards every
// line to the real one, recording the traffic. Point the caller at this
// binary and set SHADERRELAY_TARGET to the real compiler.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/danmuck/shaderctl/internal/observability"
	"github.com/danmuck/shaderctl/internal/relay"
	"github.com/danmuck/shaderctl/internal/worker"
)

const (
	envTarget     = "SHADERRELAY_TARGET"
	envTranscript = "SHADERRELAY_TRANSCRIPT"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "shaderrelay: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: shaderrelay <basePath> <logFile> <channel>")
	}
	target := os.Getenv(envTarget)
	if target == "" {
		return fmt.Errorf("%s is not set", envTarget)
	}
	logger := observability.InitLogger("shaderrelay", "")
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	transcriptPath := os.Getenv(envTranscript)
	if transcriptPath == "" {
		transcriptPath = "shaderrelay-" + strconv.Itoa(os.Getpid()) + ".txt"
	}
	var transcript io.Writer
	if transcriptPath != "-" {
		f, err := os.OpenFile(transcriptPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		transcript = f
	}

	caller, err := worker.Dial(ctx, args[2])
	if err != nil {
		return err
	}
	proc, err := worker.Start(ctx, worker.Config{
		CompilerPath: target,
		BasePath:     args[0],
		LogFile:      args[1],
		Channel:      "shaderrelay-" + worker.IDPlaceholder,
		Stderr:       os.Stderr,
		Logger:       &logger,
	})
	if err != nil {
		_ = caller.Close()
		return err
	}
	defer proc.Close()

	stats, err := relay.New(relay.Options{Logger: &logger, Transcript: transcript}).Run(ctx, caller, proc.Conn())
	logger.Info().Int64("to_worker", stats.ToWorker).Int64("to_caller", stats.ToCaller).Msg("relay done")
	return err
}
