package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:           "shaderctl",
	Short:         "Drive the external shader compiler",
	Long:          `shaderctl launches the shader compiler worker and runs preprocess and compile requests against it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagConfig   string
	flagCompiler string
	flagFormat   string
	flagColor    string
	flagLogLevel string
	flagTrace    bool
)

func main() {
	rootCmd.Version = version

	rootCmd.AddCommand(platformsCmd)
	rootCmd.AddCommand(preprocessCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "TOML config file")
	rootCmd.PersistentFlags().StringVar(&flagCompiler, "compiler", "", "compiler executable (overrides config and SHADERCTL_COMPILER)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json|msgpack)")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&flagTrace, "trace", false, "export command spans to stderr")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "shaderctl: %v\n", err)
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
