package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/shaderctl/internal/protocol"
	"github.com/fatih/color"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	formatText    = "text"
	formatJSON    = "json"
	formatMsgpack = "msgpack"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgGreen, color.Bold)
)

// setupColor applies --color; auto colours only when stdout is a terminal.
func setupColor() error {
	switch strings.ToLower(flagColor) {
	case "on", "always":
		color.NoColor = false
	case "off", "never":
		color.NoColor = true
	case "auto", "":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("unknown --color value %q (want auto|on|off)", flagColor)
	}
	return nil
}

// emit writes v in the selected format; text uses the supplied renderer.
func emit(w io.Writer, v any, text func(io.Writer) error) error {
	switch strings.ToLower(flagFormat) {
	case formatText, "":
		if err := setupColor(); err != nil {
			return err
		}
		return text(w)
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown --format %q (want text|json|msgpack)", flagFormat)
	}
}

func writeErrors(w io.Writer, errs []protocol.Error) {
	for _, e := range errs {
		c := infoColor
		switch e.Level {
		case protocol.LevelError:
			c = errorColor
		case protocol.LevelWarning:
			c = warningColor
		}
		fmt.Fprintln(w, c.Sprint(e.String()))
	}
}

func header(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, headerColor.Sprintf(format, args...))
}

func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
