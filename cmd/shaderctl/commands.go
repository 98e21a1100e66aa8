package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/danmuck/shaderctl/internal/protocol"
	"github.com/danmuck/shaderctl/internal/protocol/binding"
	"github.com/danmuck/shaderctl/internal/protocol/session"
	"github.com/spf13/cobra"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "Print the compiler platform report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		s, cleanup, err := compilerSession(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := s.GetPlatforms(ctx)
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), report, func(w io.Writer) error {
			for i, v := range report.Values {
				fmt.Fprintf(w, "%2d  %d\n", i, v)
			}
			return nil
		})
	},
}

var (
	preprocessLocation string
)

func init() {
	preprocessCmd.Flags().StringVar(&preprocessLocation, "location", "", "source directory reported by the compiler (default: directory of the file)")
}

var preprocessCmd = &cobra.Command{
	Use:   "preprocess <shader|->",
	Short: "Split a shader into snips and configurations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		source, err := readSource(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		s, cleanup, err := compilerSession(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := s.Preprocess(ctx, session.PreprocessRequest{
			Source:   source,
			Location: locationFor(args[0], preprocessLocation),
		})
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), res, func(w io.Writer) error {
			writePreprocess(w, res)
			return nil
		})
	},
}

var (
	compileLocation string
	compileStage    string
	compilePlatform string
	compileKeywords []string
	compileSnippet  bool
)

func init() {
	compileCmd.Flags().StringVar(&compileLocation, "location", "", "source directory reported by the compiler (default: directory of the file)")
	compileCmd.Flags().StringVar(&compileStage, "stage", "vertex", "stage for --snippet (vertex|fragment)")
	compileCmd.Flags().StringVar(&compilePlatform, "platform", "d3d11", "target platform name or number")
	compileCmd.Flags().StringSliceVar(&compileKeywords, "keywords", nil, "keywords for --snippet")
	compileCmd.Flags().BoolVar(&compileSnippet, "snippet", false, "compile the input as one snippet instead of a whole shader")
}

var compileCmd = &cobra.Command{
	Use:   "compile <shader|->",
	Short: "Compile a shader, or one snippet with --snippet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		platform, err := protocol.ParsePlatform(compilePlatform)
		if err != nil {
			return err
		}
		stage, err := protocol.ParseStage(compileStage)
		if err != nil {
			return err
		}
		source, err := readSource(args[0])
		if err != nil {
			return err
		}
		location := locationFor(args[0], compileLocation)

		ctx, cancel := commandContext(cmd)
		defer cancel()
		s, cleanup, err := compilerSession(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		if compileSnippet {
			res, err := s.CompileSnippet(ctx, session.CompileRequest{
				Source:   source,
				Location: location,
				Keywords: compileKeywords,
				Stage:    stage,
				Platform: platform,
			})
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), res, func(w io.Writer) error {
				writeCompile(w, res)
				return nil
			})
		}

		pre, err := s.Preprocess(ctx, session.PreprocessRequest{Source: source, Location: location})
		if err != nil {
			return err
		}
		compiled, err := s.CompileAll(ctx, pre, platform)
		if err != nil {
			return err
		}
		payload := struct {
			Preprocess protocol.PreprocessResult  `json:"preprocess"`
			Programs   []session.SnipCompilation `json:"programs"`
		}{pre, compiled}
		return emit(cmd.OutOrStdout(), payload, func(w io.Writer) error {
			writeErrors(w, pre.Errors)
			for _, sc := range compiled {
				header(w, "program %d %s [%s]", sc.ProgramID, sc.Configuration.Stage, strings.Join(sc.Configuration.Keywords, " "))
				writeCompile(w, sc.Result)
			}
			return nil
		})
	},
}

func locationFor(path, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if path == "-" {
		return "."
	}
	return filepath.ToSlash(filepath.Dir(path))
}

func writePreprocess(w io.Writer, res protocol.PreprocessResult) {
	writeErrors(w, res.Errors)
	for _, snip := range res.Snips {
		header(w, "snip %d platforms=%#x", snip.ProgramID, uint32(snip.Platforms))
		for i, c := range snip.Configurations {
			fmt.Fprintf(w, "  [%d] %s %s\n", i, c.Stage, strings.Join(c.Keywords, " "))
		}
	}
	if !res.OK {
		fmt.Fprintln(w, errorColor.Sprint("preprocess failed"))
	}
	fmt.Fprintln(w, res.Shader)
}

func writeCompile(w io.Writer, res session.CompileResult) {
	writeErrors(w, res.Errors)
	if !res.OK {
		fmt.Fprintln(w, errorColor.Sprint("compile failed"))
	}
	fmt.Fprint(w, binding.RenderAll(res.Bindings))
	fmt.Fprintln(w, res.Shader)
}
