package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/danmuck/shaderctl/internal/protocol"
	"github.com/danmuck/shaderctl/internal/protocol/binding"
	"github.com/danmuck/shaderctl/internal/protocol/escape"
)

var ErrConfigurationIndex = errors.New("session: configuration index out of range")

// CompileRequest is the input to c:compileSnippet.
type CompileRequest struct {
	Source   string
	Location string
	Keywords []string
	// Reserved is sent after the keywords. Values other than 0 can make the
	// worker produce no output.
	Reserved int32
	Stage    protocol.Stage
	Platform protocol.Platform
}

// CompileResult is the reply to c:compileSnippet.
type CompileResult struct {
	OK       bool              `json:"ok" msgpack:"ok"`
	Bindings []binding.Binding `json:"bindings" msgpack:"bindings"`
	Errors   []protocol.Error  `json:"errors" msgpack:"errors"`
	Shader   string            `json:"shader" msgpack:"shader"`
}

// RenderBindings returns the ShaderLab text for the decoded bindings.
func (r CompileResult) RenderBindings() string {
	return binding.RenderAll(r.Bindings)
}

// Stats returns the statistics record, if the worker sent one.
func (r CompileResult) Stats() (binding.Stats, bool) {
	for _, b := range r.Bindings {
		if st, ok := b.(binding.Stats); ok {
			return st, true
		}
	}
	return binding.Stats{}, false
}

// CompileSnippet compiles one snippet for one stage, keyword set and platform.
func (s *Session) CompileSnippet(ctx context.Context, req CompileRequest) (CompileResult, error) {
	const command = protocol.CommandCompileSnippet
	var result CompileResult
	err := s.run(ctx, command, func(ctx context.Context) error {
		lines := make([]string, 0, 8+len(req.Keywords))
		lines = append(lines,
			command,
			escape.Escape(req.Source),
			req.Location,
			s.cfg.IncludePath,
			strconv.Itoa(len(req.Keywords)),
		)
		lines = append(lines, req.Keywords...)
		lines = append(lines,
			strconv.Itoa(int(req.Reserved)),
			strconv.Itoa(int(req.Stage)),
			strconv.Itoa(int(req.Platform)),
		)
		if err := s.writeLines(lines...); err != nil {
			return err
		}

		bindings := make([]binding.Binding, 0)
		errs := make([]protocol.Error, 0)
		for {
			tokens, err := s.readRecord(ctx, command)
			if err != nil {
				return err
			}
			b, matched, err := s.cfg.Registry.Dispatch(tokens)
			if err != nil {
				return err
			}
			if matched {
				s.stats.recordTag(tokens[0])
				if b == nil {
					s.stats.Dropped++
					s.log.Debug().Str("record", tokens[0]).Strs("tokens", tokens[1:]).Msg("dropped record")
					continue
				}
				bindings = append(bindings, b)
				continue
			}

			switch tokens[0] {
			case protocol.TagError:
				s.stats.recordTag(protocol.TagError)
				e, err := s.readError(command, tokens)
				if err != nil {
					return err
				}
				errs = append(errs, e)
			case protocol.TagShader:
				s.stats.recordTag(protocol.TagShader)
				if err := protocol.RequireTokens(tokens, 2); err != nil {
					return err
				}
				ok, err := protocol.ParseInt("shader", tokens[1])
				if err != nil {
					return err
				}
				text, err := s.readLine(command)
				if err != nil {
					return err
				}
				result = CompileResult{
					OK:       ok != 0,
					Bindings: bindings,
					Errors:   errs,
					Shader:   escape.Unescape(text),
				}
				return nil
			default:
				s.ignore(command, tokens)
			}
		}
	})
	if err != nil {
		return CompileResult{}, err
	}
	return result, nil
}

// CompileSnip compiles configuration configIndex of snip for platform.
func (s *Session) CompileSnip(ctx context.Context, snip protocol.Snip, configIndex int, platform protocol.Platform, location string) (CompileResult, error) {
	if s.Disposed() {
		return CompileResult{}, fmt.Errorf("%w: %s", protocol.ErrDisposed, protocol.CommandCompileSnippet)
	}
	cfg, ok := snip.Configuration(configIndex)
	if !ok {
		return CompileResult{}, fmt.Errorf("%w: %d of %d", ErrConfigurationIndex, configIndex, len(snip.Configurations))
	}
	return s.CompileSnippet(ctx, CompileRequest{
		Source:   snip.Text,
		Location: location,
		Keywords: cfg.Keywords,
		Stage:    cfg.Stage,
		Platform: platform,
	})
}

// SnipCompilation is the compile result for one configuration of one snip.
type SnipCompilation struct {
	ProgramID     int32                  `json:"program_id" msgpack:"program_id"`
	Configuration protocol.Configuration `json:"configuration" msgpack:"configuration"`
	Result        CompileResult          `json:"result" msgpack:"result"`
}

// CompileAll compiles every configuration of every snip in pre for platform,
// in snip order then configuration order. Snips whose platform mask excludes
// platform are skipped. The first failing command aborts the run.
func (s *Session) CompileAll(ctx context.Context, pre protocol.PreprocessResult, platform protocol.Platform) ([]SnipCompilation, error) {
	out := make([]SnipCompilation, 0)
	for _, snip := range pre.Snips {
		if mask, err := snip.PlatformMask(); err == nil && mask != 0 && !mask.Has(platform) {
			s.log.Debug().Int32("program", snip.ProgramID).Stringer("platform", platform).Msg("snip excludes platform")
			continue
		}
		for i, cfg := range snip.Configurations {
			res, err := s.CompileSnip(ctx, snip, i, platform, pre.Location)
			if err != nil {
				return nil, fmt.Errorf("compile program %d configuration %d: %w", snip.ProgramID, i, err)
			}
			out = append(out, SnipCompilation{ProgramID: snip.ProgramID, Configuration: cfg, Result: res})
		}
	}
	return out, nil
}
