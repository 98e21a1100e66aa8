package session

import (
	"context"
	"strconv"

	"github.com/danmuck/shaderctl/internal/protocol"
	"github.com/danmuck/shaderctl/internal/protocol/escape"
)

// PreprocessRequest is the input to c:preprocess.
type PreprocessRequest struct {
	Source string
	// Location is the directory of the source, used in error reports.
	Location string
	// Reserved is sent as the fourth request line. The worker expects 0.
	Reserved int32
}

// Preprocess splits a shader source into snips, their configurations, errors
// and the preprocessed shader text.
func (s *Session) Preprocess(ctx context.Context, req PreprocessRequest) (protocol.PreprocessResult, error) {
	const command = protocol.CommandPreprocess
	var result protocol.PreprocessResult
	err := s.run(ctx, command, func(ctx context.Context) error {
		err := s.writeLines(
			command,
			escape.Escape(req.Source),
			req.Location,
			s.cfg.IncludePath,
			strconv.Itoa(int(req.Reserved)),
		)
		if err != nil {
			return err
		}

		snips := make([]protocol.Snip, 0)
		errs := make([]protocol.Error, 0)
		for {
			tokens, err := s.readRecord(ctx, command)
			if err != nil {
				return err
			}
			switch tokens[0] {
			case protocol.TagSnip:
				s.stats.recordTag(protocol.TagSnip)
				snip, err := s.readSnip(ctx, tokens)
				if err != nil {
					return err
				}
				snips = append(snips, snip)
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
				var reserved int32
				if len(tokens) > 2 {
					if reserved, err = protocol.ParseInt("shader", tokens[2]); err != nil {
						return err
					}
				}
				text, err := s.readLine(command)
				if err != nil {
					return err
				}
				result = protocol.PreprocessResult{
					Location: req.Location,
					OK:       ok != 0,
					Reserved: reserved,
					Shader:   escape.Unescape(text),
					Snips:    snips,
					Errors:   errs,
				}
				return nil
			default:
				s.ignore(command, tokens)
			}
		}
	})
	if err != nil {
		return protocol.PreprocessResult{}, err
	}
	return result, nil
}

// readSnip decodes the snip header, its text line and the keyword records
// that follow it up to keywordsEnd:.
func (s *Session) readSnip(ctx context.Context, tokens []string) (protocol.Snip, error) {
	const command = protocol.CommandPreprocess
	if err := protocol.RequireTokens(tokens, 1+protocol.SnipHeaderSize); err != nil {
		return protocol.Snip{}, err
	}
	var header [protocol.SnipHeaderSize]int32
	if err := protocol.ParseInts("snip", tokens, 1, header[:]); err != nil {
		return protocol.Snip{}, err
	}
	text, err := s.readLine(command)
	if err != nil {
		return protocol.Snip{}, err
	}

	programID := strconv.Itoa(int(header[0]))
	configs := make([]protocol.Configuration, 0)
	for {
		kw, err := s.readRecord(ctx, command)
		if err != nil {
			return protocol.Snip{}, err
		}
		if kw[0] == protocol.TagKeywordsEnd {
			s.stats.recordTag(protocol.TagKeywordsEnd)
			if err := protocol.RequireExactTokens(kw, 2); err != nil {
				return protocol.Snip{}, err
			}
			if kw[1] != programID {
				return protocol.Snip{}, protocol.Violationf("keywordsEnd: program id %q, expected %s", kw[1], programID)
			}
			break
		}
		if kw[0] != protocol.TagKeywords {
			return protocol.Snip{}, protocol.Violationf("unexpected record %q, expected %s", kw[0], protocol.TagKeywords)
		}
		s.stats.recordTag(protocol.TagKeywords)
		cfg, err := decodeKeywords(kw, programID)
		if err != nil {
			return protocol.Snip{}, err
		}
		configs = append(configs, cfg)
	}
	return protocol.NewSnip(header, escape.Unescape(text), configs), nil
}

// keywords: <stage> <program id> <keyword>...
func decodeKeywords(tokens []string, programID string) (protocol.Configuration, error) {
	if err := protocol.RequireTokens(tokens, 4); err != nil {
		return protocol.Configuration{}, err
	}
	stage, err := protocol.ParseInt("keywords", tokens[1])
	if err != nil {
		return protocol.Configuration{}, err
	}
	if tokens[2] != programID {
		return protocol.Configuration{}, protocol.Violationf("keywords: program id %q, expected %s", tokens[2], programID)
	}
	keywords := make([]string, 0, len(tokens)-3)
	for _, kw := range tokens[3:] {
		if kw == "" {
			continue
		}
		keywords = append(keywords, protocol.InternKeyword(kw))
	}
	return protocol.Configuration{Stage: protocol.Stage(stage), Keywords: keywords}, nil
}
