package binding

import (
	"errors"
	"fmt"
	"sort"

	"github.com/danmuck/shaderctl/internal/protocol"
)

var ErrDuplicateTag = errors.New("binding: tag already registered")

// Decoder turns a record's tokens (tag included) into a Binding.
// A nil Binding with a nil error means the record was dropped.
type Decoder func(tokens []string) (Binding, error)

// Kind pairs a record tag with its grammar's minimum token count and decoder.
type Kind struct {
	Tag       string
	MinTokens int
	Decode    Decoder
}

var (
	KindInput       = Kind{Tag: TagInput, MinTokens: 4, Decode: decodeInput}
	KindConstBuffer = Kind{Tag: TagConstBuffer, MinTokens: 4, Decode: decodeConstBuffer}
	KindBufferBind  = Kind{Tag: TagBufferBind, MinTokens: 3, Decode: decodeBufferBind}
	KindConst       = Kind{Tag: TagConst, MinTokens: 7, Decode: decodeConst}
	KindCBBind      = Kind{Tag: TagCBBind, MinTokens: 3, Decode: decodeCBBind}
	KindTexBind     = Kind{Tag: TagTexBind, MinTokens: 5, Decode: decodeTexBind}
	KindStats       = Kind{Tag: TagStats, MinTokens: 4, Decode: decodeStats}
)

// StandardKinds lists every record kind the worker is known to emit.
func StandardKinds() []Kind {
	return []Kind{
		KindInput,
		KindConstBuffer,
		KindConst,
		KindCBBind,
		KindBufferBind,
		KindTexBind,
		KindStats,
	}
}

// BasicKinds is the reduced set emitted by platforms without resource binding
// metadata (everything except the D3D-style buffer records).
func BasicKinds() []Kind {
	return []Kind{KindInput, KindConst, KindTexBind, KindStats}
}

// Registry maps record tags to decoders. Build it once per session; it is
// read-only during dispatch.
type Registry struct {
	kinds map[string]Kind
}

// New builds a registry. Later kinds with a duplicate tag panic, since a
// registry is assembled from static tables.
func New(kinds ...Kind) *Registry {
	r := &Registry{kinds: make(map[string]Kind, len(kinds))}
	for _, k := range kinds {
		if err := r.Register(k); err != nil {
			panic(err)
		}
	}
	return r
}

// Standard returns a registry with StandardKinds.
func Standard() *Registry {
	return New(StandardKinds()...)
}

// Register adds k. A tag can only be registered once.
func (r *Registry) Register(k Kind) error {
	if k.Tag == "" || k.Decode == nil {
		return fmt.Errorf("binding: invalid kind %q", k.Tag)
	}
	if _, ok := r.kinds[k.Tag]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTag, k.Tag)
	}
	r.kinds[k.Tag] = k
	return nil
}

// Lookup returns the kind registered for tag, tag colon included.
func (r *Registry) Lookup(tag string) (Kind, bool) {
	k, ok := r.kinds[tag]
	return k, ok
}

// Tags returns the registered tags in sorted order.
func (r *Registry) Tags() []string {
	out := make([]string, 0, len(r.kinds))
	for tag := range r.kinds {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Dispatch decodes a tokenised record. matched is false when the first token
// is not a registered tag; the caller then handles the line itself.
func (r *Registry) Dispatch(tokens []string) (b Binding, matched bool, err error) {
	if len(tokens) == 0 {
		return nil, false, nil
	}
	k, ok := r.kinds[tokens[0]]
	if !ok {
		return nil, false, nil
	}
	if err := protocol.RequireTokens(tokens, k.MinTokens); err != nil {
		return nil, true, err
	}
	b, err = k.Decode(tokens)
	if err != nil {
		return nil, true, err
	}
	return b, true, nil
}
