package binding

import "fmt"

const (
	TagInput       = "input:"
	TagConstBuffer = "cb:"
	TagBufferBind  = "bufferbind:"
	TagConst       = "const:"
	TagCBBind      = "cbbind:"
	TagTexBind     = "texbind:"
	TagStats       = "stats:"
)

// Binding is one decoded record. The set of implementations is closed.
type Binding interface {
	Tag() string
	binding()
}

// Input binds a vertex input variable to a semantic.
type Input struct {
	VariableSlot int32  `json:"variable_slot" msgpack:"variable_slot"`
	SemanticSlot int32  `json:"semantic_slot" msgpack:"semantic_slot"`
	Variable     string `json:"variable" msgpack:"variable"`
	Semantic     string `json:"semantic" msgpack:"semantic"`
	Reserved     int32  `json:"reserved" msgpack:"reserved"`
}

// ConstBuffer declares a constant buffer.
type ConstBuffer struct {
	Name     string `json:"name" msgpack:"name"`
	Value    int32  `json:"value" msgpack:"value"`
	Reserved int32  `json:"reserved" msgpack:"reserved"`
}

// BufferBind binds a buffer name to an id.
type BufferBind struct {
	Name string `json:"name" msgpack:"name"`
	ID   int32  `json:"id" msgpack:"id"`
}

// Const declares a scalar, vector or matrix constant.
// Rows and Columns outside 1..4 leave the record unrenderable but still decoded.
type Const struct {
	Name     string `json:"name" msgpack:"name"`
	ID       int32  `json:"id" msgpack:"id"`
	Integer  bool   `json:"integer" msgpack:"integer"`
	Rows     int32  `json:"rows" msgpack:"rows"`
	Columns  int32  `json:"columns" msgpack:"columns"`
	Reserved int32  `json:"reserved" msgpack:"reserved"`
}

// Renderable reports whether rows and columns both fall in 1..4.
func (c Const) Renderable() bool {
	return c.Rows >= 1 && c.Rows <= 4 && c.Columns >= 1 && c.Columns <= 4
}

// CBBind binds a constant buffer to a slot value.
type CBBind struct {
	Name  string `json:"name" msgpack:"name"`
	Value int32  `json:"value" msgpack:"value"`
}

// Dimension is a texture shape.
type Dimension int32

const (
	DimensionNone Dimension = iota
	Dimension1D
	Dimension2D
	Dimension3D
	DimensionCube
)

// Known reports whether d is one of the texture dimensions the worker sends.
func (d Dimension) Known() bool {
	return d >= Dimension1D && d <= DimensionCube
}

func (d Dimension) String() string {
	switch d {
	case Dimension1D:
		return "1D"
	case Dimension2D:
		return "2D"
	case Dimension3D:
		return "3D"
	case DimensionCube:
		return "CUBE"
	default:
		return fmt.Sprintf("Dimension(%d)", int32(d))
	}
}

// TexBind binds a texture name to a sampler slot.
type TexBind struct {
	Name      string    `json:"name" msgpack:"name"`
	ID        int32     `json:"id" msgpack:"id"`
	Value     int32     `json:"value" msgpack:"value"`
	Dimension Dimension `json:"dimension" msgpack:"dimension"`
}

// Stats reports instruction counts for the compiled snippet.
type Stats struct {
	Math    int32 `json:"math" msgpack:"math"`
	Texture int32 `json:"texture" msgpack:"texture"`
	Branch  int32 `json:"branch" msgpack:"branch"`
}

func (Input) Tag() string       { return TagInput }
func (ConstBuffer) Tag() string { return TagConstBuffer }
func (BufferBind) Tag() string  { return TagBufferBind }
func (Const) Tag() string       { return TagConst }
func (CBBind) Tag() string      { return TagCBBind }
func (TexBind) Tag() string     { return TagTexBind }
func (Stats) Tag() string       { return TagStats }

func (Input) binding()       {}
func (ConstBuffer) binding() {}
func (BufferBind) binding()  {}
func (Const) binding()       {}
func (CBBind) binding()      {}
func (TexBind) binding()     {}
func (Stats) binding()       {}

// Tagged pairs a binding with its tag for self-describing encodings.
type Tagged struct {
	Tag   string  `json:"tag" msgpack:"tag"`
	Value Binding `json:"value" msgpack:"value"`
}

// TagAll wraps every binding in order.
func TagAll(bindings []Binding) []Tagged {
	out := make([]Tagged, len(bindings))
	for i, b := range bindings {
		out[i] = Tagged{Tag: b.Tag(), Value: b}
	}
	return out
}
