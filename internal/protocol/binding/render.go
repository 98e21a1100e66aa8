package binding

import (
	"fmt"
	"strconv"
	"strings"
)

// constTypeNames[integer][rows-1][cols-1]; empty entries have no ShaderLab name.
var constTypeNames = [2][4][4]string{
	{
		{"Float", "Vector", "Vector", "Vector"},
		{},
		{},
		{"", "", "", "Matrix"},
	},
	{
		{"ScalarInt", "", "", ""},
		{},
		{},
		{},
	},
}

// Render returns the ShaderLab line for b, newline included, or "" when the
// binding produces no output.
func Render(b Binding) string {
	switch v := b.(type) {
	case Input:
		return fmt.Sprintf("Bind %q %s\n", v.Variable, v.Semantic)
	case ConstBuffer:
		return fmt.Sprintf("ConstBuffer %q %d\n", v.Name, v.Value)
	case BufferBind:
		return fmt.Sprintf("SetBuffer %d [%s]\n", v.ID, v.Name)
	case Const:
		return renderConst(v)
	case CBBind:
		return fmt.Sprintf("BindCB %q %d\n", v.Name, v.Value)
	case TexBind:
		if !v.Dimension.Known() {
			return ""
		}
		return fmt.Sprintf("SetTexture %d [%s] %s %d\n", v.ID, v.Name, v.Dimension, v.Value)
	case Stats:
		return renderStats(v)
	default:
		return ""
	}
}

// RenderAll concatenates Render for every binding in order.
func RenderAll(bindings []Binding) string {
	var sb strings.Builder
	for _, b := range bindings {
		sb.WriteString(Render(b))
	}
	return sb.String()
}

func renderConst(c Const) string {
	if !c.Renderable() {
		return "// Invalid rows/cols for const " + c.Name + "\n"
	}
	kind := 0
	if c.Integer {
		kind = 1
	}
	typ := constTypeNames[kind][c.Rows-1][c.Columns-1]
	if typ == "" {
		return "// I don't know the type name for " + c.Name + "\n"
	}
	line := fmt.Sprintf("%s %d [%s]", typ, c.ID, c.Name)
	if c.Rows == 1 && (c.Columns == 2 || c.Columns == 3) {
		line += " " + strconv.Itoa(int(c.Columns))
	}
	return line + "\n"
}

func renderStats(s Stats) string {
	parts := make([]string, 0, 3)
	if s.Math != 0 {
		parts = append(parts, fmt.Sprintf("%d math", s.Math))
	}
	if s.Texture != 0 {
		parts = append(parts, fmt.Sprintf("%d textures", s.Texture))
	}
	if s.Branch != 0 {
		parts = append(parts, fmt.Sprintf("%d branches", s.Branch))
	}
	if len(parts) == 0 {
		return ""
	}
	return "// Stats: " + strings.Join(parts, ", ") + "\n"
}
