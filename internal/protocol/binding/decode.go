package binding

import "github.com/danmuck/shaderctl/internal/protocol"

// Vertex input name tables, indexed by the slot numbers in an input: record.
// Empty entries are slots with no known name. Variable slot 1 reads as
// "vertex" (input: 1 1 0 is the position binding), so "normal" has no slot.
var (
	inputVariables = [7]string{
		"vertex",
		"vertex",
		"",
		"texcoord",
		"",
		"",
		"tangent",
	}
	inputSemantics = [8]string{
		"",
		"Vertex",
		"",
		"Normal",
		"",
		"TexCoord0",
		"TexCoord1",
		"TexCoord2",
	}
)

func lookupName(table []string, slot int32) (string, bool) {
	if slot < 0 || int(slot) >= len(table) || table[slot] == "" {
		return "", false
	}
	return table[slot], true
}

// input: <variable slot> <semantic slot> <reserved=0>
func decodeInput(tokens []string) (Binding, error) {
	var v [3]int32
	if err := protocol.ParseInts("input", tokens, 1, v[:]); err != nil {
		return nil, err
	}
	variable, okVar := lookupName(inputVariables[:], v[0])
	semantic, okSem := lookupName(inputSemantics[:], v[1])
	if !okVar || !okSem || v[2] != 0 {
		return nil, nil
	}
	return Input{
		VariableSlot: v[0],
		SemanticSlot: v[1],
		Variable:     variable,
		Semantic:     semantic,
		Reserved:     v[2],
	}, nil
}

// cb: <name> <value> <reserved>
func decodeConstBuffer(tokens []string) (Binding, error) {
	var v [2]int32
	if err := protocol.ParseInts("cb", tokens, 2, v[:]); err != nil {
		return nil, err
	}
	return ConstBuffer{Name: tokens[1], Value: v[0], Reserved: v[1]}, nil
}

// bufferbind: <name> <id>
func decodeBufferBind(tokens []string) (Binding, error) {
	id, err := protocol.ParseInt("bufferbind", tokens[2])
	if err != nil {
		return nil, err
	}
	return BufferBind{Name: tokens[1], ID: id}, nil
}

// const: <name> <id> <integer flag> <rows> <columns> <reserved>
func decodeConst(tokens []string) (Binding, error) {
	var v [5]int32
	if err := protocol.ParseInts("const", tokens, 2, v[:]); err != nil {
		return nil, err
	}
	return Const{
		Name:     tokens[1],
		ID:       v[0],
		Integer:  v[1] != 0,
		Rows:     v[2],
		Columns:  v[3],
		Reserved: v[4],
	}, nil
}

// cbbind: <name> <value>
func decodeCBBind(tokens []string) (Binding, error) {
	value, err := protocol.ParseInt("cbbind", tokens[2])
	if err != nil {
		return nil, err
	}
	return CBBind{Name: tokens[1], Value: value}, nil
}

// texbind: <name> <id> <value> <dimension>
func decodeTexBind(tokens []string) (Binding, error) {
	var v [3]int32
	if err := protocol.ParseInts("texbind", tokens, 2, v[:]); err != nil {
		return nil, err
	}
	dim := Dimension(v[2])
	if !dim.Known() {
		return nil, nil
	}
	return TexBind{Name: tokens[1], ID: v[0], Value: v[1], Dimension: dim}, nil
}

// stats: <math> <texture> <branch>
func decodeStats(tokens []string) (Binding, error) {
	var v [3]int32
	if err := protocol.ParseInts("stats", tokens, 1, v[:]); err != nil {
		return nil, err
	}
	return Stats{Math: v[0], Texture: v[1], Branch: v[2]}, nil
}
