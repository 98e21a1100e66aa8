package binding

import "testing"

func TestRender(t *testing.T) {
	cases := []struct {
		b    Binding
		want string
	}{
		{Input{Variable: "vertex", Semantic: "Vertex"}, "Bind \"vertex\" Vertex\n"},
		{ConstBuffer{Name: "$Globals", Value: 96}, "ConstBuffer \"$Globals\" 96\n"},
		{BufferBind{Name: "$Globals", ID: 0}, "SetBuffer 0 [$Globals]\n"},
		{Const{Name: "_Color", ID: 16, Rows: 1, Columns: 4}, "Vector 16 [_Color]\n"},
		{Const{Name: "_Dir", ID: 0, Rows: 1, Columns: 3}, "Vector 0 [_Dir] 3\n"},
		{Const{Name: "_F", ID: 4, Rows: 1, Columns: 1}, "Float 4 [_F]\n"},
		{Const{Name: "_M", ID: 0, Rows: 4, Columns: 4}, "Matrix 0 [_M]\n"},
		{Const{Name: "_I", ID: 2, Integer: true, Rows: 1, Columns: 1}, "ScalarInt 2 [_I]\n"},
		{Const{Name: "_Odd", Rows: 2, Columns: 2}, "// I don't know the type name for _Odd\n"},
		{Const{Name: "_Bad", Rows: 0, Columns: 5}, "// Invalid rows/cols for const _Bad\n"},
		{CBBind{Name: "UnityPerDraw", Value: 1}, "BindCB \"UnityPerDraw\" 1\n"},
		{TexBind{Name: "_MainTex", ID: 0, Value: 0, Dimension: Dimension2D}, "SetTexture 0 [_MainTex] 2D 0\n"},
		{TexBind{Name: "_Sky", ID: 1, Value: 3, Dimension: DimensionCube}, "SetTexture 1 [_Sky] CUBE 3\n"},
		{Stats{}, ""},
		{Stats{Math: 3, Branch: 1}, "// Stats: 3 math, 1 branches\n"},
		{Stats{Texture: 2}, "// Stats: 2 textures\n"},
		{Stats{Math: 5, Texture: 2, Branch: 1}, "// Stats: 5 math, 2 textures, 1 branches\n"},
	}
	for _, tc := range cases {
		if got := Render(tc.b); got != tc.want {
			t.Fatalf("Render(%#v)=%q want %q", tc.b, got, tc.want)
		}
	}
}

func TestRenderAllKeepsOrder(t *testing.T) {
	got := RenderAll([]Binding{
		Input{Variable: "vertex", Semantic: "Vertex"},
		Stats{},
		Stats{Math: 1},
	})
	want := "Bind \"vertex\" Vertex\n// Stats: 1 math\n"
	if got != want {
		t.Fatalf("got=%q want=%q", got, want)
	}
}
