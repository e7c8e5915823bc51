package encode

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/signadot/snapshot/ir"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name string
		node *ir.Node
		want string
	}{
		{
			name: "sorted keys",
			node: ir.FromKeyVals([]ir.KeyVal{
				{Key: "b", Val: ir.FromInt(2)},
				{Key: "a", Val: ir.FromInt(1)},
			}),
			want: "{\n  \"a\": 1,\n  \"b\": 2\n}",
		},
		{
			name: "null fields omitted",
			node: ir.FromKeyVals([]ir.KeyVal{
				{Key: "id", Val: ir.FromString("x")},
				{Key: "gone", Val: ir.Null()},
			}),
			want: "{\n  \"id\": \"x\"\n}",
		},
		{
			name: "nulls kept in arrays",
			node: ir.FromSlice([]*ir.Node{ir.Null(), ir.FromBool(true)}),
			want: "[\n  null,\n  true\n]",
		},
		{
			name: "nested",
			node: ir.FromMap(map[string]*ir.Node{
				"list": ir.FromSlice([]*ir.Node{ir.FromFloat(1.5), ir.FromNumber("1e400")}),
				"obj":  ir.FromMap(map[string]*ir.Node{"k": ir.FromString("v")}),
			}),
			want: `{
  "list": [
    1.5,
    1e400
  ],
  "obj": {
    "k": "v"
  }
}`,
		},
		{
			name: "empty containers",
			node: ir.FromMap(map[string]*ir.Node{
				"a": ir.FromSlice(nil),
				"o": ir.FromMap(map[string]*ir.Node{"n": ir.Null()}),
			}),
			want: "{\n  \"a\": [],\n  \"o\": {}\n}",
		},
		{
			name: "root null",
			node: ir.Null(),
			want: "null",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JSON(tt.node)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestJSONDeterministic(t *testing.T) {
	a, err := ir.FromValue(map[string]any{"x": 1, "y": []any{"a", map[string]int{"q": 1, "p": 2}}})
	if err != nil {
		t.Fatal(err)
	}
	b, err := ir.FromJSON([]byte(`{"y": ["a", {"p": 2, "q": 1}], "x": 1}`))
	if err != nil {
		t.Fatal(err)
	}
	sa, err := JSON(a)
	if err != nil {
		t.Fatal(err)
	}
	sb, err := JSON(b)
	if err != nil {
		t.Fatal(err)
	}
	if sa != sb {
		t.Errorf("differently built equal values encode differently:\n%s\n%s", sa, sb)
	}
}

func TestWire(t *testing.T) {
	node := ir.FromMap(map[string]*ir.Node{
		"b": ir.FromSlice([]*ir.Node{ir.FromInt(1), ir.FromInt(2)}),
		"a": ir.FromString("x"),
	})
	d, err := Wire(node)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(d), `{"a":"x","b":[1,2]}`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestEncodeTrailingNewline(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := Encode(ir.FromInt(3), buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "3\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestEncodeErrors(t *testing.T) {
	if _, err := JSON(&ir.Node{Type: ir.NumberType}); !errors.Is(err, ErrEncoding) {
		t.Errorf("empty number: got %v, want ErrEncoding", err)
	}
	if _, err := JSON(nil); !errors.Is(err, ErrEncoding) {
		t.Errorf("nil node: got %v, want ErrEncoding", err)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", `"plain"`},
		{"a\"b\\c", `"a\"b\\c"`},
		{"any\n\n\nName4", `"any\n\n\nName4"`},
		{"\x01\t", `"\u0001\t"`},
		{"<&>", `"<&>"`},
		{" ", `" "`},
		{"\xff", `"\ufffd"`},
		{"a b", `"a b"`},
		{"héllo", `"héllo"`},
		{"\u2028", `"\u2028"`},
	}
	for _, tt := range tests {
		if got := Quote(tt.in); got != tt.want {
			t.Errorf("Quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestColorsWrapValues(t *testing.T) {
	colors := NewColors()
	buf := &bytes.Buffer{}
	err := Encode(ir.FromMap(map[string]*ir.Node{"k": ir.FromString("v")}), buf, EncodeColors(colors))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "k") || !strings.Contains(buf.String(), "v") {
		t.Errorf("colored output lost content: %q", buf.String())
	}
}
