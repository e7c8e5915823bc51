package ir

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// parent links are ignored so trees built in different ways compare equal
var nodeOpts = cmpopts.IgnoreFields(Node{}, "Parent", "ParentIndex", "ParentField")

func TestFromMapSortsKeys(t *testing.T) {
	node := FromMap(map[string]*Node{
		"b": FromInt(2),
		"a": FromInt(1),
		"c": Null(),
	})
	want := []string{"a", "b", "c"}
	for i, f := range node.Fields {
		if f.String != want[i] {
			t.Errorf("field %d = %q, want %q", i, f.String, want[i])
		}
		if node.Values[i].ParentField != want[i] || node.Values[i].Parent != node {
			t.Errorf("value %d has wrong parent links", i)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := FromMap(map[string]*Node{
		"list": FromSlice([]*Node{FromInt(1), FromString("x")}),
		"obj":  FromMap(map[string]*Node{"k": FromFloat(2.5)}),
	})
	clone := orig.Clone()
	if diff := cmp.Diff(orig, clone, nodeOpts); diff != "" {
		t.Fatalf("clone differs from original (-orig +clone):\n%s", diff)
	}
	list, _ := clone.Field("list")
	list.Replace(0, FromString("changed"))
	obj, _ := clone.Field("obj")
	*obj.Values[0].Float64 = 3

	origList, _ := orig.Field("list")
	if origList.Values[0].Type != NumberType {
		t.Error("replacing in clone changed original")
	}
	origObj, _ := orig.Field("obj")
	if *origObj.Values[0].Float64 != 2.5 {
		t.Error("mutating clone number changed original")
	}
}

func TestPath(t *testing.T) {
	root := FromMap(map[string]*Node{
		"a.b": FromSlice([]*Node{FromMap(map[string]*Node{"c": Null()})}),
	})
	arr, _ := root.Field("a.b")
	leaf, _ := arr.Values[0].Field("c")
	if got, want := leaf.Path(), "$.'a.b'[0].c"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
	if root.Path() != "$" {
		t.Errorf("root Path() = %q", root.Path())
	}
}

func TestFromJSONKeepsOrder(t *testing.T) {
	node, err := FromJSON([]byte(`{"z": [1, 2.5, 1e400, null], "a": {"t": true}, "s": "str"}`))
	if err != nil {
		t.Fatal(err)
	}
	if node.Fields[0].String != "z" || node.Fields[1].String != "a" {
		t.Errorf("order not kept: %q %q", node.Fields[0].String, node.Fields[1].String)
	}
	z := node.Values[0]
	if *z.Values[0].Int64 != 1 {
		t.Errorf("int not parsed: %#v", z.Values[0])
	}
	if *z.Values[1].Float64 != 2.5 {
		t.Errorf("float not parsed: %#v", z.Values[1])
	}
	if z.Values[2].Number != "1e400" {
		t.Errorf("out of range number should keep its literal, got %#v", z.Values[2])
	}
	if z.Values[3].Type != NullType {
		t.Errorf("null not parsed: %s", z.Values[3].Type)
	}
}

func TestFromJSONErrors(t *testing.T) {
	for _, in := range []string{``, `{`, `[1,]`, `1 2`} {
		if _, err := FromJSON([]byte(in)); !errors.Is(err, ErrParse) {
			t.Errorf("FromJSON(%q): got %v, want ErrParse", in, err)
		}
	}
}
