package ir

import (
	"maps"
	"slices"
)

// Node is one value of a generic structured value tree.
//
// For ObjectType nodes, Fields[i] is the StringType key of Values[i].
// Numbers are held in Int64, Float64, or as a literal in Number when
// neither can represent them exactly.
type Node struct {
	Type        Type
	Parent      *Node
	ParentIndex int
	ParentField string
	Fields      []*Node
	Values      []*Node

	String  string
	Bool    bool
	Number  string
	Float64 *float64
	Int64   *int64
}

func (y *Node) Clone() *Node {
	res := &Node{}
	return y.CloneTo(res)
}

func (y *Node) CloneTo(dst *Node) *Node {
	dst.Parent = y.Parent
	dst.ParentIndex = y.ParentIndex
	dst.ParentField = y.ParentField
	dst.Type = y.Type
	if y.Values != nil {
		dst.Values = make([]*Node, len(y.Values))
	}
	if y.Fields != nil {
		dst.Fields = make([]*Node, len(y.Fields))
	}
	for i, yv := range y.Values {
		dstI := &Node{}
		yv.CloneTo(dstI)
		dstI.Parent = dst
		dstI.ParentIndex = i
		dstI.ParentField = yv.ParentField
		dst.Values[i] = dstI
	}
	for i, yf := range y.Fields {
		dstI := &Node{}
		yf.CloneTo(dstI)
		dstI.Parent = dst
		dstI.ParentIndex = i
		dstI.ParentField = yf.String
		dst.Fields[i] = dstI
	}

	dst.String = y.String
	dst.Number = y.Number
	if y.Float64 != nil {
		f := *y.Float64
		dst.Float64 = &f
	}
	if y.Int64 != nil {
		i := *y.Int64
		dst.Int64 = &i
	}
	dst.Bool = y.Bool
	return dst
}

func Null() *Node {
	return &Node{Type: NullType}
}

func FromString(v string) *Node {
	return &Node{
		Type:   StringType,
		String: v,
	}
}

func FromInt(v int64) *Node {
	return &Node{
		Type:  NumberType,
		Int64: &v,
	}
}

func FromFloat(f float64) *Node {
	return &Node{
		Type:    NumberType,
		Float64: &f,
	}
}

// FromNumber makes a number node from its literal text, for values that
// neither int64 nor float64 represent exactly.
func FromNumber(lit string) *Node {
	return &Node{
		Type:   NumberType,
		Number: lit,
	}
}

func FromBool(v bool) *Node {
	return &Node{
		Type: BoolType,
		Bool: v,
	}
}

func FromSlice(ys []*Node) *Node {
	res := &Node{Type: ArrayType, Values: make([]*Node, len(ys))}
	for i, y := range ys {
		y.Parent = res
		y.ParentIndex = i
		y.ParentField = ""
		res.Values[i] = y
	}
	return res
}

// FromMap makes an object node with fields in sorted key order.
func FromMap(yMap map[string]*Node) *Node {
	keys := slices.Sorted(maps.Keys(yMap))
	kvs := make([]KeyVal, len(keys))
	for i, key := range keys {
		kvs[i] = KeyVal{Key: key, Val: yMap[key]}
	}
	return FromKeyVals(kvs)
}

type KeyVal struct {
	Key string
	Val *Node
}

// FromKeyVals makes an object node keeping the order of kvs.
func FromKeyVals(kvs []KeyVal) *Node {
	res := &Node{
		Type:   ObjectType,
		Fields: make([]*Node, len(kvs)),
		Values: make([]*Node, len(kvs)),
	}
	for i, kv := range kvs {
		res.Fields[i] = &Node{
			Parent:      res,
			ParentIndex: i,
			ParentField: kv.Key,
			Type:        StringType,
			String:      kv.Key,
		}
		res.setValue(i, kv.Key, kv.Val)
	}
	return res
}

// Field returns the value for key in an object node and its index, or
// nil and -1 when the key is absent.
func (y *Node) Field(key string) (*Node, int) {
	for i, f := range y.Fields {
		if f.String == key {
			return y.Values[i], i
		}
	}
	return nil, -1
}

// Replace replaces the child at index i of an object or array node.
func (y *Node) Replace(i int, v *Node) {
	field := ""
	if y.Type == ObjectType {
		field = y.Fields[i].String
	}
	y.setValue(i, field, v)
}

func (y *Node) setValue(i int, field string, v *Node) {
	v.Parent = y
	v.ParentIndex = i
	v.ParentField = field
	y.Values[i] = v
}
