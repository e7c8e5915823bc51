package ir

import (
	"strconv"
	"strings"
)

// Path returns the JSONPath-style location of y in its tree, "$" for the
// root.
func (y *Node) Path() string {
	if y.Parent == nil {
		return "$"
	}
	switch y.Parent.Type {
	case ObjectType:
		return y.Parent.Path() + "." + QuoteField(y.ParentField)
	case ArrayType:
		return y.Parent.Path() + "[" + strconv.Itoa(y.ParentIndex) + "]"
	default:
		panic("parent but not in container")
	}
}

// QuoteField quotes f with single quotes when it would not read back as a
// single path field.
func QuoteField(f string) string {
	if f != "" && strings.IndexAny(f, "'.*$[] ") == -1 {
		return f
	}
	return "'" + strings.ReplaceAll(f, "'", "\\'") + "'"
}
