// Package ir provides the generic structured value that snapshots are
// built from.
//
// # Overview
//
// Any Go value handed to a snapshot assertion is first materialized into a
// tree of *Node. Redaction rewrites that tree and the encoder serializes
// it, so neither has to know about the caller's types.
//
// A Node is a tagged union: the Type field says which of the value
// fields is meaningful.
//
//   - NullType: null value
//   - BoolType: Bool
//   - NumberType: Int64, Float64, or the literal in Number
//   - StringType: String
//   - ArrayType: Values
//   - ObjectType: Fields[i] is the key of Values[i]
//
// Each node records its Parent, ParentIndex and ParentField so that
// Path() can name its location, e.g. "$.items[2].id".
//
// # Creating Nodes
//
//	obj := ir.FromMap(map[string]*ir.Node{
//	    "id":    ir.FromString("x"),
//	    "value": ir.FromInt(6),
//	})
//	node, err := ir.FromValue(myStruct)
//	node, err := ir.FromJSON([]byte(`{"a": 1}`))
//
// FromValue follows encoding/json conventions for struct fields and
// marshalers, and reports ErrCycle instead of recursing forever when the
// value graph refers back to itself.
//
// # Thread Safety
//
// Node structures are not thread-safe. Clone nodes that are shared
// between goroutines.
package ir
