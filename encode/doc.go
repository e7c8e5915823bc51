// Package encode encodes IR nodes to deterministic JSON text.
//
// The pretty form is what snapshot files store: object keys in sorted
// order, object fields whose value is null left out, two-space
// indentation, "key": value separators and "\n" line breaks. Equal
// values therefore always encode to equal text, however they were built.
//
// # Usage
//
//	node := ir.FromMap(map[string]*ir.Node{
//	    "name": ir.FromString("alice"),
//	    "age":  ir.FromInt(30),
//	})
//	s, err := encode.JSON(node)
//
//	// compact form, one line
//	err = encode.Encode(node, w, encode.EncodeWire(true))
//
//	// colors for terminals
//	err = encode.Encode(node, os.Stdout, encode.EncodeColors(encode.NewColors()))
//
// # Related Packages
//
//   - github.com/signadot/snapshot/ir - IR representation
package encode
