package encode

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/signadot/snapshot/ir"
)

var ErrEncoding = errors.New("encoding error")

type EncState struct {
	col           int
	depth, indent int
	wire          bool

	Color func(ir.Type, ColorAttr, string) string
}

// Encode writes node to w followed by a newline.
func Encode(node *ir.Node, w io.Writer, opts ...EncodeOption) error {
	es := newState(opts)
	if err := encode(node, w, es); err != nil {
		return err
	}
	return writeString(w, "\n")
}

// JSON returns the pretty encoding of node without a trailing newline.
// It is the default stringify function of snapshot assertions.
func JSON(node *ir.Node) (string, error) {
	buf := &strings.Builder{}
	if err := encode(node, buf, newState(nil)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Wire returns the compact one-line encoding of node.
func Wire(node *ir.Node) ([]byte, error) {
	buf := &strings.Builder{}
	if err := encode(node, buf, newState([]EncodeOption{EncodeWire(true)})); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

func newState(opts []EncodeOption) *EncState {
	es := &EncState{
		indent: 2,
	}
	for _, opt := range opts {
		opt(es)
	}
	return es
}

func writeNL(w io.Writer, es *EncState) error {
	if es.wire {
		return nil
	}
	indentString := strings.Repeat(" ", es.indent*es.depth)
	if err := writeString(w, "\n"+indentString); err != nil {
		return err
	}
	es.col = len(indentString)
	return nil
}

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}

func applyColor(es *EncState, t ir.Type, attr ColorAttr, v string) string {
	if es.Color == nil {
		return v
	}
	return es.Color(t, attr, v)
}

func encode(node *ir.Node, w io.Writer, es *EncState) error {
	if node == nil {
		return fmt.Errorf("%w: nil node", ErrEncoding)
	}
	switch node.Type {
	case ir.ObjectType:
		return encodeObject(node, w, es)
	case ir.ArrayType:
		return encodeArray(node, w, es)
	case ir.StringType:
		return writeString(w, applyColor(es, ir.StringType, ValueColor, Quote(node.String)))
	case ir.NumberType:
		lit, err := numberLiteral(node)
		if err != nil {
			return err
		}
		return writeString(w, applyColor(es, ir.NumberType, ValueColor, lit))
	case ir.BoolType:
		return writeString(w, applyColor(es, ir.BoolType, ValueColor, strconv.FormatBool(node.Bool)))
	case ir.NullType:
		return writeString(w, applyColor(es, ir.NullType, ValueColor, "null"))
	default:
		return fmt.Errorf("%w: unknown type %s at %s", ErrEncoding, node.Type, node.Path())
	}
}

func numberLiteral(node *ir.Node) (string, error) {
	switch {
	case node.Int64 != nil:
		return strconv.FormatInt(*node.Int64, 10), nil
	case node.Float64 != nil:
		return ir.FormatFloat(*node.Float64, 64), nil
	case node.Number != "":
		return node.Number, nil
	}
	return "", fmt.Errorf("%w: number without value at %s", ErrEncoding, node.Path())
}

// objectFields returns the indices of the non-null fields of node in key
// order.
func objectFields(node *ir.Node) []int {
	res := make([]int, 0, len(node.Fields))
	for i, v := range node.Values {
		if v.Type == ir.NullType {
			continue
		}
		res = append(res, i)
	}
	slices.SortStableFunc(res, func(a, b int) int {
		return strings.Compare(node.Fields[a].String, node.Fields[b].String)
	})
	return res
}

func encodeObject(node *ir.Node, w io.Writer, es *EncState) error {
	if len(node.Fields) != len(node.Values) {
		return fmt.Errorf("%w: object at %s has %d fields and %d values", ErrEncoding, node.Path(), len(node.Fields), len(node.Values))
	}
	fields := objectFields(node)
	if len(fields) == 0 {
		return writeString(w, applyColor(es, ir.ObjectType, SepColor, "{}"))
	}
	if err := writeString(w, applyColor(es, ir.ObjectType, SepColor, "{")); err != nil {
		return err
	}
	es.depth++
	for n, i := range fields {
		if n > 0 {
			if err := writeString(w, applyColor(es, ir.ObjectType, SepColor, ",")); err != nil {
				return err
			}
		}
		if err := writeNL(w, es); err != nil {
			return err
		}
		key := applyColor(es, ir.ObjectType, FieldColor, Quote(node.Fields[i].String))
		sep := ": "
		if es.wire {
			sep = ":"
		}
		if err := writeString(w, key+applyColor(es, ir.ObjectType, SepColor, sep)); err != nil {
			return err
		}
		if err := encode(node.Values[i], w, es); err != nil {
			return err
		}
	}
	es.depth--
	if err := writeNL(w, es); err != nil {
		return err
	}
	return writeString(w, applyColor(es, ir.ObjectType, SepColor, "}"))
}

func encodeArray(node *ir.Node, w io.Writer, es *EncState) error {
	if len(node.Values) == 0 {
		return writeString(w, applyColor(es, ir.ArrayType, SepColor, "[]"))
	}
	if err := writeString(w, applyColor(es, ir.ArrayType, SepColor, "[")); err != nil {
		return err
	}
	es.depth++
	for i, v := range node.Values {
		if i > 0 {
			if err := writeString(w, applyColor(es, ir.ArrayType, SepColor, ",")); err != nil {
				return err
			}
		}
		if err := writeNL(w, es); err != nil {
			return err
		}
		if err := encode(v, w, es); err != nil {
			return err
		}
	}
	es.depth--
	if err := writeNL(w, es); err != nil {
		return err
	}
	return writeString(w, applyColor(es, ir.ArrayType, SepColor, "]"))
}

const hex = "0123456789abcdef"

// Quote returns s as a JSON string literal. Invalid UTF-8 is replaced by
// U+FFFD; HTML characters are left as they are.
func Quote(s string) string {
	buf := make([]byte, 0, len(s)+2)
	buf = append(buf, '"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch {
			case c == '"' || c == '\\':
				buf = append(buf, '\\', c)
			case c == '\n':
				buf = append(buf, '\\', 'n')
			case c == '\r':
				buf = append(buf, '\\', 'r')
			case c == '\t':
				buf = append(buf, '\\', 't')
			case c == '\b':
				buf = append(buf, '\\', 'b')
			case c == '\f':
				buf = append(buf, '\\', 'f')
			case c < 0x20:
				buf = append(buf, '\\', 'u', '0', '0', hex[c>>4], hex[c&0xF])
			default:
				buf = append(buf, c)
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			buf = append(buf, `\ufffd`...)
		case r == '\u2028' || r == '\u2029':
			buf = append(buf, '\\', 'u', '2', '0', '2', hex[r&0xF])
		default:
			buf = append(buf, s[i:i+size]...)
		}
		i += size
	}
	buf = append(buf, '"')
	return string(buf)
}
