package redact

import (
	"errors"
	"fmt"
	"strings"

	"github.com/signadot/snapshot/ir"
)

var (
	ErrParse = errors.New("redaction path parse error")
	ErrType  = errors.New("redaction type error")
)

// Segment is one step of a Path: a field name, or every field when All
// is set.
type Segment struct {
	Field string
	All   bool
}

// Path is a parsed redaction expression.
type Path struct {
	Expr      string
	Recursive bool
	Segments  []Segment
}

func (p *Path) String() string {
	if p.Recursive {
		return "$..*"
	}
	parts := make([]string, len(p.Segments))
	for i, seg := range p.Segments {
		if seg.All {
			parts[i] = "*"
			continue
		}
		parts[i] = ir.QuoteField(seg.Field)
	}
	return strings.Join(parts, ".")
}

// Parse parses a redaction expression.
func Parse(expr string) (*Path, error) {
	p := &Path{Expr: expr}
	frag := expr
	switch frag {
	case "$..*", "..*":
		p.Recursive = true
		return p, nil
	}
	frag = strings.TrimPrefix(frag, "$.")
	if frag == "" {
		return nil, fmt.Errorf("%w: %q: empty path", ErrParse, expr)
	}
	for {
		seg, rest, err := parseSegment(frag)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrParse, expr, err)
		}
		p.Segments = append(p.Segments, seg)
		if rest == "" {
			return p, nil
		}
		if rest[0] != '.' {
			return nil, fmt.Errorf("%w: %q: expected '.' before %q", ErrParse, expr, rest)
		}
		frag = rest[1:]
	}
}

func parseSegment(frag string) (seg Segment, rest string, err error) {
	if len(frag) == 0 {
		return seg, "", errors.New("empty field")
	}
	if frag[0] != '\'' {
		i := strings.IndexByte(frag, '.')
		if i == -1 {
			i = len(frag)
		}
		field := frag[:i]
		if field == "" {
			return seg, "", errors.New("empty field")
		}
		if field == "*" {
			return Segment{All: true}, frag[i:], nil
		}
		return Segment{Field: field}, frag[i:], nil
	}
	escaped := false
	res := make([]byte, 0, len(frag))
	for i := 1; i < len(frag); i++ {
		c := frag[i]
		switch {
		case c == '\\' && !escaped:
			escaped = true
		case c == '\'' && !escaped:
			return Segment{Field: string(res)}, frag[i+1:], nil
		default:
			escaped = false
			res = append(res, c)
		}
	}
	return seg, "", errors.New("end of string scanning for \"'\"")
}
