package redact

import (
	"fmt"

	"github.com/signadot/snapshot/debug"
	"github.com/signadot/snapshot/ir"
)

// Ignored replaces every redacted value.
const Ignored = "IGNORED"

// Apply returns a copy of node with the fields named by paths replaced
// by Ignored. The paths are applied in order; node is not modified.
func Apply(node *ir.Node, paths ...string) (*ir.Node, error) {
	parsed := make([]*Path, len(paths))
	for i, expr := range paths {
		p, err := Parse(expr)
		if err != nil {
			return nil, err
		}
		parsed[i] = p
	}
	res := node.Clone()
	res.Parent = nil
	for _, p := range parsed {
		if err := p.Apply(res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Apply redacts node in place.
func (p *Path) Apply(node *ir.Node) error {
	if debug.Redact() {
		debug.Logf("redact %s on %s\n", p, node.Type)
	}
	if p.Recursive {
		return p.applyRecursive(node)
	}
	return p.walk(node, p.Segments)
}

func (p *Path) applyRecursive(node *ir.Node) error {
	switch node.Type {
	case ir.ObjectType:
		ignoreFields(node)
	case ir.ArrayType:
		for i, v := range node.Values {
			if v.Type == ir.ObjectType {
				ignoreFields(v)
				continue
			}
			node.Replace(i, ir.FromString(Ignored))
		}
	default:
		return p.typeError(node)
	}
	return nil
}

func (p *Path) walk(node *ir.Node, segs []Segment) error {
	if node.Type != ir.ObjectType {
		return p.typeError(node)
	}
	seg, rest := segs[0], segs[1:]
	if seg.All {
		for i, v := range node.Values {
			if len(rest) == 0 {
				node.Replace(i, ir.FromString(Ignored))
				continue
			}
			if v.Type != ir.ObjectType {
				continue
			}
			if err := p.walk(v, rest); err != nil {
				return err
			}
		}
		return nil
	}
	v, i := node.Field(seg.Field)
	if i == -1 {
		return nil
	}
	if len(rest) == 0 {
		node.Replace(i, ir.FromString(Ignored))
		return nil
	}
	return p.walk(v, rest)
}

func (p *Path) typeError(node *ir.Node) error {
	return fmt.Errorf("%w: path %q: expected object at %s, got %s", ErrType, p.Expr, node.Path(), node.Type)
}

func ignoreFields(node *ir.Node) {
	for i := range node.Values {
		node.Replace(i, ir.FromString(Ignored))
	}
}
