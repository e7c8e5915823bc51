// Package patch applies RFC 6902 JSON Patch documents to IR nodes.
package patch

import (
	"errors"
	"fmt"

	"github.com/signadot/snapshot/debug"
	"github.com/signadot/snapshot/encode"
	"github.com/signadot/snapshot/ir"

	jsonpatch "github.com/evanphx/json-patch"
)

var ErrPatch = errors.New("json patch error")

// Patch is a decoded JSON Patch document.
type Patch struct {
	ops jsonpatch.Patch
}

// Decode decodes a JSON Patch document, an array of operations.
func Decode(d []byte) (*Patch, error) {
	ops, err := jsonpatch.DecodePatch(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPatch, err)
	}
	return &Patch{ops: ops}, nil
}

// Apply returns the result of applying p to doc. doc is not modified.
func (p *Patch) Apply(doc *ir.Node) (*ir.Node, error) {
	if debug.Redact() {
		debug.Logf("json patch with %d ops on %s\n", len(p.ops), doc.Path())
	}
	d, err := encode.Wire(doc)
	if err != nil {
		return nil, err
	}
	out, err := p.ops.Apply(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPatch, err)
	}
	res, err := ir.FromJSON(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPatch, err)
	}
	return res, nil
}

// Apply decodes d and applies it to doc.
func Apply(doc *ir.Node, d []byte) (*ir.Node, error) {
	p, err := Decode(d)
	if err != nil {
		return nil, err
	}
	return p.Apply(doc)
}
