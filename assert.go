package snapshot

import (
	"fmt"
	"testing"

	"github.com/signadot/snapshot/ident"
	"github.com/signadot/snapshot/ir"
	"github.com/signadot/snapshot/patch"
	"github.com/signadot/snapshot/redact"
)

// Assertion is a pending snapshot assertion created by Expect.
type Assertion struct {
	run      *Run
	tb       testing.TB
	site     CallSite
	siteErr  error
	member   string
	scenario string
	values   []any
	ignore   []string
	patches  [][]byte
}

// Ignoring redacts the fields named by paths in every value before
// serialization. See package redact for the path syntax.
func (a *Assertion) Ignoring(paths ...string) *Assertion {
	a.ignore = append(a.ignore, paths...)
	return a
}

// Patching applies a JSON Patch document to every value after
// redaction.
func (a *Assertion) Patching(p []byte) *Assertion {
	a.patches = append(a.patches, p)
	return a
}

// Named replaces the member part of the identifier, which otherwise is
// the name of the calling test.
func (a *Assertion) Named(member string) *Assertion {
	a.member = member
	return a
}

// Identifier returns the identifier the assertion is evaluated under.
// An identifier that would not read back from a snapshot file, such as a
// member with spaces or a scenario containing ']', fails with an error
// wrapping ErrIdentifier.
func (a *Assertion) Identifier() (ident.Identifier, error) {
	if a.siteErr != nil {
		return ident.Identifier{}, a.siteErr
	}
	member := a.site.Member
	if a.member != "" {
		member = a.member
	}
	id := ident.Identifier{Unit: a.site.Unit, Member: member, Scenario: a.scenario}
	if err := id.Check(); err != nil {
		return ident.Identifier{}, err
	}
	return id, nil
}

// ToMatchSnapshot evaluates the assertion. A mismatch is reported as a
// *MismatchError.
func (a *Assertion) ToMatchSnapshot() error {
	_, err := a.Evaluate()
	return err
}

// MatchSnapshot evaluates the assertion and fails the test on any error.
func (a *Assertion) MatchSnapshot() {
	a.tb.Helper()
	if err := a.ToMatchSnapshot(); err != nil {
		a.tb.Fatal(err)
	}
}

// Evaluate evaluates the assertion and returns its state.
func (a *Assertion) Evaluate() (State, error) {
	id, err := a.Identifier()
	if err != nil {
		return Pending, err
	}
	name := id.String()
	r := a.run
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(name); err != nil {
		return Pending, err
	}
	candidate, err := a.candidate()
	if err != nil {
		return Pending, fmt.Errorf("%s: %w", name, err)
	}
	st, err := r.storeFor(id.Unit)
	if err != nil {
		return Pending, err
	}
	return Evaluate(name, candidate, r.cfg.Stringify, st, r.cfg.Update)
}

// candidate materializes the values. One value stands for itself,
// several become an array.
func (a *Assertion) candidate() (*ir.Node, error) {
	nodes := make([]*ir.Node, len(a.values))
	for i, v := range a.values {
		node, err := a.prepare(v)
		if err != nil {
			return nil, err
		}
		nodes[i] = node
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	return ir.FromSlice(nodes), nil
}

func (a *Assertion) prepare(v any) (*ir.Node, error) {
	node, ok := v.(*ir.Node)
	switch {
	case ok && node == nil:
		node = ir.Null()
	case ok:
		node = node.Clone()
	default:
		var err error
		if node, err = ir.FromValue(v); err != nil {
			return nil, err
		}
	}
	node, err := redact.Apply(node, a.ignore...)
	if err != nil {
		return nil, err
	}
	for _, d := range a.patches {
		node, err = patch.Apply(node, d)
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}
