package snapshot

import (
	"strings"

	"github.com/signadot/snapshot/debug"
	"github.com/signadot/snapshot/encode"
	"github.com/signadot/snapshot/ir"
	"github.com/signadot/snapshot/store"
)

// State is the outcome of evaluating a snapshot.
type State int

const (
	Pending State = iota
	Matched
	Mismatched
	Recorded
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Matched:
		return "matched"
	case Mismatched:
		return "mismatched"
	case Recorded:
		return "recorded"
	default:
		return "unknown"
	}
}

// Stringify serializes a candidate value.
type Stringify func(*ir.Node) (string, error)

// Evaluate compares candidate with the entry name in st.
//
// In update mode, or when st has no entry name, the serialized candidate
// is stored and Recorded is returned. Otherwise the result is Matched, or
// Mismatched with a *MismatchError; st is left as it is in both cases.
func Evaluate(name string, candidate *ir.Node, stringify Stringify, st *store.Store, update bool) (State, error) {
	if stringify == nil {
		stringify = encode.JSON
	}
	serialized, err := stringify(candidate)
	if err != nil {
		return Pending, err
	}
	serialized = strings.TrimRight(serialized, "\n")
	raw := name + serialized
	if update {
		if err := st.PutNamed(name, raw); err != nil {
			return Pending, err
		}
		if debug.Match() {
			debug.Logf("%s: updated\n", name)
		}
		return Recorded, nil
	}
	stored, ok := st.Get(name)
	if !ok {
		if err := st.PutNamed(name, raw); err != nil {
			return Pending, err
		}
		if debug.Match() {
			debug.Logf("%s: recorded\n", name)
		}
		return Recorded, nil
	}
	if stored == raw {
		if debug.Match() {
			debug.Logf("%s: matched\n", name)
		}
		return Matched, nil
	}
	if debug.Match() {
		debug.Logf("%s: mismatch, candidate:\n%s\n", name, serialized)
	}
	return Mismatched, &MismatchError{
		Name:     name,
		Expected: stored[len(name):],
		Actual:   serialized,
	}
}
