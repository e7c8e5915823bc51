package snapshot

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signadot/snapshot/ir"
	"github.com/signadot/snapshot/store"
)

func TestEvaluate(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "pkg.snap"))
	name := "pkg.Cls.method="
	obj := ir.FromMap(map[string]*ir.Node{"b": ir.FromInt(2), "a": ir.FromInt(1)})

	state, err := Evaluate(name, obj, nil, st, false)
	if err != nil || state != Recorded {
		t.Fatalf("first evaluation: %s, %v", state, err)
	}
	raw, _ := st.Get(name)
	if want := "pkg.Cls.method={\n  \"a\": 1,\n  \"b\": 2\n}"; raw != want {
		t.Errorf("stored %q, want %q", raw, want)
	}

	state, err = Evaluate(name, obj.Clone(), nil, st, false)
	if err != nil || state != Matched {
		t.Fatalf("second evaluation: %s, %v", state, err)
	}

	changed := ir.FromMap(map[string]*ir.Node{"a": ir.FromInt(1), "b": ir.FromInt(3)})
	state, err = Evaluate(name, changed, nil, st, false)
	if state != Mismatched || !errors.Is(err, ErrMismatch) {
		t.Fatalf("changed value: %s, %v", state, err)
	}
	var mm *MismatchError
	if !errors.As(err, &mm) {
		t.Fatalf("got %T, want *MismatchError", err)
	}
	if mm.Expected != "{\n  \"a\": 1,\n  \"b\": 2\n}" || mm.Actual != "{\n  \"a\": 1,\n  \"b\": 3\n}" {
		t.Errorf("mismatch texts: %q %q", mm.Expected, mm.Actual)
	}
	if !strings.Contains(err.Error(), mm.Expected) || !strings.Contains(err.Error(), mm.Actual) {
		t.Errorf("error text lacks expected or actual:\n%s", err)
	}
	if after, _ := st.Get(name); after != raw {
		t.Errorf("mismatch modified the store: %q", after)
	}

	state, err = Evaluate(name, changed, nil, st, true)
	if err != nil || state != Recorded {
		t.Fatalf("update: %s, %v", state, err)
	}
	if v, _ := st.Value(name); v != mm.Actual {
		t.Errorf("update stored %q", v)
	}
	if st.Len() != 1 {
		t.Errorf("update added an entry: %v", st.Names())
	}
}

func TestEvaluateStringify(t *testing.T) {
	st := store.New("unused.snap")
	trailing := func(*ir.Node) (string, error) { return "value\n\n", nil }
	if _, err := Evaluate("u.T=", ir.Null(), trailing, st, false); err != nil {
		t.Fatal(err)
	}
	if raw, _ := st.Get("u.T="); raw != "u.T=value" {
		t.Errorf("trailing newlines kept: %q", raw)
	}

	boom := errors.New("boom")
	failing := func(*ir.Node) (string, error) { return "", boom }
	state, err := Evaluate("u.U=", ir.Null(), failing, st, false)
	if state != Pending || !errors.Is(err, boom) {
		t.Errorf("got %s, %v", state, err)
	}
	if _, ok := st.Get("u.U="); ok {
		t.Error("failed stringify stored an entry")
	}
}

func TestEvaluateEntryMustReadBack(t *testing.T) {
	st := store.New("unused.snap")
	if _, err := Evaluate("u.T[x]=y]=", ir.FromInt(1), nil, st, false); !errors.Is(err, store.ErrEntry) {
		t.Errorf("name that reads back shorter: got %v, want ErrEntry", err)
	}
	lookalike := func(*ir.Node) (string, error) { return "first\nu.Other=2", nil }
	if _, err := Evaluate("u.T=", ir.Null(), lookalike, st, true); !errors.Is(err, store.ErrEntry) {
		t.Errorf("value with an entry line: got %v, want ErrEntry", err)
	}
	if st.Len() != 0 {
		t.Errorf("rejected entries stored: %v", st.Names())
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		Pending:    "pending",
		Matched:    "matched",
		Mismatched: "mismatched",
		Recorded:   "recorded",
		State(99):  "unknown",
	} {
		if s.String() != want {
			t.Errorf("%d.String() = %q", s, s.String())
		}
	}
}

func TestMismatchLabels(t *testing.T) {
	plain := newLabels(false)
	if plain.expected != "expected:" || plain.actual != "actual:" {
		t.Errorf("plain labels: %q %q", plain.expected, plain.actual)
	}
	colored := newLabels(true)
	if !strings.Contains(colored.expected, "\x1b[") {
		t.Errorf("colored label has no escape: %q", colored.expected)
	}
}
