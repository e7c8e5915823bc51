package snapshot

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/signadot/snapshot/debug"
	"github.com/signadot/snapshot/store"
)

// Run tracks the snapshots evaluated by one test binary. It owns one
// store per unit, loaded on first use and written by End.
type Run struct {
	cfg *Config

	mu       sync.Mutex
	stores   map[string]*store.Store
	recorded map[string]bool
}

func NewRun(opts ...Option) (*Run, error) {
	cfg, err := LoadConfig(opts...)
	if err != nil {
		return nil, err
	}
	if debug.Run() {
		debug.Logf("run: basePath=%s update=%t config=%q\n", cfg.BasePath, cfg.Update, cfg.ConfigFile)
	}
	return &Run{
		cfg:      cfg,
		stores:   map[string]*store.Store{},
		recorded: map[string]bool{},
	}, nil
}

// Config returns the configuration of r.
func (r *Run) Config() Config {
	return *r.cfg
}

// Begin loads the store of the calling unit.
func (r *Run) Begin() error {
	site, err := r.cfg.Resolver.Resolve(1)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err = r.storeFor(site.Unit)
	return err
}

func (r *Run) storeFor(unit string) (*store.Store, error) {
	if st, ok := r.stores[unit]; ok {
		return st, nil
	}
	st, err := store.Load(store.PathFor(r.cfg.BasePath, unit))
	if err != nil {
		return nil, err
	}
	if debug.Run() {
		debug.Logf("run: unit %s uses %s\n", unit, st.Path())
	}
	r.stores[unit] = st
	return st, nil
}

// record adds name to the evaluated identifiers.
func (r *Run) record(name string) error {
	if r.recorded[name] {
		return fmt.Errorf("%w: %s, give each assertion its own scenario", ErrDuplicate, name)
	}
	r.recorded[name] = true
	return nil
}

// Expect starts an assertion on values for the calling test.
func (r *Run) Expect(tb testing.TB, values ...any) *Assertion {
	if tb != nil {
		tb.Helper()
	}
	return r.newAssertion(tb, "", values)
}

// ExpectScenario is Expect with a scenario label, for tests making more
// than one assertion.
func (r *Run) ExpectScenario(tb testing.TB, scenario string, values ...any) *Assertion {
	if tb != nil {
		tb.Helper()
	}
	return r.newAssertion(tb, scenario, values)
}

func (r *Run) newAssertion(tb testing.TB, scenario string, values []any) *Assertion {
	a := &Assertion{
		run:      r,
		tb:       tb,
		scenario: scenario,
		values:   values,
	}
	a.site, a.siteErr = r.cfg.Resolver.Resolve(2)
	return a
}

// Unused returns the stored names of unit that were not evaluated.
func (r *Run) Unused(unit string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.stores[unit]
	if !ok {
		return nil
	}
	return r.unused(st)
}

// unused returns the names of the entries of st which contain none of
// the recorded identifiers.
func (r *Run) unused(st *store.Store) []string {
	var res []string
	for _, name := range st.Names() {
		raw, _ := st.Get(name)
		if !r.used(name, raw) {
			res = append(res, name)
		}
	}
	return res
}

func (r *Run) used(name, raw string) bool {
	if r.recorded[name] {
		return true
	}
	for id := range r.recorded {
		if strings.Contains(raw, id) {
			return true
		}
	}
	return false
}

// End writes every changed store and warns about stored snapshots that
// were not evaluated. Unused snapshots never make End fail.
func (r *Run) End() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for _, unit := range slices.Sorted(maps.Keys(r.stores)) {
		st := r.stores[unit]
		if err := st.Flush(); err != nil {
			errs = append(errs, err)
			continue
		}
		unused := r.unused(st)
		if debug.Run() {
			debug.Logf("run: %s has %d entries, unused: %s\n", st.Path(), st.Len(), unused)
		}
		if len(unused) == 0 {
			continue
		}
		r.cfg.Logger.Warn("unused snapshot",
			"file", st.Path(),
			"names", unused,
			"hint", "delete the file and rerun the tests to regenerate it")
	}
	return errors.Join(errs...)
}

var (
	defaultMu  sync.Mutex
	defaultRun *Run
)

// Default returns the run installed by Main, or nil.
func Default() *Run {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultRun
}

func setDefault(r *Run) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRun = r
}

// Main runs the tests of m inside a Run, which the package level Expect
// functions use. It returns the exit code for os.Exit.
func Main(m *testing.M, opts ...Option) int {
	r, err := NewRun(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "snapshot: %v\n", err)
		return 1
	}
	if err := r.Begin(); err != nil {
		fmt.Fprintf(os.Stderr, "snapshot: %v\n", err)
		return 1
	}
	setDefault(r)
	defer setDefault(nil)
	code := m.Run()
	if err := r.End(); err != nil {
		r.cfg.Logger.Error("snapshot files not written", "error", err)
		if code == 0 {
			code = 1
		}
	}
	return code
}

// Expect is Run.Expect on the run installed by Main.
func Expect(tb testing.TB, values ...any) *Assertion {
	if tb != nil {
		tb.Helper()
	}
	r := Default()
	if r == nil {
		return &Assertion{tb: tb, values: values, siteErr: ErrNoRun}
	}
	return r.newAssertion(tb, "", values)
}

// ExpectScenario is Run.ExpectScenario on the run installed by Main.
func ExpectScenario(tb testing.TB, scenario string, values ...any) *Assertion {
	if tb != nil {
		tb.Helper()
	}
	r := Default()
	if r == nil {
		return &Assertion{tb: tb, scenario: scenario, values: values, siteErr: ErrNoRun}
	}
	return r.newAssertion(tb, scenario, values)
}
