package snapshot

import (
	"fmt"
	"runtime"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CallSite locates an assertion: Unit is the package of the test and
// Member the test function.
type CallSite struct {
	Unit   string
	Member string
}

// Resolver finds the call site of an assertion. skip is the number of
// frames above the caller of Resolve to leave out.
type Resolver interface {
	Resolve(skip int) (CallSite, error)
}

type ResolverFunc func(skip int) (CallSite, error)

func (f ResolverFunc) Resolve(skip int) (CallSite, error) {
	return f(skip)
}

// StackResolver resolves to the outermost top level Test function on the
// calling goroutine's stack. Helpers and closures called from a test
// resolve to that test.
type StackResolver struct{}

const maxFrames = 64

func (StackResolver) Resolve(skip int) (CallSite, error) {
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(skip+2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	var (
		site  CallSite
		found bool
	)
	for {
		frame, more := frames.Next()
		if frame.Function == "testing.tRunner" {
			break
		}
		if pkg, fn, ok := splitFuncName(frame.Function); ok && isTestName(fn) {
			site = CallSite{Unit: strings.TrimSuffix(pkg, "_test"), Member: fn}
			found = true
		}
		if !more {
			break
		}
	}
	if !found {
		return CallSite{}, fmt.Errorf("%w: no Test function on the stack", ErrCallSite)
	}
	return site, nil
}

// splitFuncName splits a runtime function name such as
// "example.com/a/b_test.TestX.func1" into the package name "b_test" and
// the top level function "TestX".
func splitFuncName(name string) (pkg, fn string, ok bool) {
	if i := strings.LastIndexByte(name, '/'); i != -1 {
		name = name[i+1:]
	}
	pkg, rest, ok := strings.Cut(name, ".")
	if !ok {
		return "", "", false
	}
	fn, _, _ = strings.Cut(rest, ".")
	return pkg, fn, fn != ""
}

func isTestName(name string) bool {
	rest, ok := strings.CutPrefix(name, "Test")
	if !ok {
		return false
	}
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return !unicode.IsLower(r)
}
