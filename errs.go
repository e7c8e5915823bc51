package snapshot

import (
	"errors"
	"fmt"
	"os"

	"github.com/signadot/snapshot/ident"
	"github.com/signadot/snapshot/ir"
	"github.com/signadot/snapshot/redact"
	"github.com/signadot/snapshot/store"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	ErrMismatch  = errors.New("snapshot mismatch")
	ErrDuplicate = errors.New("snapshot evaluated more than once")
	ErrCallSite  = errors.New("cannot resolve snapshot call site")
	ErrNoRun     = errors.New("no snapshot run, call snapshot.Main from TestMain")
	ErrConfig    = errors.New("snapshot config error")

	ErrCycle      = ir.ErrCycle
	ErrRedactType = redact.ErrType
	ErrStoreIO    = store.ErrIO
	ErrIdentifier = ident.ErrInvalid
)

// MismatchError reports a serialized value which differs from the
// recorded one.
type MismatchError struct {
	Name     string
	Expected string
	Actual   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s\n%s\n%s\n%s\n%s",
		ErrMismatch, e.Name,
		labels.expected, e.Expected,
		labels.actual, e.Actual)
}

func (e *MismatchError) Is(target error) bool {
	return target == ErrMismatch
}

type mismatchLabels struct {
	expected, actual string
}

var labels = newLabels(isatty.IsTerminal(os.Stderr.Fd()))

func newLabels(colored bool) mismatchLabels {
	exp := color.New(color.FgGreen, color.Bold)
	act := color.New(color.FgRed, color.Bold)
	if colored {
		exp.EnableColor()
		act.EnableColor()
	} else {
		exp.DisableColor()
		act.DisableColor()
	}
	return mismatchLabels{
		expected: exp.Sprint("expected:"),
		actual:   act.Sprint("actual:"),
	}
}
