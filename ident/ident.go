// Package ident names snapshots.
//
// An identifier renders as
//
//	Unit "." Member ["[" Scenario "]"] "="
//
// where Unit may itself contain dots (a qualified unit name) and Member
// may not. A stored entry is the identifier immediately followed by the
// serialized value, so the identifier is also what starts an entry in a
// snapshot file.
package ident

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalid = errors.New("invalid snapshot identifier")

// Identifier names one snapshot.
type Identifier struct {
	Unit     string
	Member   string
	Scenario string
}

func (id Identifier) String() string {
	return Render(id.Unit, id.Member, id.Scenario)
}

// Check reports an error wrapping ErrInvalid when id does not render to
// a name that Parse reads back as id. Unit and Member must be non-empty
// and free of whitespace, quotes, brackets and '='; Member also has no
// dots. Scenario may not contain ']' or a newline.
func (id Identifier) Check() error {
	name := id.String()
	got, ok := Parse(name)
	if ok && got == id {
		return nil
	}
	return fmt.Errorf("%w: %q (unit %q, member %q, scenario %q)", ErrInvalid, name, id.Unit, id.Member, id.Scenario)
}

// Render renders the identifier of unit, member and optional scenario.
func Render(unit, member, scenario string) string {
	var sb strings.Builder
	sb.Grow(len(unit) + len(member) + len(scenario) + 4)
	sb.WriteString(unit)
	sb.WriteByte('.')
	sb.WriteString(member)
	if scenario != "" {
		sb.WriteByte('[')
		sb.WriteString(scenario)
		sb.WriteByte(']')
	}
	sb.WriteByte('=')
	return sb.String()
}

var identRE = regexp.MustCompile(`^([^\s="\[\]]+)\.([^\s="\[\].]+)(?:\[([^\]\n]*)\])?=`)

// Split splits a raw entry into its identifier and serialized value.
// ok is false if raw does not begin with an identifier.
func Split(raw string) (name, value string, ok bool) {
	loc := identRE.FindStringIndex(raw)
	if loc == nil {
		return "", "", false
	}
	return raw[:loc[1]], raw[loc[1]:], true
}

// Parse parses the identifier at the start of raw.
func Parse(raw string) (Identifier, bool) {
	m := identRE.FindStringSubmatch(raw)
	if m == nil {
		return Identifier{}, false
	}
	return Identifier{Unit: m[1], Member: m[2], Scenario: m[3]}, true
}

// IsStart reports whether line begins with an identifier.
func IsStart(line string) bool {
	return identRE.MatchString(line)
}
