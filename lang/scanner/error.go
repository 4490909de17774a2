package scanner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rekolang/reko/lang/token"
)

// Error is a single scanning error tied to a source position.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e Error) Error() string {
	if e.Pos.Unknown() {
		return e.Msg
	}
	line, col := e.Pos.LineCol()
	return fmt.Sprintf("%d:%d: %s", line, col, e.Msg)
}

// ErrorList collects every error produced during a scan so the caller can
// report them all at once rather than bailing out at the first one, mirroring
// the teacher's scan-to-completion error handling.
type ErrorList []Error

// Add appends an error to the list.
func (el *ErrorList) Add(pos token.Pos, msg string) {
	*el = append(*el, Error{Pos: pos, Msg: msg})
}

// Sort orders the list by position.
func (el ErrorList) Sort() {
	sort.Slice(el, func(i, j int) bool { return el[i].Pos < el[j].Pos })
}

func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (and %d more errors)", el[0].Error(), len(el)-1)
	return sb.String()
}

// Err returns nil if the list is empty, otherwise the list itself as an
// error.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

// Unwrap exposes every collected error for errors.Is/errors.As traversal.
func (el ErrorList) Unwrap() []error {
	errs := make([]error, len(el))
	for i, e := range el {
		errs[i] = e
	}
	return errs
}
