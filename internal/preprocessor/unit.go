package preprocessor

import (
	"io"
	"strings"
)

// PragmaOnce is the marker emitted for the first "#pragma once" of a unit.
const PragmaOnce = "#pragma once"

// Unit accumulates the output of one end-to-end expansion. It is shared by
// every resolver of that expansion and owned by a single goroutine.
type Unit struct {
	chunks     []string
	size       int
	expanded   map[string]bool
	pragmaOnce bool
}

func NewUnit() *Unit {
	return &Unit{expanded: map[string]bool{}}
}

func (u *Unit) Emit(text string) {
	if text == "" {
		return
	}
	u.chunks = append(u.chunks, text)
	u.size += len(text)
}

// EmitPragmaOnce emits the marker unless an earlier one was emitted, and
// reports whether it did.
func (u *Unit) EmitPragmaOnce() bool {
	if u.pragmaOnce {
		return false
	}
	u.pragmaOnce = true
	u.Emit(PragmaOnce)
	return true
}

func (u *Unit) MarkExpanded(module string) { u.expanded[module] = true }

func (u *Unit) IsExpanded(module string) bool { return u.expanded[module] }

// Len is the number of bytes emitted so far.
func (u *Unit) Len() int { return u.size }

// EndsWithLine reports whether the output so far ends with a line terminator.
func (u *Unit) EndsWithLine() bool {
	if len(u.chunks) == 0 {
		return false
	}
	last := u.chunks[len(u.chunks)-1]
	return isLineTerminator(last[len(last)-1])
}

func (u *Unit) String() string {
	var b strings.Builder
	b.Grow(u.size)
	for _, c := range u.chunks {
		b.WriteString(c)
	}
	return b.String()
}

func (u *Unit) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, u.String())
	return int64(n), err
}
