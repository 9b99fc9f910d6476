package preprocessor

import "fmt"

// Status is the decision a Recognizer has reached for the input fed so far.
type Status uint8

const (
	Pending Status = iota
	Accepted
	Rejected
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Recognizer is a small deterministic automaton anchored at the start of the
// text a Racer offers it.
type Recognizer interface {
	Status() Status
	// Feed performs one transition. It is a no-op once the status is terminal.
	Feed(ch byte)
	Reset()
	// Finalize forces a terminal decision at end of input.
	Finalize()
}

// Kind enumerates the recognizers the resolver races, in priority order.
type Kind uint8

const (
	KindInclude Kind = iota
	KindPragmaOnce
	KindLine
)

var kindNames = [...]string{
	KindInclude:    "include",
	KindPragmaOnce: "pragma-once",
	KindLine:       "line",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// New returns a fresh recognizer of this kind.
func (k Kind) New() Recognizer {
	switch k {
	case KindInclude:
		return newDirectiveRecognizer(includeSteps)
	case KindPragmaOnce:
		return newDirectiveRecognizer(pragmaOnceSteps)
	case KindLine:
		return &lineRecognizer{}
	default:
		panic(fmt.Sprintf("preprocessor: unknown recognizer %s", k))
	}
}

// ---------------- Directive recognizer ----------------

// step is one position of a directive pattern. A step either matches a
// literal byte, optionally after any number of blanks, or requires a blank.
type step struct {
	ch        byte
	skipBlank bool
	blank     bool
}

// State is the progress of a directive recognizer: the index of the next
// step to match, or one of the two terminal states.
type State int

const (
	DeadState   State = -2
	AcceptState State = -1
)

// keyword builds the steps matching s literally.
func keyword(s string) []step {
	steps := make([]step, len(s))
	for i := 0; i < len(s); i++ {
		steps[i] = step{ch: s[i]}
	}
	return steps
}

func join(parts ...[]step) []step {
	var steps []step
	for _, p := range parts {
		steps = append(steps, p...)
	}
	return steps
}

// ^[ \t]*#[ \t]*include
var includeSteps = join(
	[]step{{ch: '#', skipBlank: true}, {ch: 'i', skipBlank: true}},
	keyword("nclude"),
)

// ^[ \t]*#[ \t]*pragma[ \t]+once
var pragmaOnceSteps = join(
	[]step{{ch: '#', skipBlank: true}, {ch: 'p', skipBlank: true}},
	keyword("ragma"),
	[]step{{blank: true}, {ch: 'o', skipBlank: true}},
	keyword("nce"),
)

type directiveRecognizer struct {
	steps []step
	state State
}

func newDirectiveRecognizer(steps []step) *directiveRecognizer {
	return &directiveRecognizer{steps: steps}
}

func (d *directiveRecognizer) Status() Status {
	switch d.state {
	case AcceptState:
		return Accepted
	case DeadState:
		return Rejected
	default:
		return Pending
	}
}

func (d *directiveRecognizer) Feed(ch byte) {
	if d.state < 0 {
		return
	}
	st := d.steps[d.state]
	switch {
	case st.blank && isBlank(ch):
		d.advance()
	case st.blank:
		d.state = DeadState
	case ch == st.ch:
		d.advance()
	case st.skipBlank && isBlank(ch):
		// stay
	default:
		d.state = DeadState
	}
}

func (d *directiveRecognizer) advance() {
	d.state++
	if int(d.state) == len(d.steps) {
		d.state = AcceptState
	}
}

func (d *directiveRecognizer) Reset() { d.state = 0 }

func (d *directiveRecognizer) Finalize() {
	if d.state >= 0 {
		d.state = DeadState
	}
}

// ---------------- Line recognizer ----------------

// lineRecognizer accepts at the first line terminator. It never rejects, so
// the racer always makes progress.
type lineRecognizer struct {
	status Status
}

func (l *lineRecognizer) Status() Status { return l.status }

func (l *lineRecognizer) Feed(ch byte) {
	if l.status == Pending && isLineTerminator(ch) {
		l.status = Accepted
	}
}

func (l *lineRecognizer) Reset() { l.status = Pending }

func (l *lineRecognizer) Finalize() { l.status = Accepted }
