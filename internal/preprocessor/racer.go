package preprocessor

import (
	stderrors "errors"

	"github.com/fwessels/amalgamate/internal/errors"
)

// ErrScanDeadlock is returned when every recognizer has rejected the pending
// input. The line recognizer never rejects, so this means a broken rule set
// rather than malformed input.
var ErrScanDeadlock = stderrors.New("scan deadlock: no recognizer pending or accepted")

// Action is invoked with the text matched by a rule. It may read further
// from the cursor; scanning resumes wherever it leaves the cursor.
type Action func(text string) error

type rule struct {
	recognizer Recognizer
	action     Action
	// overrun counts bytes consumed after the recognizer accepted.
	overrun int
}

// Racer feeds one input to several recognizers in lockstep and dispatches
// the action of the first accepting rule in registration order.
type Racer struct {
	rules []*rule
}

func NewRacer() *Racer {
	return &Racer{}
}

// Add registers a rule. Earlier rules take priority.
func (r *Racer) Add(rec Recognizer, action Action) {
	r.rules = append(r.rules, &rule{recognizer: rec, action: action})
}

func (r *Racer) reset() {
	for _, u := range r.rules {
		u.recognizer.Reset()
		u.overrun = 0
	}
}

// Run scans the cursor to the end of its text.
func (r *Racer) Run(cur *Cursor) error {
	r.reset()
	start := cur.Pos()
	for {
		ch, ok := cur.Next()
		if !ok {
			if cur.Pos() == start {
				return nil
			}
			for _, u := range r.rules {
				if u.recognizer.Status() == Pending {
					u.recognizer.Finalize()
				}
			}
		} else {
			for _, u := range r.rules {
				switch u.recognizer.Status() {
				case Pending:
					u.recognizer.Feed(ch)
				case Accepted:
					u.overrun++
				}
			}
		}

		winner, err := r.pick()
		if err == nil && winner == nil && !ok {
			err = ErrScanDeadlock
		}
		if err != nil {
			return errors.WithStackTraceAndPrefix(err, "at offset %d", cur.Pos())
		}
		if winner == nil {
			continue
		}

		cur.Back(winner.overrun)
		text := cur.Slice(start, cur.Pos())
		r.reset()
		if err := winner.action(text); err != nil {
			return err
		}
		start = cur.Pos()
	}
}

// pick returns the rule to dispatch, or nil when a pending rule of higher
// priority than every accepted one still needs input.
func (r *Racer) pick() (*rule, error) {
	for _, u := range r.rules {
		switch u.recognizer.Status() {
		case Accepted:
			return u, nil
		case Pending:
			return nil, nil
		}
	}
	return nil, ErrScanDeadlock
}
