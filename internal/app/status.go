package app

import "time"

// TransientTTL is how long a transient status message stays visible
const TransientTTL = 3 * time.Second

// Status is the editor's user-facing message line. Transient messages
// auto-dismiss after TransientTTL; persistent ones stay until replaced.
type Status struct {
	text      string
	transient bool
	shownAt   time.Time
}

func (e *Editor) setTransient(text string) {
	e.status = Status{text: text, transient: true, shownAt: time.Now()}
}

func (e *Editor) setPersistent(text string) {
	e.status = Status{text: text}
}

// StatusText returns the current message, or "" once a transient message
// has expired.
func (e *Editor) StatusText() string {
	if e.status.transient && time.Since(e.status.shownAt) > TransientTTL {
		return ""
	}
	return e.status.text
}
