// Package diagnostics renders VM state and errors for a human: the
// engine's internal-error snapshots, a structured stop/result report
// for the command-line front end, and the duration/size formatting
// those reports want. It owns none of the engine's error taxonomy
// (that's vmerr's job) — it only formats what vmerr and engine.Engine
// already expose.
package diagnostics

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"rvmcore/internal/engine"
	"rvmcore/internal/vmerr"
)

// Snapshot captures an engine's counters alongside a label, for an
// Internal error raised mid-dispatch. It delegates the actual
// pretty-printing to vmerr.InternalSnapshot so both callers (the
// dispatcher itself and a host catching a panic) produce the same
// shape of report.
func Snapshot(label string, eng *engine.Engine) *vmerr.Error {
	return vmerr.InternalSnapshot(label, eng.Stats())
}

// Report writes a one-error, human-readable diagnostic to w: the
// error's message, its stable Kind if it carries one, and the causal
// chain vmerr.Wrap attaches, one cause per line.
func Report(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
	if k, ok := Kind(err); ok {
		fmt.Fprintf(w, "kind: %s\n", k)
	}
	for cause := asUnwrappable(err); cause != nil; cause = asUnwrappable(cause) {
		fmt.Fprintf(w, "caused by: %v\n", cause)
	}
}

// Kind recovers the originating *vmerr.Error's Kind by walking err's
// Unwrap chain, so a caller several layers of fmt.Errorf("...: %w")
// away from the original vmerr.Error can still report it.
func Kind(err error) (vmerr.Kind, bool) {
	for e := err; e != nil; e = asUnwrappable(e) {
		if ve, ok := e.(*vmerr.Error); ok {
			return ve.Kind, true
		}
	}
	return "", false
}

func asUnwrappable(err error) error {
	u, ok := err.(interface{ Unwrap() error })
	if !ok {
		return nil
	}
	return u.Unwrap()
}

// Elapsed renders a duration the way the command-line front end's
// evaluation report does, in humanize's relative-time phrasing
// ("2 seconds", "3 minutes") rather than Go's raw "1.234ms"; any
// duration under one second renders as "now".
func Elapsed(d time.Duration) string {
	now := time.Now()
	return humanize.RelTime(now, now.Add(d), "", "")
}
