// Package cliutil holds the tiny stdout/stderr helpers spec §6's CLI
// driver prints through, grounded on the teacher's util.Stdout /
// util.Fatal pair but taking an io.Writer so callers (and tests) never
// touch the real terminal.
package cliutil

import (
	"fmt"
	"io"
	"os"
)

// Printf writes a formatted line to w, matching the teacher's
// single-purpose Stdout helper generalized to an arbitrary writer.
func Printf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
}

// Fatal prints msg to stderr and exits with a nonzero status, matching
// the teacher's util.Fatal save for the exit code: spec §6 requires a
// nonzero code whenever any report has kind ERROR, so unlike the
// teacher (which always exits 0) this exits 1.
func Fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
