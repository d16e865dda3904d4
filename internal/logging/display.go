// Package logging generates session result reports.
// This file provides the console display shown when a session finishes.

package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sonicmatch/soundcheck/internal/session"
)

// DisplayResults outputs the session summary to the console after the
// interactive test finishes.
func DisplayResults(w io.Writer, rec session.Record) {
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "RESULT: %s\n", rec.Analysis.Name)
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintln(w)

	writePreferenceTable(w, rec.Analysis)
	writeSignature(w, rec.Analysis)

	tips := GenerateListeningTips(&rec)
	if len(tips) > 0 {
		writeSection(w, "Tips")
		for _, tip := range tips {
			fmt.Fprintf(w, "  - %s\n", tip.Message)
		}
		fmt.Fprintln(w)
	}
}
