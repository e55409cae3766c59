package harness

import (
	"fmt"
	"io"
	"strings"

	"github.com/imkonsowa/nearme-nli/models"
)

var separator = strings.Repeat("-", 30)

func printHeader(w io.Writer, name string, mode models.OutputMode, source string, total int) {
	fmt.Fprintf(w, "\nRunning manual NLI tests using model: %s\n", name)
	if mode == models.ModeEnvelope {
		fmt.Fprintf(w, "Output mode: %s ('current' and 'saved' structure)\n\n", mode)
	} else {
		fmt.Fprintf(w, "Output mode: %s (filter object only)\n\n", mode)
	}
	fmt.Fprintf(w, "Loading %d test cases from '%s'.\n\n", total, source)
	fmt.Fprintln(w, "--- Output Format ---")
	fmt.Fprintln(w, "Input:      'User Query'")
	fmt.Fprintln(w, "Actual:     Raw output received from the translator")
	fmt.Fprintln(w, "---------------------")
	fmt.Fprintln(w)
}

func printSkipped(w io.Writer, i, total int, reason string) {
	fmt.Fprintf(w, "--- Skipping test case %d/%d ---\n", i, total)
	fmt.Fprintf(w, "Reason: %s\n", reason)
	fmt.Fprintln(w, separator)
}

func printCase(w io.Writer, i, total int, f Fixture) {
	fmt.Fprintf(w, "--- Test %d/%d ---\n", i, total)
	fmt.Fprintf(w, "Input:      '%s'\n", *f.Input)
	fmt.Fprintf(w, "Description: %s\n", f.DescriptionText())
	if expected, ok := f.ExpectedText(); ok {
		fmt.Fprintf(w, "Expected:   %s\n", expected)
	}
}

func printActual(w io.Writer, actual string) {
	fmt.Fprintf(w, "Actual:     %s\n", actual)
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error:      %v\n", err)
}

func printSchema(w io.Writer, report string) {
	fmt.Fprintf(w, "Schema:     %s\n", report)
}

func printFooter(w io.Writer) {
	fmt.Fprintln(w, "\n--- Manual Test Run Complete ---")
}

// ReportCannotRun tells the user why no query was sent.
func ReportCannotRun(w io.Writer, err error) {
	fmt.Fprintln(w, "\nCannot run tests because the translator could not be configured.")
	fmt.Fprintf(w, "Please fix the setup error and try again: %v\n", err)
}
