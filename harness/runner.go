package harness

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/imkonsowa/nearme-nli/logger"
	"github.com/imkonsowa/nearme-nli/models"
	"github.com/imkonsowa/nearme-nli/translator"
	"github.com/imkonsowa/nearme-nli/validation"
)

type Summary struct {
	Total     int `json:"total"`
	Run       int `json:"run"`
	Skipped   int `json:"skipped"`
	Completed int `json:"completed"`
	Blocked   int `json:"blocked"`
	Empty     int `json:"empty"`
	Timeouts  int `json:"timeouts"`
	Errors    int `json:"errors"`
	Valid     int `json:"valid"`
	Invalid   int `json:"invalid"`
}

func (s Summary) fields() map[string]interface{} {
	return map[string]interface{}{
		"total":     s.Total,
		"run":       s.Run,
		"skipped":   s.Skipped,
		"completed": s.Completed,
		"blocked":   s.Blocked,
		"empty":     s.Empty,
		"timeouts":  s.Timeouts,
		"errors":    s.Errors,
		"valid":     s.Valid,
		"invalid":   s.Invalid,
	}
}

type Option func(*Runner)

// WithValidator checks every completion against the schema and table of v.
func WithValidator(v *validation.Validator) Option {
	return func(r *Runner) {
		r.validator = v
	}
}

// WithSource names the fixture file in the report header.
func WithSource(path string) Option {
	return func(r *Runner) {
		r.source = path
	}
}

func WithMode(mode models.OutputMode) Option {
	return func(r *Runner) {
		r.mode = mode
	}
}

// Runner sends fixture queries to a translator one at a time and prints each
// result.
type Runner struct {
	translator translator.Translator
	validator  *validation.Validator
	out        io.Writer
	logger     logger.Logger
	source     string
	mode       models.OutputMode
}

func NewRunner(t translator.Translator, out io.Writer, log logger.Logger, opts ...Option) *Runner {
	r := &Runner{
		translator: t,
		out:        out,
		logger:     log,
		source:     "test.json",
		mode:       models.ModeEnvelope,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run processes the fixtures in order. A failing query is reported inline and
// never stops the run.
func (r *Runner) Run(ctx context.Context, fixtures []Fixture) Summary {
	total := len(fixtures)
	summary := Summary{Total: total}

	printHeader(r.out, r.translator.Name(), r.mode, r.source, total)

	for i, f := range fixtures {
		n := i + 1
		if reason, skip := f.SkipReason(); skip {
			summary.Skipped++
			printSkipped(r.out, n, total, reason)
			r.logger.Warn("skipping test case", map[string]interface{}{"case": n, "reason": reason})
			continue
		}

		summary.Run++
		printCase(r.out, n, total, f)
		r.runOne(ctx, n, *f.Input, &summary)
		fmt.Fprintln(r.out, separator)
	}

	printFooter(r.out)
	r.logger.Info("manual test run complete", summary.fields())

	return summary
}

func (r *Runner) runOne(ctx context.Context, n int, query string, summary *Summary) {
	res, err := r.translator.Translate(ctx, query)
	if err != nil {
		fields := map[string]interface{}{"case": n}
		if errors.Is(err, translator.ErrTimeout) {
			summary.Timeouts++
			printActual(r.out, fmt.Sprintf("TIMEOUT: %v", err))
			r.logger.WithError(err).Warn("translation timed out", fields)

			return
		}

		summary.Errors++
		printActual(r.out, "EXCEPTION: "+errorKind(err))
		printError(r.out, err)
		r.logger.WithError(err).Error("translation failed", fields)

		return
	}

	switch res := res.(type) {
	case translator.Completed:
		summary.Completed++
		printActual(r.out, res.Text)
		r.check(res.Text, summary)
	case translator.Blocked:
		summary.Blocked++
		printActual(r.out, "PROMPT BLOCKED: "+res.Reason)
	case translator.Empty:
		summary.Empty++
		printActual(r.out, "NO CANDIDATES")
	default:
		summary.Errors++
		printActual(r.out, fmt.Sprintf("EXCEPTION: unexpected result %T", res))
	}
}

var knownErrors = []error{
	translator.ErrGeneration,
	translator.ErrMissingCredential,
	translator.ErrUnknownProvider,
	models.ErrMalformedFilter,
}

// errorKind names a failure on the Actual line. The message goes on the Error
// line.
func errorKind(err error) string {
	for _, known := range knownErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return fmt.Sprintf("%T", err)
}

func (r *Runner) check(text string, summary *Summary) {
	if r.validator == nil {
		return
	}

	report := r.validator.Validate(text)
	if report.Valid {
		summary.Valid++
	} else {
		summary.Invalid++
	}
	printSchema(r.out, report.String())
}
