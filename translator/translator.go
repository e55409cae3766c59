package translator

import (
	"context"
	"errors"
)

var (
	ErrTimeout           = errors.New("GENERATION_TIMEOUT")
	ErrGeneration        = errors.New("GENERATION_FAILED")
	ErrMissingCredential = errors.New("MISSING_CREDENTIAL")
	ErrUnknownProvider   = errors.New("UNKNOWN_PROVIDER")
)

// Translator turns one natural-language query into the raw output reported by
// the harness.
type Translator interface {
	Translate(ctx context.Context, query string) (Result, error)
	Name() string
}

// Result is what a successful call produced. It is one of Completed, Blocked
// or Empty.
type Result interface {
	result()
}

// Completed carries the generated text as returned, without post-processing.
type Completed struct {
	Text string
}

// Blocked means the service refused to generate for the given reason.
type Blocked struct {
	Reason string
}

// Empty means the service answered without any candidate.
type Empty struct{}

func (Completed) result() {}
func (Blocked) result()   {}
func (Empty) result()     {}
