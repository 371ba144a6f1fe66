// Package extract calls the external model and turns its probabilistic
// text output into structurally valid JSON. Transient call failures and
// malformed wrapping are the only faults it recovers from; everything else
// is the caller's problem.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// maxAttempts is the total number of model calls per request, including
// the first.
const maxAttempts = 3

// defaultRetryDelay is the pause between attempts.
const defaultRetryDelay = time.Second

// Generator abstracts the external model call so tests can inject fakes.
type Generator interface {
	Generate(ctx context.Context, instruction string, data []byte, mimeType string) (string, error)
}

// FailedError is returned after every attempt has been exhausted. It
// carries the last underlying error.
type FailedError struct {
	Attempts int
	Err      error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("extraction failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *FailedError) Unwrap() error {
	return e.Err
}

// Invoker runs the bounded-retry extraction loop.
type Invoker struct {
	generator  Generator
	logger     *slog.Logger
	retryDelay time.Duration
}

// NewInvoker creates an Invoker around a Generator.
func NewInvoker(generator Generator, logger *slog.Logger) *Invoker {
	return &Invoker{
		generator:  generator,
		logger:     logger.With("component", "extract"),
		retryDelay: defaultRetryDelay,
	}
}

// Extract sends the instruction and document payload to the model and
// returns the repaired response as raw JSON. A parse failure counts as a
// call failure for retry purposes. The context deadline bounds the loop in
// aggregate; binding the JSON to a concrete record is the caller's
// responsibility and is never retried.
func (iv *Invoker) Extract(ctx context.Context, instruction string, data []byte, mimeType string) (json.RawMessage, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := iv.generator.Generate(ctx, instruction, data, mimeType)
		if err == nil {
			repaired := RepairJSON(text)
			var probe interface{}
			if parseErr := json.Unmarshal([]byte(repaired), &probe); parseErr == nil {
				return json.RawMessage(repaired), nil
			} else {
				err = fmt.Errorf("model returned invalid JSON: %w", parseErr)
			}
		}

		lastErr = err
		iv.logger.Warn("Extraction attempt failed", "attempt", attempt, "error", err)

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, &FailedError{Attempts: attempt, Err: ctx.Err()}
			case <-time.After(iv.retryDelay):
			}
		}
	}

	return nil, &FailedError{Attempts: maxAttempts, Err: lastErr}
}

// controlChars matches the non-printable codepoints that break strict JSON
// parsers: C0 controls except tab, newline, and carriage return, plus DEL.
var controlChars = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")

// RepairJSON strips the wrapping the model occasionally adds around its
// output: a fenced code block, a leading "json" language tag, and invisible
// control characters. Clean JSON passes through unchanged.
func RepairJSON(s string) string {
	txt := strings.TrimSpace(s)

	if strings.HasPrefix(txt, "```") {
		if parts := strings.Split(txt, "```"); len(parts) >= 2 {
			txt = parts[1]
		}
	}
	txt = strings.TrimSpace(txt)
	if strings.HasPrefix(txt, "json") {
		txt = txt[4:]
	}

	txt = controlChars.ReplaceAllString(txt, "")
	return strings.TrimSpace(txt)
}
