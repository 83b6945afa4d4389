package ollama

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/noteground/noteground/internal/core/domain"
	"github.com/noteground/noteground/internal/infrastructure/resilience"
)

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "ollama status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("ollama %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("ollama %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

// TimeoutError marks expiry of the adapter's own per-call deadline, as
// opposed to caller cancellation. Only the former is worth a retry.
type TimeoutError struct {
	Operation string
	Limit     time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("ollama %s timed out after %s", e.Operation, e.Limit)
}

// ResilientGenerator wraps the raw client with the backend's retry/backoff
// policy and a per-call timeout. It owns all transient-fault handling; a
// malformed-but-successful response is passed through untouched for the
// parser to judge.
type ResilientGenerator struct {
	client   *Client
	executor *resilience.Executor
	timeout  time.Duration
}

func NewResilientGenerator(client *Client, cfg resilience.Config, timeout time.Duration) *ResilientGenerator {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ResilientGenerator{
		client:   client,
		executor: resilience.NewExecutor("ollama.generate", cfg, classifyGenerationError),
		timeout:  timeout,
	}
}

func (g *ResilientGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	var out string
	err := g.executor.Execute(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		text, err := g.client.Generate(callCtx, model, prompt)
		if err != nil {
			// Distinguish our deadline from caller cancellation: the former
			// aborts only the in-flight request and may be retried.
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return &TimeoutError{Operation: "generate", Limit: g.timeout}
			}
			return err
		}
		out = text
		return nil
	})
	if err != nil {
		return "", wrapTemporaryIfNeeded("generate", err)
	}
	return out, nil
}

func classifyGenerationError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if isRetryableHTTPStatus(statusErr.StatusCode) {
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		}
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}

func wrapTemporaryIfNeeded(operation string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}

	class := classifyGenerationError(err)
	if class.Retryable || resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}

func isRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
