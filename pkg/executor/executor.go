// Package executor issues finalized queries to the ClickHouse HTTP
// interface. It is pure transport: no retries, no inspection of the query
// text, which the rewriter has already validated.
package executor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxErrorBody bounds how much of a database error body is carried in the
// returned error and the logs.
const maxErrorBody = 300

// DatabaseError is a non-2xx response from ClickHouse. The body usually
// carries the server's own explanation (bad column, missing table, ...).
type DatabaseError struct {
	Status int
	Body   string
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database returned HTTP %d: %s", e.Status, e.Body)
}

// Executor posts finalized query text to a single endpoint URL. The endpoint
// already carries credentials as query parameters.
type Executor struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// New builds an Executor. The timeout bounds each request end to end.
func New(endpoint string, timeout time.Duration, logger *zap.Logger) *Executor {
	return &Executor{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Run sends query as the body of one HTTP POST and returns the raw response
// body. Wall-clock duration is logged and exported for observability.
func (e *Executor) Run(ctx context.Context, query string) (string, error) {
	id := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, strings.NewReader(query))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	start := time.Now()
	resp, err := e.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		observeQuery(outcomeTransportError, elapsed)
		e.logger.Warn("query transport failed",
			zap.String("query_id", id),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return "", fmt.Errorf("query transport: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observeQuery(outcomeReadError, elapsed)
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observeQuery(outcomeDatabaseError, elapsed)
		dbErr := &DatabaseError{Status: resp.StatusCode, Body: trimBody(string(body))}
		e.logger.Warn("query rejected by database",
			zap.String("query_id", id),
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", elapsed),
			zap.String("body", dbErr.Body))
		return "", dbErr
	}

	observeQuery(outcomeOK, elapsed)
	e.logger.Info("query executed",
		zap.String("query_id", id),
		zap.String("query", query),
		zap.Duration("elapsed", elapsed),
		zap.Int("response_bytes", len(body)))
	return string(body), nil
}

func trimBody(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
