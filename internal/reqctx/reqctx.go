// Package reqctx tags the work done for one route visit so its log lines and errors correlate.
package reqctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

type key int

const visitKey key = 0

// Visit describes one route visit of a scrape run
type Visit struct {
	ID        string
	Route     string
	Index     int
	StartTime time.Time
}

// WithVisit returns a context carrying a fresh Visit for route
func WithVisit(ctx context.Context, route string, index int) context.Context {
	return context.WithValue(ctx, visitKey, &Visit{
		ID:        generateID(),
		Route:     route,
		Index:     index,
		StartTime: time.Now(),
	})
}

// FromContext returns the Visit of ctx, or a placeholder when there is none
func FromContext(ctx context.Context) *Visit {
	if v, ok := ctx.Value(visitKey).(*Visit); ok {
		return v
	}
	return &Visit{
		ID:        "unknown",
		StartTime: time.Now(),
	}
}

// Elapsed is the time since the visit started
func (v *Visit) Elapsed() time.Duration {
	return time.Since(v.StartTime)
}

func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// VisitError wraps an error with the visit it happened in
type VisitError struct {
	VisitID string
	Route   string
	Err     error
}

// Error implements the error interface
func (e *VisitError) Error() string {
	return fmt.Sprintf("[%s %s] %v", e.VisitID, e.Route, e.Err)
}

// Unwrap returns the underlying error
func (e *VisitError) Unwrap() error {
	return e.Err
}

// NewVisitError creates a VisitError from ctx
func NewVisitError(ctx context.Context, err error) error {
	v := FromContext(ctx)
	return &VisitError{
		VisitID: v.ID,
		Route:   v.Route,
		Err:     err,
	}
}
