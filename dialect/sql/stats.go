package sql

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"
)

// FieldStats holds the invocation statistics of one relation field.
type FieldStats struct {
	Invocations int64
	Errors      int64
	Slow        int64
	Duration    time.Duration
}

// Avg returns the average invocation duration.
func (s FieldStats) Avg() time.Duration {
	if s.Invocations == 0 {
		return 0
	}
	return s.Duration / time.Duration(s.Invocations)
}

type relationKey struct{}

// withRelation tags ctx with the relation field a plan resolves.
func withRelation(ctx context.Context, typeName, fieldName string) context.Context {
	return context.WithValue(ctx, relationKey{}, typeName+"."+fieldName)
}

// RelationFromContext returns the relation field being resolved, as
// "Type.field", or "" outside InvokePlan.Resolve.
func RelationFromContext(ctx context.Context) string {
	s, _ := ctx.Value(relationKey{}).(string)
	return s
}

// Recorder wraps an Invoker and records statistics per relation field.
// Invocations slower than the threshold are logged as warnings, and
// payloads are logged at debug level.
type Recorder struct {
	Invoker
	logger *slog.Logger
	slow   time.Duration

	mu    sync.Mutex
	stats map[string]FieldStats
}

// NewRecorder wraps inv. A nil logger uses slog.Default; a zero threshold
// disables slow invocation warnings.
func NewRecorder(inv Invoker, logger *slog.Logger, slow time.Duration) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{Invoker: inv, logger: logger, slow: slow, stats: make(map[string]FieldStats)}
}

// Invoke calls the wrapped Invoker and records the call under the relation
// field of ctx.
func (r *Recorder) Invoke(ctx context.Context, function string, payload []byte) ([]byte, error) {
	field := RelationFromContext(ctx)
	r.logger.DebugContext(ctx, "sql invoke", "field", field, "function", function, "request", string(payload))
	start := time.Now()
	out, err := r.Invoker.Invoke(ctx, function, payload)
	d := time.Since(start)
	slow := r.slow > 0 && d > r.slow

	r.mu.Lock()
	s := r.stats[field]
	s.Invocations++
	s.Duration += d
	if err != nil {
		s.Errors++
	}
	if slow {
		s.Slow++
	}
	r.stats[field] = s
	r.mu.Unlock()

	if slow {
		r.logger.WarnContext(ctx, "slow sql invocation", "field", field, "function", function, "duration", d)
	}
	if err != nil {
		r.logger.DebugContext(ctx, "sql invoke failed", "field", field, "error", err)
	}
	return out, err
}

// Stats returns a copy of the statistics keyed by relation field.
func (r *Recorder) Stats() map[string]FieldStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.stats)
}

// Reset clears the statistics.
func (r *Recorder) Reset() {
	r.mu.Lock()
	clear(r.stats)
	r.mu.Unlock()
}

var _ Invoker = (*Recorder)(nil)
