// Package audit writes request logs off the request path.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/arturoeanton/redcross-volunteers/internal/domain"
	"github.com/arturoeanton/redcross-volunteers/internal/port"
	"go.uber.org/zap"
)

// Options tunes the recorder. Zero values pick defaults.
type Options struct {
	QueueSize    int
	Workers      int
	WriteTimeout time.Duration
}

// Recorder owns a bounded queue of request logs and the workers that persist them.
// Write failures are logged and discarded; they never reach the caller.
type Recorder struct {
	writer       port.RequestLogWriter
	logger       *zap.Logger
	queue        chan domain.RequestLog
	workers      int
	writeTimeout time.Duration

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewRecorder creates a recorder. Call Start before Record.
func NewRecorder(writer port.RequestLogWriter, logger *zap.Logger, opts Options) *Recorder {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	return &Recorder{
		writer:       writer,
		logger:       logger.Named("audit"),
		queue:        make(chan domain.RequestLog, opts.QueueSize),
		workers:      opts.Workers,
		writeTimeout: opts.WriteTimeout,
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.closed {
		return
	}
	r.started = true
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.work()
	}
}

// Record enqueues entry without blocking. It returns false when the entry was
// dropped (queue full or recorder closed).
func (r *Recorder) Record(entry domain.RequestLog) bool {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return false
	}
	select {
	case r.queue <- entry:
		return true
	default:
		r.logger.Warn("request log queue full, dropping entry",
			zap.String("method", entry.Method),
			zap.String("path", entry.Path),
			zap.Bool("threat", entry.IsThreat),
		)
		return false
	}
}

// Close stops accepting entries and waits for queued ones to be written, or
// for ctx to end.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		r.logger.Warn("request log drain interrupted", zap.Int("pending", len(r.queue)))
		return ctx.Err()
	}
}

func (r *Recorder) work() {
	defer r.wg.Done()
	for entry := range r.queue {
		r.write(entry)
	}
}

func (r *Recorder) write(entry domain.RequestLog) {
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()

	if err := r.writer.WriteRequestLog(ctx, &entry); err != nil {
		r.logger.Error("failed to write request log",
			zap.Error(err),
			zap.String("ip", entry.IP),
			zap.String("path", entry.Path),
		)
	}
}
