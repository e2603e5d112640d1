package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ead/authuser/internal/redact"
	"github.com/ead/authuser/models"
	"go.uber.org/zap"
)

var (
	// ErrNotStarted is returned when publishing before Start or after Stop
	ErrNotStarted = errors.New("event publisher not running")

	// ErrBufferFull is returned when the event could not be queued
	ErrBufferFull = errors.New("event buffer full")
)

// Sink delivers a user event to its destination
type Sink interface {
	Deliver(ctx context.Context, event *models.UserEvent) error
}

// SinkFunc adapts a function to Sink
type SinkFunc func(ctx context.Context, event *models.UserEvent) error

// Deliver calls f
func (f SinkFunc) Deliver(ctx context.Context, event *models.UserEvent) error {
	return f(ctx, event)
}

// Config holds configuration for the Publisher
type Config struct {
	BufferSize      int           // Size of the event buffer channel
	WorkerCount     int           // Number of concurrent workers
	DeliveryTimeout time.Duration // Per-event delivery timeout
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:      1000,
		WorkerCount:     2,
		DeliveryTimeout: 5 * time.Second,
	}
}

// Publisher fans user lifecycle events out to a Sink on background workers
type Publisher struct {
	sink        Sink
	logger      *zap.Logger
	eventChan   chan *models.UserEvent
	workerCount int
	bufferSize  int
	timeout     time.Duration
	wg          sync.WaitGroup
	started     bool
	stopped     bool
	mu          sync.Mutex
}

// NewPublisher creates a new Publisher instance
func NewPublisher(sink Sink, logger *zap.Logger, config Config) *Publisher {
	defaults := DefaultConfig()
	if config.BufferSize <= 0 {
		config.BufferSize = defaults.BufferSize
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = defaults.WorkerCount
	}
	if config.DeliveryTimeout <= 0 {
		config.DeliveryTimeout = defaults.DeliveryTimeout
	}

	return &Publisher{
		sink:        sink,
		logger:      logger,
		eventChan:   make(chan *models.UserEvent, config.BufferSize),
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
		timeout:     config.DeliveryTimeout,
	}
}

// Start starts the background workers
func (p *Publisher) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("event publisher already started")
	}

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.started = true
	p.logger.Info("started event publisher",
		zap.Int("worker_count", p.workerCount),
		zap.Int("buffer_size", p.bufferSize))

	return nil
}

// Stop stops accepting events and waits for queued ones to be delivered
func (p *Publisher) Stop(timeout time.Duration) error {
	p.mu.Lock()
	if !p.started || p.stopped {
		p.mu.Unlock()
		return ErrNotStarted
	}
	p.stopped = true
	p.logger.Info("stopping event publisher", zap.Int("pending_events", len(p.eventChan)))
	close(p.eventChan)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("event publisher stopped gracefully")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("event publisher stop timeout after %v", timeout)
	}
}

// Publish queues an event without blocking
func (p *Publisher) Publish(event *models.UserEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || p.stopped {
		return ErrNotStarted
	}

	select {
	case p.eventChan <- event:
		return nil
	default:
		p.logger.Warn("event channel full, dropping event",
			zap.String("action", string(event.Action)),
			zap.String("user_id", event.UserID.String()))
		return ErrBufferFull
	}
}

// PublishUser snapshots user and queues the event for action
func (p *Publisher) PublishUser(action models.ActionType, user *models.User) error {
	return p.Publish(models.NewUserEvent(action, user))
}

func (p *Publisher) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("event worker started", zap.Int("worker_id", id))

	for event := range p.eventChan {
		if err := p.deliver(event); err != nil {
			p.logger.Error("failed to deliver user event",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("action", string(event.Action)),
				zap.String("user_id", event.UserID.String()))
		}
	}

	p.logger.Debug("event worker stopped", zap.Int("worker_id", id))
}

func (p *Publisher) deliver(event *models.UserEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	return p.sink.Deliver(ctx, event)
}

// GetStats returns statistics about the publisher
func (p *Publisher) GetStats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		BufferSize:    p.bufferSize,
		PendingEvents: len(p.eventChan),
		WorkerCount:   p.workerCount,
		Started:       p.started && !p.stopped,
	}
}

// HealthCheck reports ErrNotStarted unless the workers are running
func (p *Publisher) HealthCheck(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || p.stopped {
		return ErrNotStarted
	}
	return nil
}

// Stats represents publisher statistics
type Stats struct {
	BufferSize    int
	PendingEvents int
	WorkerCount   int
	Started       bool
}

// LogSink writes each event as a structured log line. It stands in for a
// message broker, which this service does not talk to.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a LogSink
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Deliver logs the event payload with contact data masked
func (s *LogSink) Deliver(_ context.Context, event *models.UserEvent) error {
	masked := *event
	masked.Email = redact.Email(event.Email)
	masked.PhoneNumber = redact.Phone(event.PhoneNumber)
	masked.CPF = redact.CPF(event.CPF)

	payload, err := json.Marshal(&masked)
	if err != nil {
		return fmt.Errorf("failed to encode user event: %w", err)
	}
	s.logger.Info("user event",
		zap.String("action", string(event.Action)),
		zap.String("user_id", event.UserID.String()),
		zap.ByteString("payload", payload))
	return nil
}
