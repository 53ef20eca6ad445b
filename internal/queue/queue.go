package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// Queue is a bounded in-memory FIFO drained by a single consumer goroutine.
// Items are handed to the subscribed handlers one at a time, in push order.
type Queue[T any] struct {
	items    chan T
	done     chan struct{}
	stopped  chan struct{}
	maxSize  int
	closed   bool
	started  bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func(T) error
}

// New creates a queue holding at most bufferSize waiting items
func New[T any](bufferSize int, logger *logrus.Logger) *Queue[T] {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Queue[T]{
		items:    make(chan T, bufferSize),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]func(T) error, 0),
	}
}

// Push adds an item without blocking
func (q *Queue[T]) Push(item T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- item:
		q.logger.WithField("queued", len(q.items)).Debug("Pushed item to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each item
func (q *Queue[T]) Subscribe(handler func(T) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins processing items in the queue. Calling it again is a no-op.
func (q *Queue[T]) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true
	go q.process()
}

func (q *Queue[T]) process() {
	defer close(q.stopped)
	for {
		select {
		case <-q.done:
			return
		case item := <-q.items:
			q.handle(item)
		}
	}
}

func (q *Queue[T]) handle(item T) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(item); err != nil {
			q.logger.WithError(err).Error("Handler failed to process item")
		}
	}
}

// Close stops the consumer and rejects further pushes. Items still waiting
// are discarded. It returns once the item being handled, if any, is done.
func (q *Queue[T]) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	started := q.started
	close(q.done)
	q.mu.Unlock()

	if started {
		<-q.stopped
	}
	return nil
}

// Len returns the number of items waiting, excluding the one being handled
func (q *Queue[T]) Len() int {
	return len(q.items)
}

func (q *Queue[T]) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
