package storage

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/raniellyferreira/linekv/internal/safe"
	"github.com/raniellyferreira/linekv/protocol"
)

// DefaultQueueSize is the capacity of the owner's inbound queue
const DefaultQueueSize = 100

var (
	// ErrOwnerClosed is returned when submitting to an owner that stopped
	// accepting operations
	ErrOwnerClosed = errors.New("store owner is closed")

	// ErrNoReply is returned when an operation was accepted but its reply
	// channel was dropped without a result
	ErrNoReply = errors.New("store owner dropped the request")

	// ErrAlreadyRunning is returned by a second call to Run
	ErrAlreadyRunning = errors.New("store owner is already running")
)

// Logger is the logging interface used by the owner
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// Observer is notified of store events. Hooks run on the owner goroutine
// and must not block.
type Observer interface {
	OnKeySet(key, value string)
	OnKeyDeleted(key string)
	OnKeyAccessed(key string)
}

// request is an operation paired with the channel its reply goes to
type request struct {
	op    protocol.Operation
	reply chan protocol.Reply
}

// Owner is the only goroutine allowed to touch the map
type Owner struct {
	data      *Memory
	requests  chan request
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	running   atomic.Bool

	logger   Logger
	observer Observer
}

// OwnerOption configures an Owner
type OwnerOption func(*Owner)

// WithQueueSize sets the capacity of the inbound queue. Zero makes every
// submission wait for the owner to pick it up.
func WithQueueSize(size int) OwnerOption {
	return func(o *Owner) {
		if size >= 0 {
			o.requests = make(chan request, size)
		}
	}
}

// WithLogger sets the owner's logger
func WithLogger(logger Logger) OwnerOption {
	return func(o *Owner) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver registers an observer for store events
func WithObserver(observer Observer) OwnerOption {
	return func(o *Owner) {
		o.observer = observer
	}
}

// NewOwner creates an owner with an empty map. Call Run to start
// processing.
func NewOwner(opts ...OwnerOption) *Owner {
	o := &Owner{
		data:     NewMemory(),
		requests: make(chan request, DefaultQueueSize),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		logger:   nopLogger{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run processes operations in arrival order until Close is called. Every
// operation queued before Close is still applied before Run returns.
func (o *Owner) Run() error {
	if !o.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(o.done)

	o.logger.Info("Store owner started", "queue_size", cap(o.requests))
	for {
		select {
		case req := <-o.requests:
			o.apply(req)
		case <-o.quit:
			o.drain()
			o.logger.Info("Store owner stopped", "keys", o.data.Len())
			return nil
		}
	}
}

// drain applies whatever is still queued
func (o *Owner) drain() {
	for {
		select {
		case req := <-o.requests:
			o.apply(req)
		default:
			return
		}
	}
}

// Close stops intake. It does not wait; use Done for that.
func (o *Owner) Close() {
	o.closeOnce.Do(func() {
		close(o.quit)
	})
}

// Done is closed once Run has returned
func (o *Owner) Done() <-chan struct{} {
	return o.done
}

// Submit queues op and returns the channel its single reply will arrive
// on. The channel is closed after the reply is sent, or without a reply
// if the operation could not be completed. Submit blocks while the queue
// is full.
func (o *Owner) Submit(op protocol.Operation) (<-chan protocol.Reply, error) {
	select {
	case <-o.quit:
		return nil, ErrOwnerClosed
	default:
	}

	req := request{
		op:    op,
		reply: make(chan protocol.Reply, 1),
	}

	select {
	case o.requests <- req:
		return req.reply, nil
	case <-o.quit:
		return nil, ErrOwnerClosed
	}
}

// Do submits op and waits for its reply
func (o *Owner) Do(op protocol.Operation) (protocol.Reply, error) {
	reply, err := o.Submit(op)
	if err != nil {
		return protocol.Reply{}, err
	}
	return o.Await(reply)
}

// Await waits for the reply to a submitted operation. It returns
// ErrNoReply if the channel is closed empty or the owner finished without
// answering.
func (o *Owner) Await(reply <-chan protocol.Reply) (protocol.Reply, error) {
	select {
	case r, ok := <-reply:
		if !ok {
			return protocol.Reply{}, ErrNoReply
		}
		return r, nil
	case <-o.done:
		// The owner may have answered right before stopping.
		select {
		case r, ok := <-reply:
			if ok {
				return r, nil
			}
		default:
		}
		return protocol.Reply{}, ErrNoReply
	}
}

// apply executes one request and always releases its reply channel
func (o *Owner) apply(req request) {
	defer close(req.reply)

	err := safe.Run(func() error {
		req.reply <- o.execute(req.op)
		return nil
	})
	if err != nil {
		o.logger.Error("Operation aborted", "command", req.op.Kind.String(), "error", err)
	}
}

func (o *Owner) execute(op protocol.Operation) protocol.Reply {
	switch op.Kind {
	case protocol.KindSet:
		o.data.Set(op.Key, op.Value)
		if o.observer != nil {
			o.observer.OnKeySet(op.Key, op.Value)
		}
		o.logger.Debug("Set command completed", "key", op.Key)
		return protocol.Value(protocol.OK)

	case protocol.KindGet:
		value, ok := o.data.Get(op.Key)
		if o.observer != nil {
			o.observer.OnKeyAccessed(op.Key)
		}
		o.logger.Debug("Get command completed", "key", op.Key, "found", ok)
		if !ok {
			return protocol.Nil()
		}
		return protocol.Value(value)

	case protocol.KindDelete:
		value, ok := o.data.Delete(op.Key)
		if ok && o.observer != nil {
			o.observer.OnKeyDeleted(op.Key)
		}
		o.logger.Debug("Delete command completed", "key", op.Key, "found", ok)
		if !ok {
			return protocol.Nil()
		}
		return protocol.Value(value)

	default:
		o.logger.Debug("Invalid command received")
		return protocol.Failure(protocol.ErrorCommand)
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
