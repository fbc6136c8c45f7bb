package linekv

import (
	"context"
	"sync"

	"github.com/raniellyferreira/linekv/server"
	"github.com/raniellyferreira/linekv/storage"
)

// KV is an in-memory key-value store served over TCP
type KV struct {
	// Configuration
	config *config

	// Components
	owner  *storage.Owner
	server *server.Server

	// State
	mu      sync.Mutex
	started bool
	closed  bool
	stop    chan struct{}
}

// New creates a new KV with the given options
//
// The store is created but not started. Use Start() to begin serving.
//
// Example:
//
//	kv, err := linekv.New(
//		linekv.WithAddr("127.0.0.1:8080"),
//		linekv.WithQueueSize(100),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
func New(opts ...Option) (*KV, error) {
	cfg := defaultConfig()

	// Apply options
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.logger == nil {
		cfg.logger = defaultLogger()
	}

	adapter := &loggerAdapter{logger: cfg.logger}

	ownerOpts := []storage.OwnerOption{
		storage.WithQueueSize(cfg.queueSize),
		storage.WithLogger(adapter),
	}
	if cfg.observer != nil {
		ownerOpts = append(ownerOpts, storage.WithObserver(cfg.observer))
	}
	owner := storage.NewOwner(ownerOpts...)

	srv := server.NewServer(cfg.addr, owner)
	srv.SetLogger(adapter)
	if cfg.metrics != nil {
		srv.SetMetrics(cfg.metrics)
	}

	return &KV{
		config: cfg,
		owner:  owner,
		server: srv,
		stop:   make(chan struct{}),
	}, nil
}

// Start launches the store owner and begins accepting connections. It
// returns once the listener is bound. Cancelling ctx afterwards closes
// the store.
//
// Example:
//
//	if err := kv.Start(context.Background()); err != nil {
//		log.Fatal(err)
//	}
func (k *KV) Start(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return ErrClosed
	}
	if k.started {
		return ErrAlreadyStarted
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	go func() {
		if err := k.owner.Run(); err != nil {
			k.config.logger.Error("Store owner failed", Field{Key: "error", Value: err})
		}
	}()

	if err := k.server.Start(); err != nil {
		k.owner.Close()
		<-k.owner.Done()
		k.closed = true
		close(k.stop)
		return &ConnectionError{Addr: k.config.addr, Err: err}
	}
	k.started = true

	go func() {
		select {
		case <-ctx.Done():
			k.Close()
		case <-k.stop:
		}
	}()

	return nil
}

// Close stops accepting connections, closes every session and then
// stops the store owner once its queue is drained. Calling Close more
// than once is safe.
func (k *KV) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil
	}
	k.closed = true
	close(k.stop)

	if !k.started {
		return nil
	}

	// Stop server first so no session is left waiting on the owner
	err := k.server.Stop()
	if err != nil {
		k.config.logger.Error("Error stopping server", Field{Key: "error", Value: err})
	}

	k.owner.Close()
	<-k.owner.Done()

	return err
}

// Addr returns the address the server is listening on
func (k *KV) Addr() string {
	return k.server.Addr()
}

// Stats returns server statistics
func (k *KV) Stats() map[string]interface{} {
	stats := k.server.Stats()
	stats["version"] = Version

	k.mu.Lock()
	stats["started"] = k.started
	stats["closed"] = k.closed
	k.mu.Unlock()

	return stats
}
