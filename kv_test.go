package linekv_test

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raniellyferreira/linekv"
)

type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *testLogger) Debug(msg string, fields ...linekv.Field) { l.record(msg) }
func (l *testLogger) Info(msg string, fields ...linekv.Field)  { l.record(msg) }
func (l *testLogger) Error(msg string, fields ...linekv.Field) { l.record(msg) }

func (l *testLogger) has(msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.messages {
		if m == msg {
			return true
		}
	}
	return false
}

type testMetrics struct {
	mu          sync.Mutex
	commands    int
	connections int
}

func (m *testMetrics) RecordCommandProcessed(string, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands++
}

func (m *testMetrics) RecordConnection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections++
}

func (m *testMetrics) RecordDisconnection() {}
func (m *testMetrics) RecordError(string)   {}

func newKV(t *testing.T, opts ...linekv.Option) *linekv.KV {
	t.Helper()

	opts = append([]linekv.Option{
		linekv.WithAddr("127.0.0.1:0"),
		linekv.WithLogger(&testLogger{}),
	}, opts...)

	kv, err := linekv.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func roundTrip(t *testing.T, conn net.Conn, reader *bufio.Reader, line string) string {
	t.Helper()
	_, err := conn.Write([]byte(line + "\n"))
	require.NoError(t, err)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	resp, err := reader.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimSuffix(resp, "\n")
}

func TestNew(t *testing.T) {
	kv, err := linekv.New()
	require.NoError(t, err)
	defer kv.Close()

	assert.Equal(t, linekv.DefaultAddr, kv.Addr())
}

func TestNewWithInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  linekv.Option
	}{
		{"empty address", linekv.WithAddr("")},
		{"address without port", linekv.WithAddr("localhost")},
		{"negative queue", linekv.WithQueueSize(-1)},
		{"nil logger", linekv.WithLogger(nil)},
		{"nil observer", linekv.WithObserver(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := linekv.New(tt.opt)
			assert.ErrorIs(t, err, linekv.ErrInvalidConfig)
		})
	}
}

func TestStartServeAndClose(t *testing.T) {
	logger := &testLogger{}
	metrics := &testMetrics{}
	kv := newKV(t, linekv.WithLogger(logger), linekv.WithMetrics(metrics), linekv.WithQueueSize(4))

	require.NoError(t, kv.Start(context.Background()))

	conn, err := net.Dial("tcp", kv.Addr())
	require.NoError(t, err)
	defer conn.Close()
	reader := bufio.NewReader(conn)

	assert.Equal(t, "Ok", roundTrip(t, conn, reader, "SET a 1"))
	assert.Equal(t, "1", roundTrip(t, conn, reader, "GET a"))
	assert.Equal(t, "1", roundTrip(t, conn, reader, "DELETE a"))
	assert.Equal(t, "", roundTrip(t, conn, reader, "GET a"))
	assert.Equal(t, "Error command", roundTrip(t, conn, reader, "FOO"))

	stats := kv.Stats()
	assert.Equal(t, int64(5), stats["total_commands"])
	assert.Equal(t, int64(1), stats["total_errors"])
	assert.Equal(t, true, stats["started"])
	assert.Equal(t, linekv.Version, stats["version"])

	require.NoError(t, kv.Close())
	assert.NoError(t, kv.Close())

	assert.True(t, logger.has("Store owner started"))
	assert.True(t, logger.has("Store owner stopped"))

	metrics.mu.Lock()
	assert.Equal(t, 5, metrics.commands)
	assert.Equal(t, 1, metrics.connections)
	metrics.mu.Unlock()

	// The connection is closed by shutdown
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err = reader.ReadString('\n')
	assert.Error(t, err)
}

func TestStartTwice(t *testing.T) {
	kv := newKV(t)
	require.NoError(t, kv.Start(context.Background()))
	assert.ErrorIs(t, kv.Start(context.Background()), linekv.ErrAlreadyStarted)
}

func TestStartAfterClose(t *testing.T) {
	kv := newKV(t)
	require.NoError(t, kv.Close())
	assert.ErrorIs(t, kv.Start(context.Background()), linekv.ErrClosed)
}

func TestStartCancelledContext(t *testing.T) {
	kv := newKV(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, kv.Start(ctx), context.Canceled)
}

func TestStartBindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	kv := newKV(t, linekv.WithAddr(ln.Addr().String()))
	err = kv.Start(context.Background())
	require.Error(t, err)

	var connErr *linekv.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, ln.Addr().String(), connErr.Addr)

	assert.ErrorIs(t, kv.Start(context.Background()), linekv.ErrClosed)
}

func TestContextCancellationCloses(t *testing.T) {
	kv := newKV(t)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, kv.Start(ctx))

	addr := kv.Addr()
	cancel()

	require.Eventually(t, func() bool {
		return kv.Stats()["closed"] == true
	}, 2*time.Second, 10*time.Millisecond)

	_, err := net.DialTimeout("tcp", addr, time.Second)
	assert.Error(t, err)
}

func TestConcurrentWritersOneReader(t *testing.T) {
	kv := newKV(t)
	require.NoError(t, kv.Start(context.Background()))

	var wg sync.WaitGroup
	for _, v := range []string{"v1", "v2"} {
		wg.Add(1)
		go func(v string) {
			defer wg.Done()
			conn, err := net.Dial("tcp", kv.Addr())
			if !assert.NoError(t, err) {
				return
			}
			defer conn.Close()
			_, err = conn.Write([]byte("SET k " + v + "\n"))
			assert.NoError(t, err)
			resp, err := bufio.NewReader(conn).ReadString('\n')
			assert.NoError(t, err)
			assert.Equal(t, "Ok\n", resp)
		}(v)
	}
	wg.Wait()

	conn, err := net.Dial("tcp", kv.Addr())
	require.NoError(t, err)
	defer conn.Close()

	assert.Contains(t, []string{"v1", "v2"}, roundTrip(t, conn, bufio.NewReader(conn), "GET k"))
}

type keyspaceObserver struct {
	mu       sync.Mutex
	set      []string
	accessed []string
	deleted  []string
}

func (o *keyspaceObserver) OnKeySet(key, value string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.set = append(o.set, key+"="+value)
}

func (o *keyspaceObserver) OnKeyAccessed(key string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.accessed = append(o.accessed, key)
}

func (o *keyspaceObserver) OnKeyDeleted(key string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.deleted = append(o.deleted, key)
}

func TestWithObserver(t *testing.T) {
	observer := &keyspaceObserver{}
	kv := newKV(t, linekv.WithObserver(observer))
	require.NoError(t, kv.Start(context.Background()))

	conn, err := net.Dial("tcp", kv.Addr())
	require.NoError(t, err)
	defer conn.Close()
	reader := bufio.NewReader(conn)

	assert.Equal(t, "Ok", roundTrip(t, conn, reader, "SET name John Smith"))
	assert.Equal(t, "John Smith", roundTrip(t, conn, reader, "GET name"))
	assert.Equal(t, "John Smith", roundTrip(t, conn, reader, "DELETE name"))
	assert.Equal(t, "", roundTrip(t, conn, reader, "DELETE name"))

	observer.mu.Lock()
	defer observer.mu.Unlock()
	assert.Equal(t, []string{"name=John Smith"}, observer.set)
	assert.Equal(t, []string{"name"}, observer.accessed)
	assert.Equal(t, []string{"name"}, observer.deleted)
}

func TestVersionInfo(t *testing.T) {
	info := linekv.VersionInfo()
	assert.Equal(t, linekv.Version, info["version"])
}
