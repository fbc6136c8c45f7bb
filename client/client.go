// Package client is a small client for the linekv line protocol.
package client

import (
	"context"
	"net"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/raniellyferreira/linekv/protocol"
)

var (
	// ErrCommand is returned when the server rejects a request as malformed
	ErrCommand = errors.New("server rejected command")

	// ErrInternal is returned when the server could not complete a request
	ErrInternal = errors.New("server internal error")

	// ErrInvalidKey is returned for keys the protocol cannot carry
	ErrInvalidKey = errors.New("key must be a single non-empty token")
)

// Client is a connection to a linekv server. Requests on one client are
// serialized.
type Client struct {
	conn   net.Conn
	reader *protocol.Reader
	writer *protocol.Writer
	mu     sync.Mutex
}

// Dial connects to the server at addr
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", addr)
	}
	return New(conn), nil
}

// New wraps an established connection
func New(conn net.Conn) *Client {
	return &Client{
		conn:   conn,
		reader: protocol.NewReader(conn),
		writer: protocol.NewWriter(conn),
	}
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the server address
func (c *Client) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Do sends one raw request line and returns the response line without its
// newline. An empty response means the key had no value.
func (c *Client) Do(line string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writer.WriteLine(line); err != nil {
		return "", errors.Wrap(err, "failed to write request")
	}
	if err := c.writer.Flush(); err != nil {
		return "", errors.Wrap(err, "failed to flush request")
	}

	resp, err := c.reader.ReadLine()
	if err != nil {
		return "", errors.Wrap(err, "failed to read response")
	}
	return resp, nil
}

// Set stores value under key
func (c *Client) Set(key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	resp, err := c.do(protocol.Set(key, value))
	if err != nil {
		return err
	}
	if resp != protocol.OK {
		return errors.Errorf("unexpected SET response %q", resp)
	}
	return nil
}

// Get returns the value stored under key. The boolean is false when the
// key has no value.
func (c *Client) Get(key string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	resp, err := c.do(protocol.Get(key))
	if err != nil {
		return "", false, err
	}
	return resp, resp != "", nil
}

// Delete removes key and returns the value it held. The boolean is false
// when there was nothing to remove.
func (c *Client) Delete(key string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	resp, err := c.do(protocol.Delete(key))
	if err != nil {
		return "", false, err
	}
	return resp, resp != "", nil
}

// do sends a formatted operation and maps the failure lines to errors
func (c *Client) do(op protocol.Operation) (string, error) {
	resp, err := c.Do(strings.TrimSuffix(protocol.Format(op), "\n"))
	if err != nil {
		return "", err
	}

	switch resp {
	case protocol.ErrorCommand:
		return "", errors.Wrapf(ErrCommand, "%s", op.Kind)
	case protocol.InternalError:
		return "", errors.Wrapf(ErrInternal, "%s", op.Kind)
	}
	return resp, nil
}

func checkKey(key string) error {
	if key == "" || len(strings.Fields(key)) != 1 || strings.TrimSpace(key) != key {
		return errors.Wrapf(ErrInvalidKey, "%q", key)
	}
	return nil
}
