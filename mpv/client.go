// Package mpv talks to a running mpv over its JSON IPC socket and launches mpv
// processes for the trim view.
package mpv

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

const (
	// DefaultSocketPath is where LaunchMpv asks mpv to listen when no path is configured.
	DefaultSocketPath = "/tmp/trimline-mpv.sock"
	// ioTimeout bounds one request/reply exchange.
	ioTimeout = 2 * time.Second
)

var (
	ErrNotConnected   = errors.New("mpv: not connected")
	ErrSocketNotFound = errors.New("mpv: socket not found - is mpv running with --input-ipc-server?")
	// ErrPropertyUnavailable is mpv's answer for a property with no value yet, such as
	// time-pos or duration before the file has loaded.
	ErrPropertyUnavailable = errors.New("mpv: property unavailable")
)

type ipcRequest struct {
	Command   []interface{} `json:"command"`
	RequestID uint64        `json:"request_id"`
}

// ipcReply is either a reply (RequestID set) or an asynchronous event (Event set).
type ipcReply struct {
	Data      json.RawMessage `json:"data"`
	RequestID uint64          `json:"request_id"`
	Error     string          `json:"error"`
	Event     string          `json:"event"`
}

// Client is a synchronous mpv IPC client. One request is in flight at a time; events
// mpv interleaves with replies are skipped.
type Client struct {
	socketPath string

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	nextID uint64
}

// NewClient creates a client for socketPath, or DefaultSocketPath when empty. It does
// not dial; call Connect.
func NewClient(socketPath string) *Client {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	return &Client{socketPath: socketPath}
}

// SocketPath returns the socket this client dials.
func (c *Client) SocketPath() string { return c.socketPath }

// Connect dials the socket. It is a no-op while connected.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("unix", c.socketPath, ioTimeout)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSocketNotFound, err)
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// Close drops the connection. mpv keeps running.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropLocked()
}

// IsConnected reports whether the client holds a connection. A connection that
// broke during the last request has already been dropped.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *Client) GetTimePos() (float64, error) { return property[float64](c, "time-pos") }

func (c *Client) GetDuration() (float64, error) { return property[float64](c, "duration") }

func (c *Client) GetPaused() (bool, error) { return property[bool](c, "pause") }

// SetPaused sets the pause property.
func (c *Client) SetPaused(paused bool) error {
	_, err := c.sendCommand("set_property", "pause", paused)
	return err
}

// SeekAbsolute seeks to seconds from the start of the file, frame exact.
func (c *Client) SeekAbsolute(seconds float64) error {
	_, err := c.sendCommand("seek", seconds, "absolute+exact")
	return err
}

// Quit asks mpv to exit.
func (c *Client) Quit() error {
	_, err := c.sendCommand("quit")
	return err
}

func property[T any](c *Client, name string) (T, error) {
	var v T
	data, err := c.sendCommand("get_property", name)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("mpv: decode %s: %w", name, err)
	}
	return v, nil
}

// sendCommand writes {"command": [command, args...], "request_id": n} and waits for
// the reply carrying n. I/O errors drop the connection so the next Connect redials.
func (c *Client) sendCommand(command string, args ...interface{}) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, ErrNotConnected
	}

	c.nextID++
	req := ipcRequest{
		Command:   append([]interface{}{command}, args...),
		RequestID: c.nextID,
	}
	line, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("mpv: encode %s: %w", command, err)
	}

	_ = c.conn.SetDeadline(time.Now().Add(ioTimeout))
	if _, err := c.conn.Write(append(line, '\n')); err != nil {
		_ = c.dropLocked()
		return nil, fmt.Errorf("mpv: send %s: %w", command, err)
	}

	for {
		raw, err := c.reader.ReadBytes('\n')
		if err != nil {
			_ = c.dropLocked()
			return nil, fmt.Errorf("mpv: read reply to %s: %w", command, err)
		}
		var reply ipcReply
		if json.Unmarshal(raw, &reply) != nil || reply.Event != "" || reply.RequestID != req.RequestID {
			continue
		}
		switch reply.Error {
		case "", "success":
			return reply.Data, nil
		case "property unavailable":
			return nil, ErrPropertyUnavailable
		default:
			return nil, fmt.Errorf("mpv: %s", reply.Error)
		}
	}
}

func (c *Client) dropLocked() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	return err
}
