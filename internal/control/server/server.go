// Package server provides the UNIX control socket of a running moninet
// instance. Holding the socket is what makes an instance the only one.
package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shini4i/moninet/internal/control/protocol"
)

const (
	// SocketName is the file name of the control socket.
	SocketName = "moninet.sock"

	maxMessageSize       = 64 * 1024
	maxConcurrentClients = 16
	probeTimeout         = 500 * time.Millisecond
	writeTimeout         = time.Second
	outboxSize           = 16
)

var (
	// ErrAlreadyRunning is returned by Start when another instance answers on the socket.
	ErrAlreadyRunning = errors.New("another instance is already running")
	// ErrServerRunning is returned by Start when this server is already listening.
	ErrServerRunning = errors.New("server already running")
)

// DefaultSocketPath returns $XDG_RUNTIME_DIR/moninet.sock, falling back to the temp dir.
func DefaultSocketPath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, SocketName)
}

// RequestHandler is called for each incoming request.
// It should return a response to send back to the client.
type RequestHandler func(req *protocol.Request) *protocol.Response

// Server manages client connections over a UNIX socket.
type Server struct {
	socketPath string
	listener   net.Listener
	handler    RequestHandler

	mu       sync.RWMutex
	clients  map[*Client]struct{}
	running  bool
	starting bool // Guards against TOCTOU race during Start()
}

// NewServer creates a new server instance.
// Panics if handler is nil to prevent runtime panic when processing requests.
func NewServer(socketPath string, handler RequestHandler) *Server {
	if handler == nil {
		panic("server: NewServer called with nil handler")
	}
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		clients:    make(map[*Client]struct{}),
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start acquires the single-instance socket and begins accepting connections.
// It returns ErrAlreadyRunning if a live instance answers on the socket; a socket
// file nobody answers on is treated as stale and replaced.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running || s.starting {
		s.mu.Unlock()
		return ErrServerRunning
	}
	s.starting = true
	s.mu.Unlock()

	clearStarting := func() {
		s.mu.Lock()
		s.starting = false
		s.mu.Unlock()
	}

	if conn, err := net.DialTimeout("unix", s.socketPath, probeTimeout); err == nil {
		_ = conn.Close() // Error intentionally ignored; we only check liveness
		clearStarting()
		return ErrAlreadyRunning
	}

	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0700); err != nil {
		clearStarting()
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		clearStarting()
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		clearStarting()
		return fmt.Errorf("failed to listen on socket: %w", err)
	}

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		if closeErr := listener.Close(); closeErr != nil {
			slog.Error("Failed to close listener after chmod error", "error", closeErr)
		}
		clearStarting()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.running = true
	s.starting = false
	s.mu.Unlock()

	slog.Info("Control socket listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

// Stop closes the listener and every client and removes the socket file.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	listener := s.listener

	clients := make([]*Client, 0, len(s.clients))
	for client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.Unlock()

	if listener != nil {
		if err := listener.Close(); err != nil {
			slog.Error("Failed to close listener", "error", err)
		}
	}

	for _, client := range clients {
		if err := client.Close(); err != nil {
			slog.Debug("Failed to close client connection", "error", err)
		}
	}

	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to remove socket file", "path", s.socketPath, "error", err)
	}

	slog.Info("Control socket closed")
	return nil
}

// Broadcast queues an event for every client that subscribed with the watch
// command. It never waits on socket I/O: a watcher whose outbox is full has
// stopped reading and is disconnected.
func (s *Server) Broadcast(event *protocol.Event) {
	data, err := marshalLine(event)
	if err != nil {
		slog.Error("Failed to encode event", "event", event.Name, "error", err)
		return
	}

	s.mu.RLock()
	clients := make([]*Client, 0, len(s.clients))
	for client := range s.clients {
		if client.isWatching() {
			clients = append(clients, client)
		}
	}
	s.mu.RUnlock()

	for _, client := range clients {
		if client.enqueue(data) {
			continue
		}
		slog.Warn("Dropping control client that stopped reading events")
		s.removeClient(client)
		if err := client.Close(); err != nil {
			slog.Debug("Failed to close client connection", "error", err)
		}
	}
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.RLock()
			running := s.running
			s.mu.RUnlock()
			if !running {
				return
			}
			slog.Error("Accept error", "error", err)
			continue
		}

		client := newClient(conn)
		if !s.addClient(client) {
			slog.Warn("Rejecting control connection, too many clients")
			_ = conn.Close()
			continue
		}
		go s.handleClient(client)
	}
}

func (s *Server) addClient(client *Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clients) >= maxConcurrentClients {
		return false
	}
	s.clients[client] = struct{}{}
	slog.Debug("Control client connected", "clients", len(s.clients))
	return true
}

func (s *Server) removeClient(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, client)
	slog.Debug("Control client disconnected", "clients", len(s.clients))
}

func (s *Server) handleClient(client *Client) {
	defer func() {
		if err := client.Close(); err != nil {
			slog.Debug("Failed to close client connection", "error", err)
		}
		s.removeClient(client)
	}()

	scanner := bufio.NewScanner(client.conn)
	scanner.Buffer(make([]byte, 0, 4096), maxMessageSize)

	for scanner.Scan() {
		var req protocol.Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			slog.Warn("Invalid control request", "error", err)
			resp := protocol.NewErrorResponse("", protocol.ErrCodeInvalidRequest, "invalid JSON")
			if err := client.SendResponse(resp); err != nil {
				slog.Debug("Failed to send error response", "error", err)
			}
			continue
		}

		if req.Command == protocol.CommandWatch {
			client.watch()
		}

		resp := s.dispatch(&req)
		if err := client.SendResponse(resp); err != nil {
			slog.Debug("Failed to send response", "error", err)
			return
		}
	}

	err := scanner.Err()
	switch {
	case errors.Is(err, bufio.ErrTooLong):
		resp := protocol.NewErrorResponse("", protocol.ErrCodeMessageTooLarge, "message too large")
		if sendErr := client.SendResponse(resp); sendErr != nil {
			slog.Debug("Failed to send error response", "error", sendErr)
		}
	case err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed):
		slog.Debug("Control read error", "error", err)
	}
}

func (s *Server) dispatch(req *protocol.Request) *protocol.Response {
	if req.Command == protocol.CommandWatch {
		resp, err := protocol.NewSuccessResponse(req.ID, nil)
		if err != nil {
			return protocol.NewErrorResponse(req.ID, protocol.ErrCodeInternalError, err.Error())
		}
		return resp
	}
	if !req.Command.Known() {
		return protocol.NewErrorResponse(req.ID, protocol.ErrCodeInvalidCommand,
			fmt.Sprintf("unknown command: %q", req.Command))
	}
	return s.handler(req)
}

// Client represents a connected control client.
type Client struct {
	conn    net.Conn
	writeMu sync.Mutex // Serializes writes to conn

	mu       sync.Mutex
	watching bool

	outbox    chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn net.Conn) *Client {
	return &Client{
		conn:   conn,
		outbox: make(chan []byte, outboxSize),
		done:   make(chan struct{}),
	}
}

// SendResponse sends a response to the client.
func (c *Client) SendResponse(resp *protocol.Response) error {
	data, err := marshalLine(resp)
	if err != nil {
		return err
	}
	return c.write(data)
}

// Close closes the client connection. Safe to call multiple times.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

// watch subscribes the client to events and starts its writer.
func (c *Client) watch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watching {
		return
	}
	c.watching = true
	go c.drainOutbox()
}

func (c *Client) isWatching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.watching
}

// enqueue reports false when the outbox is full or the client is closed.
func (c *Client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.outbox <- data:
		return true
	default:
		return false
	}
}

// drainOutbox writes queued events until the client closes. A failed write
// closes the connection, which ends the client's read loop.
func (c *Client) drainOutbox() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.outbox:
			if err := c.write(data); err != nil {
				slog.Debug("Failed to send event to client", "error", err)
				_ = c.Close()
				return
			}
		}
	}
}

func (c *Client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	_, err := c.conn.Write(data)
	return err
}

func marshalLine(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
