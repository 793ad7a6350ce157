// Package client talks to a running moninet instance over its control socket.
package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/shini4i/moninet/internal/control/protocol"
)

// DefaultTimeout bounds a single control call when the context has no deadline.
const DefaultTimeout = 5 * time.Second

// ErrNotRunning is returned when no instance is listening on the socket.
var ErrNotRunning = errors.New("moninet is not running")

// RemoteError is a failure reported by the running instance.
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Call sends one command and waits for its response. Events that arrive on the
// connection before the response are skipped.
func Call(ctx context.Context, socketPath string, cmd protocol.Command) (*protocol.Response, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	conn, err := dial(ctx, socketPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			slog.Debug("Failed to close control connection", "error", closeErr)
		}
	}()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("failed to set deadline: %w", err)
		}
	}

	reader := bufio.NewReader(conn)
	return roundTrip(conn, reader, cmd)
}

// Status returns the running instance's latest reading.
func Status(ctx context.Context, socketPath string) (protocol.StatusResult, error) {
	return callStatus(ctx, socketPath, protocol.CommandStatus)
}

// Reset zeroes the running instance's totals and returns the new status.
func Reset(ctx context.Context, socketPath string) (protocol.StatusResult, error) {
	return callStatus(ctx, socketPath, protocol.CommandReset)
}

// ToggleUnit switches the running instance's speed unit and returns the new status.
func ToggleUnit(ctx context.Context, socketPath string) (protocol.StatusResult, error) {
	return callStatus(ctx, socketPath, protocol.CommandToggleUnit)
}

// Restore asks the running instance to show its window.
func Restore(ctx context.Context, socketPath string) error {
	_, err := Call(ctx, socketPath, protocol.CommandRestore)
	return err
}

// Watch subscribes to reading events and calls fn for each one until ctx is
// cancelled or the instance goes away.
func Watch(ctx context.Context, socketPath string, fn func(protocol.StatusResult)) error {
	conn, err := dial(ctx, socketPath)
	if err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close() // Unblocks the read loop
	})
	defer func() {
		stop()
		_ = conn.Close()
	}()

	reader := bufio.NewReader(conn)
	if _, err := roundTrip(conn, reader, protocol.CommandWatch); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return ErrNotRunning
			}
			return fmt.Errorf("failed to read event: %w", err)
		}

		var event protocol.Event
		if err := json.Unmarshal(line, &event); err != nil {
			slog.Warn("Invalid message from moninet", "error", err)
			continue
		}
		if event.Type != protocol.MessageTypeEvent || event.Name != protocol.EventReading {
			continue
		}

		var status protocol.StatusResult
		if err := json.Unmarshal(event.Data, &status); err != nil {
			slog.Warn("Invalid reading event", "error", err)
			continue
		}
		fn(status)
	}
}

func callStatus(ctx context.Context, socketPath string, cmd protocol.Command) (protocol.StatusResult, error) {
	resp, err := Call(ctx, socketPath, cmd)
	if err != nil {
		return protocol.StatusResult{}, err
	}
	var status protocol.StatusResult
	if err := json.Unmarshal(resp.Result, &status); err != nil {
		return protocol.StatusResult{}, fmt.Errorf("failed to parse status: %w", err)
	}
	return status, nil
}

func dial(ctx context.Context, socketPath string) (net.Conn, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	return conn, nil
}

func roundTrip(conn net.Conn, reader *bufio.Reader, cmd protocol.Command) (*protocol.Response, error) {
	id := uuid.New().String()

	req, err := protocol.NewRequest(id, cmd, nil)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		var resp protocol.Response
		if err := json.Unmarshal(line, &resp); err != nil {
			return nil, fmt.Errorf("invalid response: %w", err)
		}
		if resp.Type != protocol.MessageTypeResponse || (resp.ID != id && resp.ID != "") {
			continue
		}
		if !resp.Success {
			if resp.Error != nil {
				return nil, &RemoteError{Code: resp.Error.Code, Message: resp.Error.Message}
			}
			return nil, errors.New("request failed with unknown error")
		}
		return &resp, nil
	}
}
