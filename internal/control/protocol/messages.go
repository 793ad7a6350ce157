// Package protocol defines the messages exchanged between a running moninet
// instance and its control clients (moninetctl, or a second moninet launch).
//
// The protocol uses newline-delimited JSON (NDJSON) format over a UNIX socket.
// Each message is a single JSON object terminated by a newline character.
package protocol

import (
	"encoding/json"
)

// MessageType identifies the type of message.
type MessageType string

const (
	// MessageTypeRequest is sent from client to server.
	MessageTypeRequest MessageType = "request"
	// MessageTypeResponse is sent from server to client in reply to a request.
	MessageTypeResponse MessageType = "response"
	// MessageTypeEvent is pushed from server to subscribed clients.
	MessageTypeEvent MessageType = "event"
)

// Command identifies the operation to perform.
type Command string

const (
	// CommandStatus returns the latest speed and totals.
	CommandStatus Command = "status"
	// CommandReset zeroes the cumulative totals.
	CommandReset Command = "reset"
	// CommandToggleUnit switches between MB/s and Mbps.
	CommandToggleUnit Command = "toggle_unit"
	// CommandRestore shows the overlay window if it was hidden.
	CommandRestore Command = "restore"
	// CommandWatch subscribes the connection to reading events.
	CommandWatch Command = "watch"
)

// EventName identifies the type of event.
type EventName string

const (
	// EventReading carries every reading published by the sampler.
	EventReading EventName = "reading"
)

// Request represents a command sent from client to server.
type Request struct {
	// ID is a unique identifier for correlating responses.
	ID string `json:"id"`
	// Type is always "request".
	Type MessageType `json:"type"`
	// Command is the operation to perform.
	Command Command `json:"command"`
	// Params contains command-specific parameters.
	Params json.RawMessage `json:"params,omitempty"`
}

// Response represents a reply from server to client.
type Response struct {
	// ID matches the request ID.
	ID string `json:"id"`
	// Type is always "response".
	Type MessageType `json:"type"`
	// Success indicates whether the command succeeded.
	Success bool `json:"success"`
	// Result contains command-specific result data (if Success is true).
	Result json.RawMessage `json:"result,omitempty"`
	// Error contains error details (if Success is false).
	Error *ErrorInfo `json:"error,omitempty"`
}

// Event represents an asynchronous notification from server to clients.
type Event struct {
	// Type is always "event".
	Type MessageType `json:"type"`
	// Name identifies the event type.
	Name EventName `json:"name"`
	// Data contains event-specific information.
	Data json.RawMessage `json:"data"`
}

// ErrorInfo contains details about an error.
type ErrorInfo struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`
	// Message is a human-readable error description.
	Message string `json:"message"`
}

// StatusResult is returned by status, reset and toggle_unit, and is also the
// payload of reading events.
type StatusResult struct {
	Kind                string  `json:"kind,omitempty"`
	Unit                string  `json:"unit"`
	Upload              string  `json:"upload"`
	Download            string  `json:"download"`
	UploadBytesPerSec   float64 `json:"upload_bytes_per_sec"`
	DownloadBytesPerSec float64 `json:"download_bytes_per_sec"`
	TotalUpload         uint64  `json:"total_upload"`
	TotalDownload       uint64  `json:"total_download"`
	TotalUploadText     string  `json:"total_upload_text"`
	TotalDownloadText   string  `json:"total_download_text"`
	PersistFailed       bool    `json:"persist_failed,omitempty"`
	Timestamp           string  `json:"timestamp,omitempty"`
}

// NewRequest creates a new request with the given command and parameters.
// A nil params value leaves Params empty.
func NewRequest(id string, cmd Command, params any) (*Request, error) {
	req := &Request{
		ID:      id,
		Type:    MessageTypeRequest,
		Command: cmd,
	}
	if params != nil {
		paramsJSON, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		req.Params = paramsJSON
	}
	return req, nil
}

// NewSuccessResponse creates a successful response.
func NewSuccessResponse(id string, result any) (*Response, error) {
	var resultJSON json.RawMessage
	if result != nil {
		var err error
		resultJSON, err = json.Marshal(result)
		if err != nil {
			return nil, err
		}
	}
	return &Response{
		ID:      id,
		Type:    MessageTypeResponse,
		Success: true,
		Result:  resultJSON,
	}, nil
}

// NewErrorResponse creates an error response.
func NewErrorResponse(id string, code string, message string) *Response {
	return &Response{
		ID:      id,
		Type:    MessageTypeResponse,
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewEvent creates a new event with the given name and data.
func NewEvent(name EventName, data any) (*Event, error) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type: MessageTypeEvent,
		Name: name,
		Data: dataJSON,
	}, nil
}

// Known reports whether cmd is one of the defined commands.
func (c Command) Known() bool {
	switch c {
	case CommandStatus, CommandReset, CommandToggleUnit, CommandRestore, CommandWatch:
		return true
	}
	return false
}
