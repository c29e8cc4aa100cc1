// Package worker runs force layouts off the caller's goroutine behind a
// validated message protocol: init, then ticks, then complete, error or
// cancel.
package worker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator"
)

type MessageType string

const (
	TypeInit     MessageType = "init"
	TypeTick     MessageType = "tick"
	TypeComplete MessageType = "complete"
	TypeError    MessageType = "error"
	TypeCancel   MessageType = "cancel"
)

var (
	ErrMalformedMessage = errors.New("malformed message")
	ErrMissingNodes     = errors.New("init requires a nodes array")
	ErrMissingEdges     = errors.New("init requires an edges array")
	ErrUnexpectedType   = errors.New("unexpected message type")
)

type WireNode struct {
	ID      string   `json:"id" validate:"required"`
	Type    string   `json:"type,omitempty"`
	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
	Cluster *int     `json:"cluster,omitempty"`
}

type WireEdge struct {
	Source string  `json:"source" validate:"required"`
	Target string  `json:"target" validate:"required"`
	Weight float64 `json:"weight,omitempty"`
}

// Message is one protocol frame in either direction.
type Message struct {
	Type     MessageType    `json:"type" validate:"required,oneof=init tick complete error cancel"`
	RunID    string         `json:"runId,omitempty"`
	Nodes    []WireNode     `json:"nodes,omitempty" validate:"dive"`
	Edges    []WireEdge     `json:"edges,omitempty" validate:"dive"`
	Config   map[string]any `json:"config,omitempty"`
	Progress float64        `json:"progress,omitempty"`
	Error    string         `json:"error,omitempty"`
}

var validate = validator.New()

// DecodeIncoming parses and validates a message sent to the worker.
func DecodeIncoming(raw []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if msg.Type == TypeInit {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		if !isArray(fields["nodes"]) {
			return nil, ErrMissingNodes
		}
		if !isArray(fields["edges"]) {
			return nil, ErrMissingEdges
		}
		if msg.Nodes == nil {
			msg.Nodes = []WireNode{}
		}
		if msg.Edges == nil {
			msg.Edges = []WireEdge{}
		}
	}
	if err := ValidateIncoming(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ValidateIncoming checks a message the worker is about to act on.
func ValidateIncoming(msg *Message) error {
	if msg == nil {
		return ErrMalformedMessage
	}
	if err := validate.Struct(msg); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	switch msg.Type {
	case TypeInit:
		if msg.Nodes == nil {
			return ErrMissingNodes
		}
		if msg.Edges == nil {
			return ErrMissingEdges
		}
	case TypeCancel:
	default:
		return fmt.Errorf("%w: %s", ErrUnexpectedType, msg.Type)
	}
	return nil
}

// DecodeOutgoing parses and validates a message emitted by the worker.
func DecodeOutgoing(raw []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := ValidateOutgoing(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ValidateOutgoing checks a message before a receiver trusts it.
func ValidateOutgoing(msg *Message) error {
	if msg == nil {
		return ErrMalformedMessage
	}
	if err := validate.Struct(msg); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	switch msg.Type {
	case TypeTick:
		if !finite(msg.Progress) || msg.Progress < 0 || msg.Progress > 100 {
			return fmt.Errorf("%w: tick progress %v out of range", ErrMalformedMessage, msg.Progress)
		}
	case TypeComplete:
		if msg.Progress != 100 {
			return fmt.Errorf("%w: complete progress must be 100", ErrMalformedMessage)
		}
		if msg.Nodes == nil {
			return fmt.Errorf("%w: complete requires nodes", ErrMalformedMessage)
		}
	case TypeError:
		if msg.Error == "" {
			return fmt.Errorf("%w: error message is empty", ErrMalformedMessage)
		}
	case TypeCancel:
	default:
		return fmt.Errorf("%w: %s", ErrUnexpectedType, msg.Type)
	}
	for _, n := range msg.Nodes {
		if (n.X != nil && !finite(*n.X)) || (n.Y != nil && !finite(*n.Y)) {
			return fmt.Errorf("%w: node %s has a non-finite position", ErrMalformedMessage, n.ID)
		}
	}
	return nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
