// Package v1 defines the dashboard notification protocol v1.
//
// It is shared between the stub backend gateway and dashboard clients so the
// wire format has a single definition.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Version is embedded into every envelope.
const Version = "v1"

// Subprotocol is negotiated during the websocket handshake.
const Subprotocol = "hiring.notify.v1"

// Type constants (wire-stable).
const (
	// TypeHelloAck confirms the authenticated session (server -> client).
	TypeHelloAck = "hello_ack"

	// TypeNotification delivers one dashboard notification (server -> client).
	TypeNotification = "notification"

	// TypeNotificationRead marks a notification as read (client -> server).
	TypeNotificationRead = "notification_read"

	// TypeError is a generic error envelope (server -> client).
	TypeError = "error"
)

// Notification kinds.
const (
	KindJobStatus        = "job.status"
	KindApplicationNew   = "application.new"
	KindInterviewBooked  = "interview.scheduled"
	KindFeedbackReceived = "feedback.received"
)

// Envelope is the canonical wire wrapper.
type Envelope struct {
	V       string          `json:"v"`
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	TS      time.Time       `json:"ts,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Validate performs structural validation.
func (e Envelope) Validate() error {
	if strings.TrimSpace(e.V) == "" {
		return errors.New("missing field: v")
	}
	if e.V != Version {
		return fmt.Errorf("unsupported protocol version: %q", e.V)
	}
	switch e.Type {
	case TypeHelloAck, TypeNotification, TypeNotificationRead, TypeError:
		return nil
	case "":
		return errors.New("missing field: type")
	default:
		return fmt.Errorf("unknown type: %q", e.Type)
	}
}

// HelloAckPayload identifies the websocket session.
type HelloAckPayload struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
}

// NotificationPayload is one dashboard notification.
type NotificationPayload struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Title      string    `json:"title"`
	Body       string    `json:"body,omitempty"`
	ResourceID string    `json:"resource_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NotificationReadPayload acknowledges a notification.
type NotificationReadPayload struct {
	ID string `json:"id"`
}

// ErrorPayload is a generic error response payload.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// New builds an envelope with payload marshalled to JSON.
func New(typ, id string, ts time.Time, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{V: Version, Type: typ, ID: id, TS: ts.UTC(), Payload: b}, nil
}
