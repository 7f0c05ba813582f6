// Package protocol defines the WebSocket message shapes between clients and the relay.
package protocol

import (
	"encoding/json"
	"errors"
)

// Sender labels for outbound chat events.
const (
	SenderUser      = "Du"
	SenderAssistant = "Immobyte-GPT"
	SenderSystem    = "System"
)

// Avatar display hints matching the web client's color palette.
const (
	AvatarUser      = "gray-300"
	AvatarAssistant = "sky-500"
	AvatarSystem    = "red-500"
)

// Envelope is the inbound payload sent by the client.
type Envelope struct {
	Message *string `json:"message"`
}

// ChatEvent is an outbound event sent by the relay to the client.
type ChatEvent struct {
	Message string `json:"message"`
	Sender  string `json:"sender"`
	Avatar  string `json:"avatar,omitempty"`
}

// ErrInvalidEnvelope is returned when an inbound payload does not match the
// envelope shape.
var ErrInvalidEnvelope = errors.New("invalid message envelope")

// ParseEnvelope validates an inbound payload and extracts the message text.
// The payload must be a JSON object with a required string field "message".
func ParseEnvelope(data []byte) (string, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", ErrInvalidEnvelope
	}
	if env.Message == nil {
		return "", ErrInvalidEnvelope
	}
	return *env.Message, nil
}

// UserEcho builds the echo event for a received user message.
func UserEcho(message string) ChatEvent {
	return ChatEvent{Message: message, Sender: SenderUser, Avatar: AvatarUser}
}

// AssistantReply builds the event carrying the assistant's reply.
func AssistantReply(message string) ChatEvent {
	return ChatEvent{Message: message, Sender: SenderAssistant, Avatar: AvatarAssistant}
}

// ErrorNotice builds a system error event for the client.
func ErrorNotice(detail string) ChatEvent {
	return ChatEvent{Message: "Error: " + detail + ".", Sender: SenderSystem, Avatar: AvatarSystem}
}
