// Package chattypes defines the conversation types shared across campuschat.
// This file contains the persisted message shape and the role vocabulary the
// message store enforces.
package chattypes

import "time"

// Role values permitted in the message store. A persona preamble is injected
// at read time by the history adapter and never persisted, so no system role
// exists in storage.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ValidRole reports whether role is one of the two stored role values.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}

// Message is one persisted turn of a conversation. The id is assigned by the
// store at insertion and is the authoritative tie-break when timestamps
// collide; replaying messages in (Timestamp, ID) order reconstructs the exact
// append order.
type Message struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
