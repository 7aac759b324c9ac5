package dto

import "time"

// EventResponse is the data of one live-channel message.
type EventResponse struct {
	Type         string         `json:"type"`
	Order        *OrderResponse `json:"order,omitempty"`
	Table        *TableResponse `json:"table,omitempty"`
	HighPriority bool           `json:"high_priority,omitempty"`
	OccurredAt   time.Time      `json:"occurred_at"`
}

// ConnectedResponse greets a freshly admitted live connection.
type ConnectedResponse struct {
	ConnectionID string   `json:"connection_id"`
	Module       string   `json:"module"`
	Topics       []string `json:"topics"`
}

type PresenceEntry struct {
	ConnectionID string    `json:"connection_id"`
	StaffID      int64     `json:"staff_id"`
	Role         string    `json:"role"`
	Module       string    `json:"module"`
	ConnectedAt  time.Time `json:"connected_at"`
}

// PresenceResponse lists live connections with per-module counts.
type PresenceResponse struct {
	Counts      map[string]int  `json:"counts"`
	Connections []PresenceEntry `json:"connections"`
}
