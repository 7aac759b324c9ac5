package model

import (
	"strconv"
	"time"
)

// Module is the station a live client works at.
type Module string

const (
	ModuleKitchen   Module = "kitchen"
	ModuleCashier   Module = "cashier"
	ModuleWaitStaff Module = "wait-staff"
	ModuleAdmin     Module = "admin"
)

// Valid reports whether m is a known module.
func (m Module) Valid() bool {
	switch m {
	case ModuleKitchen, ModuleCashier, ModuleWaitStaff, ModuleAdmin:
		return true
	}
	return false
}

// Topic names a notification audience.
type Topic string

const (
	TopicKitchen   Topic = "kitchen"
	TopicCashier   Topic = "cashier"
	TopicWaitStaff Topic = "wait-staff"
	TopicAdmin     Topic = "admin"
	TopicGeneral   Topic = "general"
)

// StaffTopic is the personal topic of a wait-staff member.
func StaffTopic(staffID int64) Topic {
	return Topic(string(TopicWaitStaff) + ":" + strconv.FormatInt(staffID, 10))
}

// TopicsForModule lists the topics a connection joins. Every connection gets general.
func TopicsForModule(m Module, staffID int64) []Topic {
	topics := []Topic{TopicGeneral}
	switch m {
	case ModuleKitchen:
		topics = append(topics, TopicKitchen)
	case ModuleCashier:
		topics = append(topics, TopicCashier)
	case ModuleWaitStaff:
		topics = append(topics, TopicWaitStaff)
		if staffID > 0 {
			topics = append(topics, StaffTopic(staffID))
		}
	case ModuleAdmin:
		topics = append(topics, TopicAdmin, TopicKitchen, TopicCashier, TopicWaitStaff)
	}
	return topics
}

// EventType identifies a lifecycle notification.
type EventType string

const (
	EventOrderCreated   EventType = "order-created"
	EventStatusChanged  EventType = "status-changed"
	EventOrderReady     EventType = "order-ready"
	EventOrderCancelled EventType = "order-cancelled"
	EventOrderUpdated   EventType = "order-updated"
	EventTableUpdated   EventType = "table-updated"
)

// Event is an ephemeral notification routed to a set of topics.
type Event struct {
	Type         EventType
	Topics       []Topic
	Order        *Order
	Table        *Table
	HighPriority bool
	OccurredAt   time.Time
}

// Presence describes one live connection.
type Presence struct {
	ConnectionID string
	StaffID      int64
	Role         Role
	Module       Module
	Topics       []Topic
	ConnectedAt  time.Time
}
