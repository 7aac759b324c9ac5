package model

import "time"

// TableStatus describes table occupancy.
type TableStatus string

const (
	TableStatusFree     TableStatus = "FREE"
	TableStatusOccupied TableStatus = "OCCUPIED"
	TableStatusReserved TableStatus = "RESERVED"
)

// Table is a dining table shared by sequential orders.
type Table struct {
	ID        int64
	Number    int
	Capacity  int
	Location  string
	Status    TableStatus
	UpdatedAt time.Time
}
