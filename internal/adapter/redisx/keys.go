package redisx

import "fmt"

const ns = "trattoria:v1"

// ChannelEvents is the pub/sub channel shared by all instances.
func ChannelEvents() string {
	return ns + ":events"
}

// KeyIdempotency scopes a client supplied Idempotency-Key to the submitting staff member.
func KeyIdempotency(staffID int64, key string) string {
	return fmt.Sprintf("%s:idem:orders:%d:%s", ns, staffID, key)
}

func KeyMenu() string {
	return ns + ":menu"
}
