package models

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestResolved RequestStatus = "RESOLVED"
)

// RecoveryRequest asks an admin to restore access to an account.
type RecoveryRequest struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Name      string        `json:"name"`
	Mobile    string        `json:"mobile,omitempty"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Demand is a content request left by a student.
type Demand struct {
	ID        string    `json:"id"`
	Details   string    `json:"details"`
	UserID    string    `json:"userId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	UserRole  Role      `json:"userRole"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	IsDeleted bool      `json:"isDeleted,omitempty"`
}
