package models

import "time"

type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleAdmin   Role = "ADMIN"
)

type InboxMessage struct {
	ID   string    `json:"id"`
	Text string    `json:"text"`
	Date time.Time `json:"date"`
	Read bool      `json:"read"`
}

type User struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	Email               string         `json:"email,omitempty"`
	Password            string         `json:"password,omitempty"`
	Role                Role           `json:"role"`
	Board               string         `json:"board,omitempty"`
	ClassLevel          string         `json:"classLevel,omitempty"`
	Stream              string         `json:"stream,omitempty"`
	Credits             int            `json:"credits"`
	Streak              int            `json:"streak"`
	IsPremium           bool           `json:"isPremium,omitempty"`
	LastRewardClaimDate *time.Time     `json:"lastRewardClaimDate,omitempty"`
	LastChatTime        *time.Time     `json:"lastChatTime,omitempty"`
	CreatedAt           time.Time      `json:"createdAt"`
	Inbox               []InboxMessage `json:"inbox,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) UnreadCount() int {
	n := 0
	for _, m := range u.Inbox {
		if !m.Read {
			n++
		}
	}
	return n
}
