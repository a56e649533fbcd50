package models

import "time"

type Subject struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type Chapter struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// GiftCode is a one-time credit voucher shaped "NST-XXXXX-<amount>".
type GiftCode struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Amount      int       `json:"amount"`
	CreatedAt   time.Time `json:"createdAt"`
	IsRedeemed  bool      `json:"isRedeemed"`
	RedeemedBy  string    `json:"redeemedBy,omitempty"`
	GeneratedBy string    `json:"generatedBy"`
}

type ActivityLogEntry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Actor     string    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type CreditPackage struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Price   int    `json:"price"`
	Credits int    `json:"credits"`
}

type SystemSettings struct {
	APIKeys       []string        `json:"apiKeys,omitempty"`
	AIModel       string          `json:"aiModel,omitempty"`
	AIInstruction string          `json:"aiInstruction,omitempty"`
	ChatCost      int             `json:"chatCost"`
	DailyReward   int             `json:"dailyReward"`
	SignupBonus   int             `json:"signupBonus"`
	Packages      []CreditPackage `json:"packages,omitempty"`
}

func DefaultSettings() SystemSettings {
	return SystemSettings{ChatCost: 1, DailyReward: 3, SignupBonus: 2}
}

// Selection identifies one subject as a student browses it.
type Selection struct {
	Board      string
	ClassLevel string
	Stream     string
	Subject    string
	Language   string
}
