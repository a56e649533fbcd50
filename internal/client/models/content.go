// Package models defines the records the tutoring app keeps in its local
// store and mirrors to the realtime store.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidMCQ   = errors.New("invalid MCQ item")
	ErrInvalidPrice = errors.New("price must not be negative")
)

// MCQItem is one multiple-choice question with exactly four options.
type MCQItem struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
	Mnemonic      string   `json:"mnemonic,omitempty"`
	Concept       string   `json:"concept,omitempty"`
}

func (m MCQItem) Validate() error {
	if m.Question == "" {
		return fmt.Errorf("%w: empty question", ErrInvalidMCQ)
	}
	if len(m.Options) != 4 {
		return fmt.Errorf("%w: %d options, want 4", ErrInvalidMCQ, len(m.Options))
	}
	if m.CorrectAnswer < 0 || m.CorrectAnswer > 3 {
		return fmt.Errorf("%w: correct answer index %d", ErrInvalidMCQ, m.CorrectAnswer)
	}
	return nil
}

// ContentRecord is the admin-authored payload of one chapter. It is replaced
// as a whole on save; unknown fields survive a decode/encode cycle in Extra.
type ContentRecord struct {
	FreeLink          string    `json:"freeLink,omitempty"`
	PremiumLink       string    `json:"premiumLink,omitempty"`
	Link              string    `json:"link,omitempty"`
	Price             int       `json:"price"`
	ManualMCQData     []MCQItem `json:"manualMcqData,omitempty"`
	WeeklyTestMCQData []MCQItem `json:"weeklyTestMcqData,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// DefaultPrice is charged for premium chapter content unless set otherwise.
const DefaultPrice = 5

type contentRecordAlias ContentRecord

var contentRecordFields = []string{"freeLink", "premiumLink", "link", "price", "manualMcqData", "weeklyTestMcqData"}

func (c *ContentRecord) UnmarshalJSON(b []byte) error {
	var a contentRecordAlias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for _, f := range contentRecordFields {
		delete(all, f)
	}
	if len(all) > 0 {
		a.Extra = all
	}

	*c = ContentRecord(a)
	return nil
}

func (c ContentRecord) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(contentRecordAlias(c))
	if err != nil {
		return nil, err
	}
	if len(c.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]json.RawMessage, len(c.Extra)+len(contentRecordFields))
	for k, v := range c.Extra {
		merged[k] = v
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// Validate checks the invariants admin save paths enforce.
func (c *ContentRecord) Validate() error {
	if c.Price < 0 {
		return ErrInvalidPrice
	}
	for i, q := range c.ManualMCQData {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("manual MCQ %d: %w", i+1, err)
		}
	}
	for i, q := range c.WeeklyTestMCQData {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("weekly test MCQ %d: %w", i+1, err)
		}
	}
	return nil
}
