package community

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tutorsync/internal/client/accounts"
	"github.com/dmitrijs2005/tutorsync/internal/client/keys"
	"github.com/dmitrijs2005/tutorsync/internal/client/localstore"
	"github.com/dmitrijs2005/tutorsync/internal/client/models"
	"github.com/dmitrijs2005/tutorsync/internal/common"
	"github.com/google/uuid"
)

func (s *Service) messages(ctx context.Context) ([]models.ChatMessage, error) {
	var list []models.ChatMessage
	if _, err := localstore.GetJSON(ctx, s.local, keys.UniversalChat, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Chat returns the visible messages, oldest first.
func (s *Service) Chat(ctx context.Context) ([]models.ChatMessage, error) {
	list, err := s.messages(ctx)
	if err != nil {
		return nil, err
	}
	out := list[:0]
	for _, m := range list {
		if !m.IsDeleted {
			out = append(out, m)
		}
	}
	return out, nil
}

// Post adds a message from userID. Students who are not premium pay cost
// credits and wait ChatCooldown between messages; admins post freely. The
// message is stored before the charge and taken back if charging fails.
func (s *Service) Post(ctx context.Context, userID, text string, cost int) (*models.ChatMessage, *models.User, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, fmt.Errorf("%w: empty message", common.ErrorValidation)
	}
	u, err := s.accounts.Get(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	paid := !u.IsAdmin() && !u.IsPremium && cost > 0
	if paid {
		if last := u.LastChatTime; last != nil && now.Sub(*last) < ChatCooldown {
			wait := ChatCooldown - now.Sub(*last)
			return nil, nil, fmt.Errorf("%w: wait %.1f hours", ErrChatCooldown, wait.Hours())
		}
		if !accounts.HasCredits(u, cost) {
			return nil, nil, fmt.Errorf("%w: %d needed", accounts.ErrInsufficientCredits, cost)
		}
	}

	list, err := s.messages(ctx)
	if err != nil {
		return nil, nil, err
	}
	msg := models.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		UserName:  u.Name,
		UserRole:  u.Role,
		Text:      text,
		Timestamp: now.UTC(),
	}
	list = append(list, msg)
	if len(list) > MaxMessages {
		list = list[len(list)-MaxMessages:]
	}
	if err := localstore.SetJSON(ctx, s.local, keys.UniversalChat, list); err != nil {
		return nil, nil, err
	}
	if !paid {
		return &msg, u, nil
	}

	u.Credits -= cost
	u.LastChatTime = &now
	if err := s.accounts.Save(ctx, u); err != nil {
		if rerr := s.update(ctx, msg.ID, func(m *models.ChatMessage) { m.IsDeleted = true }); rerr != nil {
			return nil, nil, errors.Join(fmt.Errorf("charge: %w", err), fmt.Errorf("hide message %s: %w", msg.ID, rerr))
		}
		return nil, nil, fmt.Errorf("charge: %w", err)
	}
	return &msg, u, nil
}

// Edit replaces the text of a message.
func (s *Service) Edit(ctx context.Context, id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: empty message", common.ErrorValidation)
	}
	return s.update(ctx, id, func(m *models.ChatMessage) { m.Text = text })
}

// Hide marks a message deleted; it stays stored but leaves the chat.
func (s *Service) Hide(ctx context.Context, id string) error {
	return s.update(ctx, id, func(m *models.ChatMessage) { m.IsDeleted = true })
}

func (s *Service) update(ctx context.Context, id string, fn func(m *models.ChatMessage)) error {
	list, err := s.messages(ctx)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == id && !list[i].IsDeleted {
			fn(&list[i])
			return localstore.SetJSON(ctx, s.local, keys.UniversalChat, list)
		}
	}
	return ErrMessageNotFound
}
