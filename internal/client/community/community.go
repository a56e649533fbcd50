// Package community holds what students leave for admins and for each
// other: access recovery requests, content demands, the announcement banner
// and the shared chat room.
package community

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/tutorsync/internal/client/accounts"
	"github.com/dmitrijs2005/tutorsync/internal/client/keys"
	"github.com/dmitrijs2005/tutorsync/internal/client/localstore"
	"github.com/dmitrijs2005/tutorsync/internal/client/models"
	"github.com/dmitrijs2005/tutorsync/internal/common"
	"github.com/google/uuid"
)

var (
	ErrRequestNotFound = errors.New("recovery request not found")
	ErrMessageNotFound = errors.New("chat message not found")
	ErrChatCooldown    = errors.New("chat cooldown active")
)

const (
	// ChatCooldown is the wait between two paid messages of one student.
	ChatCooldown = 6 * time.Hour
	// MaxMessages bounds the stored chat; the oldest messages fall off.
	MaxMessages = 500
)

type Service struct {
	local    localstore.Store
	accounts *accounts.Service
	now      func() time.Time
}

func NewService(local localstore.Store, acc *accounts.Service) *Service {
	return &Service{local: local, accounts: acc, now: time.Now}
}

func (s *Service) requests(ctx context.Context) ([]models.RecoveryRequest, error) {
	var list []models.RecoveryRequest
	if _, err := localstore.GetJSON(ctx, s.local, keys.RecoveryRequests, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// RequestRecovery files an access request for the account matching login.
// A student with a pending request gets that request back.
func (s *Service) RequestRecovery(ctx context.Context, login, mobile string) (*models.RecoveryRequest, error) {
	u, err := s.accounts.Lookup(ctx, login)
	if err != nil {
		return nil, err
	}
	list, err := s.requests(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].UserID == u.ID && list[i].Status == models.RequestPending {
			return &list[i], nil
		}
	}

	req := models.RecoveryRequest{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Name:      u.Name,
		Mobile:    mobile,
		Status:    models.RequestPending,
		CreatedAt: s.now().UTC(),
	}
	if err := localstore.SetJSON(ctx, s.local, keys.RecoveryRequests, append(list, req)); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Service) PendingRequests(ctx context.Context) ([]models.RecoveryRequest, error) {
	list, err := s.requests(ctx)
	if err != nil {
		return nil, err
	}
	out := list[:0]
	for _, r := range list {
		if r.Status == models.RequestPending {
			out = append(out, r)
		}
	}
	return out, nil
}

// Approve resolves a pending request. A non-empty password replaces the
// account's password first, so a failed reset leaves the request pending.
func (s *Service) Approve(ctx context.Context, id, password string) (*models.RecoveryRequest, error) {
	list, err := s.requests(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		r := &list[i]
		if r.ID != id || r.Status != models.RequestPending {
			continue
		}
		if password != "" {
			if err := s.accounts.SetPassword(ctx, r.UserID, password); err != nil {
				return nil, fmt.Errorf("reset password: %w", err)
			}
		}
		r.Status = models.RequestResolved
		if err := localstore.SetJSON(ctx, s.local, keys.RecoveryRequests, list); err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, ErrRequestNotFound
}

// Demand records a content request from a student.
func (s *Service) Demand(ctx context.Context, userID, details string) (*models.Demand, error) {
	details = strings.TrimSpace(details)
	if details == "" {
		return nil, fmt.Errorf("%w: empty demand", common.ErrorValidation)
	}
	list, err := s.Demands(ctx)
	if err != nil {
		return nil, err
	}
	d := models.Demand{ID: uuid.NewString(), Details: details, UserID: userID, Timestamp: s.now().UTC()}
	if err := localstore.SetJSON(ctx, s.local, keys.DemandRequests, append(list, d)); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Service) Demands(ctx context.Context) ([]models.Demand, error) {
	var list []models.Demand
	if _, err := localstore.GetJSON(ctx, s.local, keys.DemandRequests, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Announcement returns the banner text, "" when none is set. The banner is
// stored as plain text.
func (s *Service) Announcement(ctx context.Context) (string, error) {
	text, _, err := s.local.Get(ctx, keys.GlobalMessage)
	return text, err
}

// Announce sets the banner. Empty text removes it.
func (s *Service) Announce(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return s.local.Remove(ctx, keys.GlobalMessage)
	}
	return s.local.Set(ctx, keys.GlobalMessage, text)
}
