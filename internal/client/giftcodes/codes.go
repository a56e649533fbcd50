// Package giftcodes issues and redeems one-time credit vouchers.
package giftcodes

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
	ErrCodeNotFound = errors.New("gift code not found")
	ErrCodeRedeemed = errors.New("gift code already redeemed")
)

const codeBodyLength = 5

var randomCode = common.RandomCode

type Service struct {
	local    localstore.Store
	accounts *accounts.Service
	now      func() time.Time
}

func NewService(local localstore.Store, acc *accounts.Service) *Service {
	return &Service{local: local, accounts: acc, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]models.GiftCode, error) {
	var codes []models.GiftCode
	if _, err := localstore.GetJSON(ctx, s.local, keys.AdminCodes, &codes); err != nil {
		return nil, err
	}
	return codes, nil
}

// Generate creates count codes worth amount credits each, shaped
// NST-XXXXX-<amount>. New codes are listed first.
func (s *Service) Generate(ctx context.Context, count, amount int) ([]models.GiftCode, error) {
	if count <= 0 || amount <= 0 {
		return nil, fmt.Errorf("%w: count and amount must be positive", common.ErrorValidation)
	}

	existing, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	fresh := make([]models.GiftCode, 0, count)
	for range count {
		body, err := randomCode(codeBodyLength)
		if err != nil {
			return nil, err
		}
		fresh = append(fresh, models.GiftCode{
			ID:          uuid.NewString(),
			Code:        fmt.Sprintf("NST-%s-%d", body, amount),
			Amount:      amount,
			CreatedAt:   now,
			GeneratedBy: common.AdminSubject,
		})
	}

	if err := localstore.SetJSON(ctx, s.local, keys.AdminCodes, append(fresh, existing...)); err != nil {
		return nil, err
	}
	return fresh, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	codes, err := s.List(ctx)
	if err != nil {
		return err
	}
	for i := range codes {
		if codes[i].ID == id {
			return localstore.SetJSON(ctx, s.local, keys.AdminCodes, append(codes[:i], codes[i+1:]...))
		}
	}
	return ErrCodeNotFound
}

// Redeem marks the code used, then credits its amount to userID. The mark
// is released again when crediting fails.
func (s *Service) Redeem(ctx context.Context, userID, code string) (*models.User, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	codes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range codes {
		if codes[i].Code == code {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrCodeNotFound
	}
	if codes[idx].IsRedeemed {
		return nil, ErrCodeRedeemed
	}

	codes[idx].IsRedeemed = true
	codes[idx].RedeemedBy = userID
	if err := localstore.SetJSON(ctx, s.local, keys.AdminCodes, codes); err != nil {
		return nil, err
	}

	u, err := s.accounts.AdjustCredits(ctx, userID, codes[idx].Amount)
	if err != nil {
		codes[idx].IsRedeemed = false
		codes[idx].RedeemedBy = ""
		if rerr := localstore.SetJSON(ctx, s.local, keys.AdminCodes, codes); rerr != nil {
			return nil, errors.Join(err, fmt.Errorf("release code %s: %w", code, rerr))
		}
		return nil, err
	}
	return u, nil
}
