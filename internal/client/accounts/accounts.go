// Package accounts manages student and admin users kept in the local store:
// credentials, credits, the daily reward and inbox messages.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/tutorsync/internal/client/keys"
	"github.com/dmitrijs2005/tutorsync/internal/client/localstore"
	"github.com/dmitrijs2005/tutorsync/internal/client/models"
	"github.com/dmitrijs2005/tutorsync/internal/client/recyclebin"
	"github.com/dmitrijs2005/tutorsync/internal/common"
	"github.com/dmitrijs2005/tutorsync/internal/cryptox"
	"github.com/dmitrijs2005/tutorsync/internal/timex"
	"github.com/google/uuid"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrRewardClaimed       = errors.New("daily reward already claimed")
)

// historyLimit caps the list of recently signed-in user ids.
const historyLimit = 10

type Service struct {
	local localstore.Store
	bin   *recyclebin.Bin
	now   func() time.Time
}

func NewService(local localstore.Store, bin *recyclebin.Bin) *Service {
	return &Service{local: local, bin: bin, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if _, err := localstore.GetJSON(ctx, s.local, keys.Users, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

// Save replaces the stored user with the same id, or appends u. The signed-in
// copy is refreshed when it is the same user.
func (s *Service) Save(ctx context.Context, u *models.User) error {
	users, err := s.List(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range users {
		if users[i].ID == u.ID {
			users[i] = *u
			replaced = true
			break
		}
	}
	if !replaced {
		users = append(users, *u)
	}
	if err := localstore.SetJSON(ctx, s.local, keys.Users, users); err != nil {
		return err
	}

	cur, err := s.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if cur != nil && cur.ID == u.ID {
		return localstore.SetJSON(ctx, s.local, keys.CurrentUser, u)
	}
	return nil
}

// Register creates a user with a hashed password and the signup bonus.
func (s *Service) Register(ctx context.Context, name, email, password string, role models.Role, bonus int) (*models.User, error) {
	if strings.TrimSpace(name) == "" || password == "" {
		return nil, fmt.Errorf("%w: name and password required", common.ErrorValidation)
	}

	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if email != "" && strings.EqualFold(u.Email, email) {
			return nil, fmt.Errorf("email %s: %w", email, common.ErrorAlreadyExists)
		}
	}

	u := &models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Password:  cryptox.HashPassword(password),
		Role:      role,
		Credits:   bonus,
		CreatedAt: s.now().UTC(),
	}
	if err := s.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Lookup finds the user whose id or email matches login.
func (s *Service) Lookup(ctx context.Context, login string) (*models.User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		u := &users[i]
		if u.ID == login || (u.Email != "" && strings.EqualFold(u.Email, login)) {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

// Authenticate matches login against id or email and verifies the password.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	u, err := s.Lookup(ctx, login)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	ok, err := cryptox.VerifyPassword(password, u.Password)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) SetPassword(ctx context.Context, id, password string) error {
	if password == "" {
		return fmt.Errorf("%w: empty password", common.ErrorValidation)
	}
	return s.update(ctx, id, func(u *models.User) error {
		u.Password = cryptox.HashPassword(password)
		return nil
	})
}

// AdjustCredits adds delta (which may be negative) without going below zero.
func (s *Service) AdjustCredits(ctx context.Context, id string, delta int) (*models.User, error) {
	var out *models.User
	err := s.update(ctx, id, func(u *models.User) error {
		u.Credits += delta
		if u.Credits < 0 {
			u.Credits = 0
		}
		out = u
		return nil
	})
	return out, err
}

// HasCredits reports whether u can pay cost. Admins always can.
func HasCredits(u *models.User, cost int) bool {
	return u.IsAdmin() || u.Credits >= cost
}

// Spend charges cost to the user. Admins are never charged.
func (s *Service) Spend(ctx context.Context, id string, cost int) (*models.User, error) {
	var out *models.User
	err := s.update(ctx, id, func(u *models.User) error {
		if u.IsAdmin() {
			out = u
			return nil
		}
		if u.Credits < cost {
			return ErrInsufficientCredits
		}
		u.Credits -= cost
		out = u
		return nil
	})
	return out, err
}

// ClaimDailyReward grants amount once per calendar day.
func (s *Service) ClaimDailyReward(ctx context.Context, id string, amount int) (*models.User, error) {
	now := s.now()
	var out *models.User
	err := s.update(ctx, id, func(u *models.User) error {
		if last := u.LastRewardClaimDate; last != nil &&
			timex.StartOfDay(last.In(now.Location())).Equal(timex.StartOfDay(now)) {
			return ErrRewardClaimed
		}
		u.Credits += amount
		u.LastRewardClaimDate = &now
		out = u
		return nil
	})
	return out, err
}

// SendMessage drops a direct message into the user's inbox.
func (s *Service) SendMessage(ctx context.Context, id, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: empty message", common.ErrorValidation)
	}
	return s.update(ctx, id, func(u *models.User) error {
		u.Inbox = append(u.Inbox, models.InboxMessage{
			ID:   uuid.NewString(),
			Text: text,
			Date: s.now().UTC(),
		})
		return nil
	})
}

// ReadInbox returns the user's messages, oldest first, and marks them read.
func (s *Service) ReadInbox(ctx context.Context, id string) ([]models.InboxMessage, error) {
	var out []models.InboxMessage
	err := s.update(ctx, id, func(u *models.User) error {
		out = append(out, u.Inbox...)
		for i := range u.Inbox {
			u.Inbox[i].Read = true
		}
		return nil
	})
	return out, err
}

// Delete moves the user to the recycle bin.
func (s *Service) Delete(ctx context.Context, id string) error {
	users, err := s.List(ctx)
	if err != nil {
		return err
	}
	for i, u := range users {
		if u.ID != id {
			continue
		}
		if _, err := s.bin.SoftDelete(ctx, models.BinItemUser, u.Name, u, "", u.ID); err != nil {
			return err
		}
		return localstore.SetJSON(ctx, s.local, keys.Users, append(users[:i], users[i+1:]...))
	}
	return ErrUserNotFound
}

func (s *Service) update(ctx context.Context, id string, fn func(u *models.User) error) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(u); err != nil {
		return err
	}
	return s.Save(ctx, u)
}

// CurrentUser returns the signed-in user or nil.
func (s *Service) CurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	found, err := localstore.GetJSON(ctx, s.local, keys.CurrentUser, &u)
	if err != nil || !found {
		return nil, err
	}
	return &u, nil
}

// SignIn marks u as the signed-in user and records it in the device history.
func (s *Service) SignIn(ctx context.Context, u *models.User) error {
	if err := localstore.SetJSON(ctx, s.local, keys.CurrentUser, u); err != nil {
		return err
	}

	var history []string
	if _, err := localstore.GetJSON(ctx, s.local, keys.UserHistory, &history); err != nil {
		return err
	}
	next := []string{u.ID}
	for _, id := range history {
		if id != u.ID && len(next) < historyLimit {
			next = append(next, id)
		}
	}
	return localstore.SetJSON(ctx, s.local, keys.UserHistory, next)
}

func (s *Service) SignOut(ctx context.Context) error {
	return s.local.Remove(ctx, keys.CurrentUser)
}
