package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tutorsync/internal/client/accounts"
	"github.com/dmitrijs2005/tutorsync/internal/client/keys"
	"github.com/dmitrijs2005/tutorsync/internal/client/models"
	"github.com/dmitrijs2005/tutorsync/internal/client/settings"
	"github.com/dmitrijs2005/tutorsync/internal/common"
)

func (a *App) readCredentials() (string, string, error) {
	login, err := getSimpleText(a.reader, "Enter id or email", a.out)
	if err != nil {
		return "", "", err
	}
	pw, err := getPassword(a.out)
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(pw)
	return login, string(pw), nil
}

func (a *App) createAccount(ctx context.Context, role models.Role, bonus int) (*models.User, error) {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return nil, err
	}
	email, err := getSimpleText(a.reader, "Enter email (optional)", a.out)
	if err != nil {
		return nil, err
	}
	pw, err := getPassword(a.out)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(pw)

	return a.accounts.Register(ctx, name, email, string(pw), role, bonus)
}

// SetupAdmin creates the administrator account and signs it in.
func (a *App) SetupAdmin(ctx context.Context) error {
	u, err := a.createAccount(ctx, models.RoleAdmin, 0)
	if err != nil {
		return err
	}
	if err := a.accounts.SignIn(ctx, u); err != nil {
		return err
	}
	a.setUser(u)
	a.printf("Administrator %s created (id %s)\n", u.Name, u.ID)
	return nil
}

// Register creates a student account with the configured signup bonus.
func (a *App) Register(ctx context.Context, _ []string) error {
	cfg, err := settings.Load(ctx, a.local)
	if err != nil {
		return err
	}
	u, err := a.createAccount(ctx, models.RoleStudent, cfg.SignupBonus)
	if err != nil {
		return err
	}
	a.printf("Account created, your id is %s\n", u.ID)
	return nil
}

func (a *App) Login(ctx context.Context, _ []string) error {
	login, pw, err := a.readCredentials()
	if err != nil {
		return err
	}

	u, err := a.accounts.Authenticate(ctx, login, pw)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			a.logger.Info(ctx, "login rejected", "login", login)
		}
		return err
	}
	if err := a.accounts.SignIn(ctx, u); err != nil {
		return err
	}
	a.setUser(u)
	a.printf("Welcome, %s\n", u.Name)
	if n := u.UnreadCount(); n > 0 {
		a.printf("%d unread messages, type inbox to read them\n", n)
	}
	a.printAnnouncement(ctx)
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.accounts.SignOut(ctx); err != nil {
		return err
	}
	a.setUser(nil)
	return nil
}

// Status prints connectivity, the signed-in user and the data version.
func (a *App) Status(ctx context.Context, _ []string) error {
	a.mu.Lock()
	mode, u := a.mode, a.user
	a.mu.Unlock()

	a.printf("mode: %s\n", mode)
	a.printf("remote sync: %t\n", a.cache.CheckConnection())
	if u != nil {
		a.printf("user: %s (%s) credits: %d\n", u.Name, u.Role, u.Credits)
	}
	a.printAnnouncement(ctx)

	version, ok, err := a.local.Get(ctx, keys.DataVersion)
	if err != nil {
		return err
	}
	if !ok {
		version = "none"
	}
	a.printf("data version: %s\n", version)

	all, err := a.local.Keys(ctx)
	if err != nil {
		return err
	}
	a.printf("local keys: %d\n", len(all))
	return nil
}

// Reward claims the daily credit reward.
func (a *App) Reward(ctx context.Context, _ []string) error {
	cfg, err := settings.Load(ctx, a.local)
	if err != nil {
		return err
	}
	u, err := a.accounts.ClaimDailyReward(ctx, a.currentUser().ID, cfg.DailyReward)
	if err != nil {
		return err
	}
	a.setUser(u)
	a.printf("+%d credits, balance %d\n", cfg.DailyReward, u.Credits)
	return nil
}

func (a *App) Redeem(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	u, err := a.codes.Redeem(ctx, a.currentUser().ID, args[0])
	if err != nil {
		return fmt.Errorf("redeem: %w", err)
	}
	a.setUser(u)
	a.printf("Code redeemed, balance %d\n", u.Credits)
	return nil
}
