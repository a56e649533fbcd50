package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/tutorsync/internal/client/giftcodes"
	"github.com/dmitrijs2005/tutorsync/internal/common"
)

func (a *App) Bin(ctx context.Context, _ []string) error {
	items, err := a.bin.List(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		a.printf("Recycle bin is empty\n")
	}
	for _, it := range items {
		a.printf("%s  %-8s %-30s expires %s\n", it.ID, it.Type, it.Name, it.ExpiresAt.Format(time.DateOnly))
	}
	return nil
}

func (a *App) RestoreItem(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	it, err := a.bin.Restore(ctx, args[0])
	if err != nil {
		return err
	}
	_ = a.activity.Record(ctx, "RESTORE", string(it.Type)+" "+it.Name)
	a.printf("Restored %s %s\n", it.Type, it.Name)
	return nil
}

func (a *App) Purge(ctx context.Context, _ []string) error {
	n, err := a.bin.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	a.printf("Removed %d expired items\n", n)
	return nil
}

func (a *App) Codes(ctx context.Context, _ []string) error {
	codes, err := a.codes.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range codes {
		state := "open"
		if c.IsRedeemed {
			state = "redeemed by " + c.RedeemedBy
		}
		a.printf("%-18s %5d  %s\n", c.Code, c.Amount, state)
	}
	return nil
}

func (a *App) GenCodes(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	count, err := atoi(args[0])
	if err != nil {
		return err
	}
	amount, err := atoi(args[1])
	if err != nil {
		return err
	}

	codes, err := a.codes.Generate(ctx, count, amount)
	if err != nil {
		return err
	}
	for _, c := range codes {
		a.printf("%s\n", c.Code)
	}
	_ = a.activity.Record(ctx, "CODES_GENERATED", args[0]+" x "+args[1])
	return nil
}

func (a *App) Users(ctx context.Context, _ []string) error {
	users, err := a.accounts.List(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		a.printf("%s  %-20s %-8s %6d credits\n", u.ID, u.Name, u.Role, u.Credits)
	}
	return nil
}

// Credits adds delta (which may be negative) to a user's balance.
func (a *App) Credits(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	delta, err := atoi(args[1])
	if err != nil {
		return err
	}
	u, err := a.accounts.AdjustCredits(ctx, args[0], delta)
	if err != nil {
		return err
	}
	if cur := a.currentUser(); cur != nil && cur.ID == u.ID {
		a.setUser(u)
	}
	_ = a.activity.Record(ctx, "CREDITS_ADJUSTED", u.Name+" "+args[1])
	a.printf("%s now has %d credits\n", u.Name, u.Credits)
	return nil
}

func (a *App) Log(ctx context.Context, _ []string) error {
	entries, err := a.activity.List(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		a.printf("%s  %-18s %s\n", e.Timestamp.Format(time.DateTime), e.Action, e.Details)
	}
	return nil
}

// BinDelete removes an item from the recycle bin for good.
func (a *App) BinDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	if err := a.bin.PermanentDelete(ctx, args[0]); err != nil {
		return err
	}
	_ = a.activity.Record(ctx, "BIN_DELETE", args[0])
	a.printf("Deleted %s\n", args[0])
	return nil
}

// DelCode withdraws a gift code given as printed by codes.
func (a *App) DelCode(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	codes, err := a.codes.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range codes {
		if !strings.EqualFold(c.Code, args[0]) && c.ID != args[0] {
			continue
		}
		if err := a.codes.Delete(ctx, c.ID); err != nil {
			return err
		}
		_ = a.activity.Record(ctx, "CODE_DELETED", c.Code)
		a.printf("Deleted %s\n", c.Code)
		return nil
	}
	return giftcodes.ErrCodeNotFound
}

// Message drops a direct message into a user's inbox.
func (a *App) Message(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	if err := a.accounts.SendMessage(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
		return err
	}
	_ = a.activity.Record(ctx, "MESSAGE_SENT", args[0])
	a.printf("Message sent\n")
	return nil
}

func (a *App) Inbox(ctx context.Context, _ []string) error {
	msgs, err := a.accounts.ReadInbox(ctx, a.currentUser().ID)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		a.printf("Inbox is empty\n")
	}
	for _, m := range msgs {
		mark := " "
		if !m.Read {
			mark = "*"
		}
		a.printf("%s %s  %s\n", mark, m.Date.Format(time.DateTime), m.Text)
	}
	if u, err := a.accounts.Get(ctx, a.currentUser().ID); err == nil {
		a.setUser(u)
	}
	return nil
}

// Passwd changes the signed-in user's password. Admins may name another
// user.
func (a *App) Passwd(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	id := a.currentUser().ID
	if len(args) == 1 {
		if !a.isAdmin() {
			return ErrAdminOnly
		}
		id = args[0]
	}
	pw, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	if err := a.accounts.SetPassword(ctx, id, string(pw)); err != nil {
		return err
	}
	if id != a.currentUser().ID {
		_ = a.activity.Record(ctx, "PASSWORD_RESET", id)
	}
	a.printf("Password changed\n")
	return nil
}

// DeleteUser moves a user to the recycle bin. The signed-in account cannot
// delete itself.
func (a *App) DeleteUser(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	if args[0] == a.currentUser().ID {
		return fmt.Errorf("%w: cannot delete the signed-in account", common.ErrorValidation)
	}
	u, err := a.accounts.Get(ctx, args[0])
	if err != nil {
		return err
	}
	if err := a.accounts.Delete(ctx, u.ID); err != nil {
		return err
	}
	_ = a.activity.Record(ctx, "USER_DELETED", u.Name)
	a.printf("Moved %s to the recycle bin\n", u.Name)
	return nil
}
