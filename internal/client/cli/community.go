package cli

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/tutorsync/internal/client/settings"
	"github.com/dmitrijs2005/tutorsync/internal/common"
)

// Recover files an access request for a forgotten password.
func (a *App) Recover(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	mobile := ""
	if len(args) == 2 {
		mobile = args[1]
	}
	req, err := a.social.RequestRecovery(ctx, args[0], mobile)
	if err != nil {
		return err
	}
	a.printf("Request %s is pending, an admin will reset your password\n", req.ID)
	return nil
}

func (a *App) Requests(ctx context.Context, _ []string) error {
	list, err := a.social.PendingRequests(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("No pending requests\n")
	}
	for _, r := range list {
		a.printf("%s  %-20s %-12s %s\n", r.ID, r.Name, r.Mobile, r.UserID)
	}
	return nil
}

// Approve resolves a recovery request and sets the password typed at the
// prompt. An empty password resolves without a reset.
func (a *App) Approve(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	pw, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	req, err := a.social.Approve(ctx, args[0], string(pw))
	if err != nil {
		return err
	}
	_ = a.activity.Record(ctx, "ACCESS_APPROVED", req.Name)
	a.printf("Access restored for %s\n", req.Name)
	return nil
}

func (a *App) Demand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	if _, err := a.social.Demand(ctx, a.currentUser().ID, strings.Join(args, " ")); err != nil {
		return err
	}
	a.printf("Request sent\n")
	return nil
}

func (a *App) Demands(ctx context.Context, _ []string) error {
	list, err := a.social.Demands(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("No demands yet\n")
	}
	for _, d := range list {
		a.printf("%s  %s\n", d.Timestamp.Format(time.DateTime), d.Details)
	}
	return nil
}

// Announce sets the banner students see. No text clears it.
func (a *App) Announce(ctx context.Context, args []string) error {
	text := strings.Join(args, " ")
	if err := a.social.Announce(ctx, text); err != nil {
		return err
	}
	if text == "" {
		a.printf("Announcement cleared\n")
		return nil
	}
	_ = a.activity.Record(ctx, "ANNOUNCEMENT", text)
	a.printf("Announcement set\n")
	return nil
}

func (a *App) printAnnouncement(ctx context.Context) {
	text, err := a.social.Announcement(ctx)
	if err != nil {
		a.logger.Warn(ctx, "announcement unreadable", "error", err)
		return
	}
	if text != "" {
		a.printf("announcement: %s\n", text)
	}
}

// Chat prints the chat room, or posts the arguments as a message.
func (a *App) Chat(ctx context.Context, args []string) error {
	if len(args) == 0 {
		msgs, err := a.social.Chat(ctx)
		if err != nil {
			return err
		}
		for _, m := range msgs {
			a.printf("%s  %s %s: %s\n", m.Timestamp.Format(time.DateTime), shortID(m.ID), m.UserName, m.Text)
		}
		return nil
	}

	cfg, err := settings.Load(ctx, a.local)
	if err != nil {
		return err
	}
	_, u, err := a.social.Post(ctx, a.currentUser().ID, strings.Join(args, " "), cfg.ChatCost)
	if err != nil {
		return err
	}
	a.setUser(u)
	a.printf("Sent, %d credits left\n", u.Credits)
	return nil
}

func (a *App) ChatEdit(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	id, err := a.chatID(ctx, args[0])
	if err != nil {
		return err
	}
	return a.social.Edit(ctx, id, strings.Join(args[1:], " "))
}

func (a *App) ChatDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := a.chatID(ctx, args[0])
	if err != nil {
		return err
	}
	if err := a.social.Hide(ctx, id); err != nil {
		return err
	}
	_ = a.activity.Record(ctx, "CHAT_DELETED", id)
	return nil
}

// chatID expands the short id Chat prints to a full message id.
func (a *App) chatID(ctx context.Context, prefix string) (string, error) {
	msgs, err := a.social.Chat(ctx)
	if err != nil {
		return "", err
	}
	for _, m := range msgs {
		if strings.HasPrefix(m.ID, prefix) {
			return m.ID, nil
		}
	}
	return prefix, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
