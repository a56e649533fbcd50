package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/tutorsync/internal/client/models"
)

// getSimpleText and getPassword point at the interactive input helpers and
// are swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getLines      = GetLines
)

const selectionUsage = "<board> <class> <stream|-> <subject>"

func (a *App) commands() map[string]command {
	return map[string]command{
		"status":   {usage: "", access: accessAny, run: a.Status},
		"login":    {usage: "", access: accessAny, run: a.Login},
		"register": {usage: "", access: accessAny, run: a.Register},
		"logout":   {usage: "", access: accessUser, run: a.Logout},
		"reward":   {usage: "", access: accessUser, run: a.Reward},
		"redeem":   {usage: "<code>", access: accessUser, run: a.Redeem},
		"chapters": {usage: selectionUsage + " [language]", access: accessUser, run: a.Chapters},
		"lesson":   {usage: selectionUsage + " <chapterId> <type>", access: accessUser, run: a.Lesson},
		"subjects": {usage: "<class> [stream]", access: accessUser, run: a.Subjects},
		"inbox":    {usage: "", access: accessUser, run: a.Inbox},
		"passwd":   {usage: "[userId]", access: accessUser, run: a.Passwd},
		"recover":  {usage: "<id|email> [mobile]", access: accessAny, run: a.Recover},
		"demand":   {usage: "<text>", access: accessUser, run: a.Demand},
		"chat":     {usage: "[text]", access: accessUser, run: a.Chat},

		"read":         {usage: selectionUsage + " <chapterId>", access: accessAdmin, run: a.Read},
		"save":         {usage: selectionUsage + " <chapterId>", access: accessAdmin, run: a.Save},
		"links":        {usage: selectionUsage, access: accessAdmin, run: a.Links},
		"export":       {usage: "<path.json|path.zip>", access: accessAdmin, run: a.Export},
		"deploy":       {usage: "", access: accessAdmin, run: a.Deploy},
		"pull":         {usage: "", access: accessAdmin, run: a.Pull},
		"bin":          {usage: "", access: accessAdmin, run: a.Bin},
		"restore-item": {usage: "<id>", access: accessAdmin, run: a.RestoreItem},
		"purge":        {usage: "", access: accessAdmin, run: a.Purge},
		"codes":        {usage: "", access: accessAdmin, run: a.Codes},
		"gen-codes":    {usage: "<count> <amount>", access: accessAdmin, run: a.GenCodes},
		"users":        {usage: "", access: accessAdmin, run: a.Users},
		"credits":      {usage: "<userId> <delta>", access: accessAdmin, run: a.Credits},
		"log":          {usage: "", access: accessAdmin, run: a.Log},

		"message":        {usage: "<userId> <text>", access: accessAdmin, run: a.Message},
		"delete-user":    {usage: "<userId>", access: accessAdmin, run: a.DeleteUser},
		"add-subject":    {usage: "<id> <name>", access: accessAdmin, run: a.AddSubject},
		"save-syllabus":  {usage: selectionUsage, access: accessAdmin, run: a.SaveSyllabus},
		"delete-chapter": {usage: selectionUsage + " <chapterId>", access: accessAdmin, run: a.DeleteChapter},
		"bin-delete":     {usage: "<id>", access: accessAdmin, run: a.BinDelete},
		"del-code":       {usage: "<code>", access: accessAdmin, run: a.DelCode},
		"requests":       {usage: "", access: accessAdmin, run: a.Requests},
		"approve":        {usage: "<requestId>", access: accessAdmin, run: a.Approve},
		"demands":        {usage: "", access: accessAdmin, run: a.Demands},
		"announce":       {usage: "[text]", access: accessAdmin, run: a.Announce},
		"chat-edit":      {usage: "<messageId> <text>", access: accessAdmin, run: a.ChatEdit},
		"chat-delete":    {usage: "<messageId>", access: accessAdmin, run: a.ChatDelete},
	}
}

// parseSelection reads board, class, stream and subject from args. A stream
// of "-" means none.
func parseSelection(args []string) (models.Selection, []string, error) {
	if len(args) < 4 {
		return models.Selection{}, nil, ErrUsage
	}
	sel := models.Selection{Board: args[0], ClassLevel: args[1], Stream: args[2], Subject: args[3], Language: "English"}
	if sel.Stream == "-" {
		sel.Stream = ""
	}
	return sel, args[4:], nil
}

// selection is parseSelection with the subject resolved by id or name
// against the subject pool.
func (a *App) selection(ctx context.Context, args []string) (models.Selection, []string, error) {
	sel, rest, err := parseSelection(args)
	if err != nil {
		return sel, nil, err
	}
	sel.Subject = a.syllabus.SubjectName(ctx, sel.Subject)
	return sel, rest, nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func atoi(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return n, nil
}
