package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

var (
	ErrAdminOnly   = errors.New("admin only")
	ErrNotLoggedIn = errors.New("not logged in")
	ErrUsage       = errors.New("usage")
)

type access int

const (
	accessAny access = iota
	accessUser
	accessAdmin
)

// command is one REPL verb.
type command struct {
	usage  string
	access access
	run    func(ctx context.Context, args []string) error
}

// session tells the REPL who is at the keyboard.
type session interface {
	isLoggedIn() bool
	isAdmin() bool
}

func allowed(s session, a access) error {
	switch {
	case a == accessAdmin && !s.isAdmin():
		return ErrAdminOnly
	case a != accessAny && !s.isLoggedIn():
		return ErrNotLoggedIn
	}
	return nil
}

func helpText(s session, cmds map[string]command) string {
	names := make([]string, 0, len(cmds))
	for name, c := range cmds {
		if allowed(s, c.access) == nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return "Available commands: " + strings.Join(names, ", ") + ", help, exit"
}

// splitArgs splits line on whitespace. Double quotes group words into one
// argument, so "Social Science" names a single subject.
func splitArgs(line string) []string {
	var (
		out     []string
		cur     strings.Builder
		quoted  bool
		pending bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			pending = true
		case unicode.IsSpace(r) && !quoted:
			if pending {
				out = append(out, cur.String())
				cur.Reset()
				pending = false
			}
		default:
			cur.WriteRune(r)
			pending = true
		}
	}
	if pending {
		out = append(out, cur.String())
	}
	return out
}

// runREPL reads one command per line and dispatches it from cmds. The loop
// ends on EOF or on "exit"/"quit". Handler errors are printed and the loop
// continues. Handlers prompting for more input share reader.
func runREPL(ctx context.Context, s session, cmds map[string]command, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("tutorsync %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := splitArgs(line)
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]

		switch name {
		case "help":
			printlnFn(helpText(s, cmds))
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		c, ok := cmds[name]
		if !ok {
			printlnFn("Unknown command:", name)
			continue
		}
		if err := allowed(s, c.access); err != nil {
			printlnFn("Error:", err)
			continue
		}

		err = c.run(ctx, args)
		switch {
		case errors.Is(err, ErrUsage):
			printlnFn("Usage:", name, c.usage)
		case err != nil:
			printlnFn("Error:", err)
		}
	}
}
