package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/target/todo-sync/internal/bootstrap"
	"github.com/target/todo-sync/internal/domain/todo"
	apperrors "github.com/target/todo-sync/internal/errors"
)

// repl is the interactive shell over the session and todo services. The
// available commands depend on whether a user is signed in.
type repl struct {
	app *bootstrap.App
	in  io.Reader
	out io.Writer
}

func newREPL(app *bootstrap.App, in io.Reader, out io.Writer) *repl {
	return &repl{app: app, in: in, out: out}
}

// Run reads commands until EOF, quit, or context cancellation.
func (r *repl) Run(ctx context.Context) error {
	r.printWelcome()

	scanner := bufio.NewScanner(r.in)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		r.printPrompt()
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return nil
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		name, args := fields[0], fields[1:]
		if name == "quit" || name == "exit" {
			return nil
		}
		if err := r.dispatch(ctx, name, args); err != nil {
			r.printf("error: %s\n", friendlyError(err))
		}
	}
}

func (r *repl) dispatch(ctx context.Context, name string, args []string) error {
	if fn, ok := r.commonCommands()[name]; ok {
		return fn(ctx, args)
	}

	authenticated := r.app.Sessions.State().Authenticated()
	commands := r.anonymousCommands()
	if authenticated {
		commands = r.authenticatedCommands()
	}

	fn, ok := commands[name]
	if !ok {
		r.printf("unknown command %q; type help\n", name)
		return nil
	}
	return fn(ctx, args)
}

type replCommand func(ctx context.Context, args []string) error

func (r *repl) commonCommands() map[string]replCommand {
	return map[string]replCommand{
		"help":   r.cmdHelp,
		"whoami": r.cmdWhoami,
	}
}

func (r *repl) anonymousCommands() map[string]replCommand {
	return map[string]replCommand{
		"login":  r.cmdLogin,
		"signup": r.cmdSignup,
	}
}

func (r *repl) authenticatedCommands() map[string]replCommand {
	return map[string]replCommand{
		"add":    r.cmdAdd,
		"list":   r.cmdList,
		"toggle": r.cmdToggle,
		"rm":     r.cmdRemove,
		"edit":   r.cmdEdit,
		"logout": r.cmdLogout,
	}
}

func (r *repl) cmdHelp(_ context.Context, _ []string) error {
	if r.app.Sessions.State().Authenticated() {
		r.printf("commands:\n")
		r.printf("  add <text>        add a todo\n")
		r.printf("  list              list todos\n")
		r.printf("  toggle <id>       toggle completion\n")
		r.printf("  edit <id> <text>  change a todo's text\n")
		r.printf("  rm <id>           delete a todo\n")
		r.printf("  whoami            show the signed-in user\n")
		r.printf("  logout            sign out\n")
		r.printf("  quit              exit\n")
		return nil
	}
	r.printf("commands:\n")
	r.printf("  login <email> <password>\n")
	r.printf("  signup <email> <password> [name]\n")
	r.printf("  quit\n")
	return nil
}

func (r *repl) cmdLogin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		r.printf("usage: login <email> <password>\n")
		return nil
	}
	if err := r.app.Sessions.Login(ctx, args[0], args[1]); err != nil {
		return err
	}
	r.printGreeting(ctx)
	return nil
}

func (r *repl) cmdSignup(ctx context.Context, args []string) error {
	if len(args) < 2 {
		r.printf("usage: signup <email> <password> [name]\n")
		return nil
	}
	name := strings.Join(args[2:], " ")
	if err := r.app.Sessions.Signup(ctx, name, args[0], args[1]); err != nil {
		return err
	}
	r.printGreeting(ctx)
	return nil
}

func (r *repl) cmdWhoami(ctx context.Context, _ []string) error {
	user, ok := r.app.Sessions.CurrentUser(ctx)
	if !ok {
		r.printf("not signed in\n")
		return nil
	}
	r.printf("%s <%s> (%s)\n", user.DisplayName(), user.Email, user.ID)
	return nil
}

func (r *repl) cmdLogout(ctx context.Context, _ []string) error {
	r.app.Sessions.Logout(ctx)
	r.printf("signed out\n")
	return nil
}

func (r *repl) cmdAdd(ctx context.Context, args []string) error {
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		r.printf("usage: add <text>\n")
		return nil
	}
	item := r.app.Todos.Add(ctx, todo.Input{Text: &text})
	r.printf("added %s\n", shortID(item.ID))
	return nil
}

func (r *repl) cmdList(_ context.Context, _ []string) error {
	todos := r.app.Todos.Todos()
	if len(todos) == 0 {
		r.printf("no todos yet; try add\n")
		return nil
	}

	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tDONE\tTEXT\n")
	for _, item := range todos {
		done := " "
		if item.Completed {
			done = "x"
		}
		fmt.Fprintf(w, "%s\t[%s]\t%s\n", shortID(item.ID), done, item.Text)
	}
	return w.Flush()
}

func (r *repl) cmdToggle(ctx context.Context, args []string) error {
	if len(args) != 1 {
		r.printf("usage: toggle <id>\n")
		return nil
	}
	id, ok := r.resolveID(args[0])
	if !ok {
		return nil
	}
	if !r.app.Todos.Toggle(ctx, id) {
		r.printf("no todo with id %s\n", args[0])
	}
	return nil
}

func (r *repl) cmdRemove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		r.printf("usage: rm <id>\n")
		return nil
	}
	id, ok := r.resolveID(args[0])
	if !ok {
		return nil
	}
	if !r.app.Todos.Remove(ctx, id) {
		r.printf("no todo with id %s\n", args[0])
	}
	return nil
}

func (r *repl) cmdEdit(ctx context.Context, args []string) error {
	if len(args) < 2 {
		r.printf("usage: edit <id> <text>\n")
		return nil
	}
	id, ok := r.resolveID(args[0])
	if !ok {
		return nil
	}
	text := strings.Join(args[1:], " ")
	if !r.app.Todos.Update(ctx, id, todo.Input{Text: &text}) {
		r.printf("no todo with id %s\n", args[0])
	}
	return nil
}

// resolveID expands a short ID prefix to a full todo ID. Ambiguous or
// unknown prefixes are reported to the user.
func (r *repl) resolveID(prefix string) (string, bool) {
	var matches []string
	for _, item := range r.app.Todos.Todos() {
		if strings.HasPrefix(item.ID, prefix) {
			matches = append(matches, item.ID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], true
	case 0:
		r.printf("no todo with id %s\n", prefix)
		return "", false
	default:
		r.printf("id %s is ambiguous (%d matches)\n", prefix, len(matches))
		return "", false
	}
}

func (r *repl) printWelcome() {
	state := r.app.Sessions.State()
	if state.Loading {
		r.printf("loading session...\n")
		return
	}
	if state.Authenticated() {
		r.printf("welcome back\n")
	} else {
		r.printf("not signed in; type help\n")
	}
}

func (r *repl) printGreeting(ctx context.Context) {
	if user, ok := r.app.Sessions.CurrentUser(ctx); ok {
		r.printf("hello, %s\n", user.DisplayName())
	}
}

func (r *repl) printPrompt() {
	if r.app.Sessions.State().Authenticated() {
		r.printf("todo> ")
	} else {
		r.printf("guest> ")
	}
}

func (r *repl) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// friendlyError turns taxonomy errors into messages a user can act on.
func friendlyError(err error) string {
	switch {
	case apperrors.IsUnauthorized(err):
		return "invalid credentials"
	case apperrors.IsNotFound(err):
		return "no account with that email"
	case apperrors.IsConflict(err):
		return "an account with that email already exists"
	case apperrors.IsValidation(err):
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return appErr.Message
		}
		return err.Error()
	case apperrors.IsUnavailable(err):
		return "the service is unreachable; try again"
	default:
		return err.Error()
	}
}
