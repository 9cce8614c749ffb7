package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	relogin  bool
	failWith error

	calls []string
}

func (f *fakeExec) record(name string, args ...any) error {
	call := name
	for _, a := range args {
		call += " " + fmt.Sprint(a)
	}
	f.calls = append(f.calls, call)
	return f.failWith
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) consumeRelogin() bool {
	r := f.relogin
	f.relogin = false
	return r
}

func (f *fakeExec) Register(context.Context) error { return f.record("register") }

func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}

func (f *fakeExec) PhoneLogin(context.Context) error { return f.record("phonelogin") }

func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}

func (f *fakeExec) WhoAmI(context.Context) error                 { return f.record("whoami") }
func (f *fakeExec) Profile(context.Context) error                { return f.record("profile") }
func (f *fakeExec) EditProfile(context.Context) error            { return f.record("editprofile") }
func (f *fakeExec) Avatar(_ context.Context, path string) error  { return f.record("avatar", path) }
func (f *fakeExec) Latest(context.Context) error                 { return f.record("latest") }
func (f *fakeExec) More(context.Context) error                   { return f.record("more") }
func (f *fakeExec) Mine(_ context.Context, more bool) error      { return f.record("mine", more) }
func (f *fakeExec) Show(_ context.Context, id string) error      { return f.record("show", id) }
func (f *fakeExec) Publish(context.Context) error                { return f.record("publish") }
func (f *fakeExec) Delete(_ context.Context, id string) error    { return f.record("delete", id) }
func (f *fakeExec) Hot(_ context.Context, more bool) error       { return f.record("hot", more) }
func (f *fakeExec) Search(_ context.Context, q string) error     { return f.record("search", q) }
func (f *fakeExec) HotTerms(context.Context) error               { return f.record("hotterms") }
func (f *fakeExec) Admin(_ context.Context, args []string) error { return f.record("admin", args) }

func capturePrints(t *testing.T) *[]string {
	t.Helper()
	var out []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		out = append(out, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &out
}

func runLines(exec execIface, lines ...string) {
	reader := bufio.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	runREPL(context.Background(), exec, func() string { return "" }, reader)
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	capturePrints(t)

	exec := &fakeExec{}
	runLines(exec,
		"login",
		"latest",
		"more",
		"mine",
		"mine more",
		"hot",
		"hot more",
		"show 12",
		"publish",
		"delete 12",
		"search red   apples",
		"hotterms",
		"profile",
		"editprofile",
		"avatar me.png",
		"whoami",
		"admin audit 3 reject spam",
		"logout",
		"exit",
		"latest",
	)

	assert.Equal(t, []string{
		"login",
		"latest",
		"more",
		"mine false",
		"mine true",
		"hot false",
		"hot true",
		"show 12",
		"publish",
		"delete 12",
		"search red apples",
		"hotterms",
		"profile",
		"editprofile",
		"avatar me.png",
		"whoami",
		"admin [audit 3 reject spam]",
		"logout",
	}, exec.calls)
}

func TestRunREPL_UsageErrorsDoNotDispatch(t *testing.T) {
	out := capturePrints(t)

	exec := &fakeExec{loggedIn: true}
	runLines(exec, "show", "delete", "avatar", "search", "foobar", "quit")

	assert.Empty(t, exec.calls)
	assert.Contains(t, *out, "Usage: show <id>")
	assert.Contains(t, *out, "Usage: search <query>")
	assert.Contains(t, *out, "Unknown command: foobar")
	assert.Contains(t, *out, "Bye!")
}

func TestRunREPL_HelpDependsOnLogin(t *testing.T) {
	out := capturePrints(t)

	runLines(&fakeExec{}, "help")
	assert.Contains(t, *out, helpAnonymous)
	assert.NotContains(t, *out, helpLoggedIn)

	*out = nil
	runLines(&fakeExec{loggedIn: true}, "help")
	assert.Contains(t, *out, helpLoggedIn)
}

func TestRunREPL_ReloginRunsBeforeNextCommand(t *testing.T) {
	capturePrints(t)

	exec := &fakeExec{relogin: true}
	runLines(exec, "latest")

	assert.Equal(t, []string{"login", "latest"}, exec.calls)
}

func TestRunREPL_ErrorsAreReportedAndLoopContinues(t *testing.T) {
	out := capturePrints(t)

	exec := &fakeExec{failWith: errors.New("boom")}
	runLines(exec, "latest", "more")

	assert.Equal(t, []string{"latest", "more"}, exec.calls)
	assert.Contains(t, *out, "Error: boom")
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	capturePrints(t)

	exec := &fakeExec{}
	runLines(exec, "hotterms")

	assert.Equal(t, []string{"hotterms"}, exec.calls)
}
