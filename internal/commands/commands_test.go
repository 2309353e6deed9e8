package commands

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/diogo/optchat/internal/config"
	"github.com/diogo/optchat/internal/dispatch"
	"github.com/diogo/optchat/internal/logging"
	"github.com/diogo/optchat/internal/tui"
)

type fakeTUI struct {
	called bool
	d      *dispatch.Dispatcher
	opts   tui.ChatOptions
	err    error
}

func (f *fakeTUI) RunChat(d *dispatch.Dispatcher, opts tui.ChatOptions) error {
	f.called = true
	f.d = d
	f.opts = opts
	return f.err
}

type testEnv struct {
	deps  *Dependencies
	out   *bytes.Buffer
	err   *bytes.Buffer
	tui   *fakeTUI
	cfg   config.Config
	saved *config.Config
}

// newTestEnv returns dependencies reading input with a zero response delay
// and no terminal attached
func newTestEnv(input string) *testEnv {
	env := &testEnv{
		out: &bytes.Buffer{},
		err: &bytes.Buffer{},
		tui: &fakeTUI{},
		cfg: config.DefaultConfig(),
	}
	env.cfg.ResponseDelayMs = 0

	env.deps = &Dependencies{
		In:  strings.NewReader(input),
		Out: env.out,
		Err: env.err,
		TUI: env.tui,
		LoadConfig: func() (config.Config, error) {
			return env.cfg, nil
		},
		SaveConfig: func(cfg config.Config) error {
			env.saved = &cfg
			return nil
		},
		IsTerminal:    func() bool { return false },
		TerminalWidth: func() int { return 80 },
		Logger:        logging.Discard(),
	}
	return env
}

func (env *testEnv) run(args ...string) error {
	if args == nil {
		args = []string{}
	}
	cmd := NewRootCmd(env.deps)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestRootCommand_Help(t *testing.T) {
	cmd := NewRootCmd(newTestEnv("").deps)
	if cmd.Use != "optchat" {
		t.Errorf("Expected use 'optchat', got %s", cmd.Use)
	}
	if cmd.Short == "" || cmd.Long == "" {
		t.Error("descriptions should not be empty")
	}

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"chat", "script", "config"} {
		if !names[want] {
			t.Errorf("missing subcommand %q", want)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	env := newTestEnv("")
	if err := env.run("-v"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(env.out.String(), "optchat "+Version) {
		t.Errorf("unexpected version output %q", env.out.String())
	}
	if env.tui.called {
		t.Error("version should not start the chat")
	}
}

func TestRootCommand_RejectsArgs(t *testing.T) {
	env := newTestEnv("")
	if err := env.run("hello"); err == nil {
		t.Error("expected an error for positional arguments")
	}
}

func TestChat_StartsTUIInTerminal(t *testing.T) {
	env := newTestEnv("")
	env.deps.IsTerminal = func() bool { return true }

	if err := env.run("chat", "--policy", "queue", "--delay", "250"); err != nil {
		t.Fatal(err)
	}
	if !env.tui.called {
		t.Fatal("expected the TUI to run")
	}
	if env.tui.d.Policy() != dispatch.PolicyQueue {
		t.Errorf("expected queue policy, got %s", env.tui.d.Policy())
	}
	if env.tui.d.Delay().Milliseconds() != 250 {
		t.Errorf("expected 250ms delay, got %v", env.tui.d.Delay())
	}
	if !env.tui.opts.CopyToClipboard {
		t.Error("clipboard copy should follow config")
	}
	if env.tui.d.Store().Len() != 1 {
		t.Error("conversation should start with the greeting")
	}
}

func TestChat_TUIErrorPropagates(t *testing.T) {
	env := newTestEnv("")
	env.deps.IsTerminal = func() bool { return true }
	env.tui.err = errors.New("boom")

	if err := env.run(); err == nil || err.Error() != "boom" {
		t.Errorf("expected TUI error, got %v", err)
	}
}

func TestChat_InvalidPolicy(t *testing.T) {
	env := newTestEnv("")
	err := env.run("--policy", "drop")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "overlap_policy") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestChat_UnknownThemeWarns(t *testing.T) {
	env := newTestEnv("")
	env.deps.IsTerminal = func() bool { return true }

	if err := env.run("--theme", "nope"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(env.err.String(), "unknown theme") {
		t.Errorf("expected theme warning, got %q", env.err.String())
	}
}

func TestApplyFlags(t *testing.T) {
	base := config.DefaultConfig()
	none := func(string) bool { return false }

	tests := []struct {
		name    string
		flags   chatFlags
		changed func(string) bool
		check   func(config.Config) bool
		wantErr bool
	}{
		{
			name:    "no overrides",
			flags:   chatFlags{},
			changed: none,
			check:   func(c config.Config) bool { return c == base },
		},
		{
			name:    "delay only when changed",
			flags:   chatFlags{delayMs: 0},
			changed: func(n string) bool { return n == "delay" },
			check:   func(c config.Config) bool { return c.ResponseDelayMs == 0 },
		},
		{
			name:    "unchanged delay keeps config",
			flags:   chatFlags{delayMs: 0},
			changed: none,
			check:   func(c config.Config) bool { return c.ResponseDelayMs == 1000 },
		},
		{
			name:    "script and theme",
			flags:   chatFlags{script: "x.json", theme: "nord"},
			changed: none,
			check:   func(c config.Config) bool { return c.ScriptPath == "x.json" && c.TUITheme == "nord" },
		},
		{
			name:    "negative delay",
			flags:   chatFlags{delayMs: -5},
			changed: func(n string) bool { return n == "delay" },
			wantErr: true,
		},
		{
			name:    "bad policy",
			flags:   chatFlags{policy: "later"},
			changed: none,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := tt.flags
			got, err := applyFlags(base, &flags, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("applyFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !tt.check(got) {
				t.Errorf("unexpected config %+v", got)
			}
		})
	}
}

func TestFormatErrorMessage(t *testing.T) {
	if formatErrorMessage(nil, "x") != "" {
		t.Error("nil error should format as empty")
	}

	msg := formatErrorMessage(errors.New("plain"), "Context")
	if !strings.Contains(msg, "Context: plain") {
		t.Errorf("unexpected message %q", msg)
	}
	if strings.Contains(msg, "Hint") {
		t.Error("plain errors get no hint")
	}

	_, err := dispatch.LoadTable([]byte("[]"))
	if !strings.Contains(formatErrorMessage(err, "Script"), "optchat script") {
		t.Error("script errors should point at the script command")
	}

	_, err = dispatch.ParsePolicy("nope")
	if !strings.Contains(formatErrorMessage(err, "Config"), "config show") {
		t.Error("config errors should point at config show")
	}
}
