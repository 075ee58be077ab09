// Package claudecode installs the Claude Code CLI via npm and manages
// plugin installation after the user logs in.
package claudecode

import (
	"path/filepath"
	"strings"

	"github.com/outfit-dev/outfit/pkg/authwatch"
	"github.com/outfit-dev/outfit/pkg/features"
	"github.com/outfit-dev/outfit/pkg/operations"
	"github.com/outfit-dev/outfit/pkg/paths"
	"github.com/outfit-dev/outfit/pkg/shellfrag"
	"github.com/outfit-dev/outfit/pkg/startup"
)

const (
	fragmentIndex = 80
	hookIndex     = 30

	npmPackage = "@anthropic-ai/claude-code"

	// transientAuthError is what the CLI reports when the credential
	// file exists but the session is not yet established.
	transientAuthError = "not logged in"
)

type feature struct{}

func init() {
	features.Register(feature{})
}

func (feature) Name() string        { return "claudecode" }
func (feature) Description() string { return "Claude Code CLI" }

func (feature) Version(ctx features.Context) string {
	return ctx.Config.Version("claudecode")
}

func (f feature) Plan(ctx features.Context) ([]operations.Operation, error) {
	version := f.Version(ctx)
	spec := npmPackage
	if version != "" && version != "latest" {
		spec += "@" + version
	}

	ops := []operations.Operation{
		operations.RunOnce("claudecode", "claudecode-npm-"+version,
			"npm", "install", "-g", spec),
	}

	frag := shellfrag.New("claudecode").
		Alias("cc", "claude").
		Alias("ccr", "claude --resume")
	ops = append(ops, features.FragmentOps(ctx, fragmentIndex, "claudecode", frag)...)

	// Plugins need a logged-in session, so first startup starts the
	// auth watcher rather than installing them directly.
	hook := startup.Script("nohup outfit watch-auth claudecode >/dev/null 2>&1 &")
	ops = append(ops,
		operations.MkDir("claudecode", ctx.Paths.FirstStartupDir()),
		operations.Script("claudecode", ctx.Paths.HookPath(hookIndex, "claudecode-plugins"), hook),
	)

	ops = append(ops, features.VerifyScriptOps(ctx, "claudecode", f.VerifyCommand())...)
	return ops, nil
}

func (feature) VerifyCommand() string { return "claude --version" }

// AuthWatch waits for the credential file the CLI writes at login.
// Plugin installation right after login intermittently reports the
// session as missing, hence the transient retry.
func (feature) AuthWatch(ctx features.Context) authwatch.Config {
	cfg := authwatch.DefaultConfig(paths.ExpandHome("~/.claude/.credentials.json"))
	cfg.MarkerPath = filepath.Join(ctx.Paths.MarkerDir(), "claudecode-plugins")
	cfg.TransientError = transientAuthError
	return cfg
}

// PostAuth installs the configured plugins.
func (feature) PostAuth(ctx features.Context) (string, []string) {
	plugins := ctx.Config.Strings("claudecode.plugins")
	if len(plugins) == 0 {
		return "claude", []string{"--version"}
	}
	script := make([]string, 0, len(plugins))
	for _, plugin := range plugins {
		script = append(script, "claude plugin install "+plugin)
	}
	return "bash", []string{"-c", strings.Join(script, " && ")}
}

func (feature) Doc() string {
	return `# Claude Code

Installs the Claude Code CLI globally via npm. Plugins listed in
` + "`claudecode.plugins`" + ` are installed by a watcher once the user logs
in and ~/.claude/.credentials.json appears; the "not logged in" race
right after login is retried with backoff.

- Version: ` + "`claudecode.version`" + ` or ` + "`CLAUDE_CODE_VERSION`" + `.
- Verify with ` + "`test-claudecode`" + `.
`
}
