package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"limeal.fr/cobalt/pkg/game/installer"
	"limeal.fr/cobalt/pkg/game/installer/rules"
	"limeal.fr/cobalt/pkg/game/profile"
	"limeal.fr/cobalt/pkg/logging"
)

// Profile is everything needed to start one game session.
type Profile struct {
	VersionID string
	AccountID *int
	Runtime   JavaRuntime
	JVMArgs   *JVMArgs
	GameDir   string
	Features  []rules.Feature
}

type AccountLookup interface {
	Get(id int) (profile.Account, error)
}

// TokenSource returns the stored access token of an online account, "" if none.
type TokenSource interface {
	Token(accountID int) (string, error)
}

type CommandSource interface {
	GetLaunchCommand(id, dir string, opts installer.Options) ([]string, error)
}

type Builder struct {
	Commands CommandSource
	Accounts AccountLookup
	Tokens   TokenSource

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Log    *logging.Logger
}

func NewBuilder(commands CommandSource, accounts AccountLookup, tokens TokenSource, log *logging.Logger) *Builder {
	if log == nil {
		log = logging.Default()
	}
	return &Builder{
		Commands: commands,
		Accounts: accounts,
		Tokens:   tokens,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Log:      log,
	}
}

// BuildArgv splices the resolved java and the user's JVM flags in front of
// the installer command, dropping the installer's own java at index 0.
func BuildArgv(java string, jvm []string, base []string) []string {
	argv := make([]string, 0, 1+len(jvm)+len(base))
	argv = append(argv, java)
	argv = append(argv, jvm...)
	if len(base) > 1 {
		argv = append(argv, base[1:]...)
	}
	return argv
}

// Check verifies, in order, that a version is selected and installed and
// that the selected account exists. It returns that account.
func (b *Builder) Check(p Profile) (profile.Account, error) {
	if p.VersionID == "" {
		return profile.Account{}, fmt.Errorf("%w: no version selected", ErrNotInstalled)
	}
	if !installer.IsInstalled(p.GameDir, p.VersionID) {
		return profile.Account{}, fmt.Errorf("%w: %s is not installed in %s", ErrNotInstalled, p.VersionID, p.GameDir)
	}
	if p.AccountID == nil {
		return profile.Account{}, ErrNoAccount
	}
	acc, err := b.Accounts.Get(*p.AccountID)
	if err != nil {
		if errors.Is(err, profile.ErrAccountNotFound) {
			return profile.Account{}, fmt.Errorf("%w: account %d no longer exists", ErrNoAccount, *p.AccountID)
		}
		return profile.Account{}, err
	}
	return acc, nil
}

// Prepare checks the profile preconditions and returns the full argv.
func (b *Builder) Prepare(p Profile) ([]string, error) {
	acc, err := b.Check(p)
	if err != nil {
		return nil, err
	}

	token := ""
	if acc.Type == profile.KindEly && b.Tokens != nil {
		if token, err = b.Tokens.Token(acc.ID); err != nil {
			b.Log.Warnf("could not read the token of account %d: %v", acc.ID, err)
			token = ""
		}
	}
	gp := profile.FromAccount(acc, token)

	base, err := b.Commands.GetLaunchCommand(p.VersionID, p.GameDir, installer.Options{
		Username: gp.Username,
		UUID:     gp.UUID,
		Token:    gp.Token,
		UserType: gp.UserType,
		Features: p.Features,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	java := p.Runtime.Path
	if java == "" {
		java = "java"
	}
	var jvm []string
	if p.JVMArgs != nil {
		jvm = p.JVMArgs.Tokens()
	}
	return BuildArgv(java, jvm, base), nil
}

// GameProcess is a running game owned by the caller.
type GameProcess struct {
	cmd *exec.Cmd
	PID int
}

// Start launches the game in its own process group with inherited stdio.
func (b *Builder) Start(ctx context.Context, p Profile) (*GameProcess, error) {
	argv, err := b.Prepare(p)
	if err != nil {
		return nil, err
	}

	b.Log.Debugf("Command: %s", strings.Join(argv, " "))
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = p.GameDir
	cmd.Stdin = b.Stdin
	cmd.Stdout = b.Stdout
	cmd.Stderr = b.Stderr
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: could not start %s, check the java path and the installation: %w",
			ErrLaunch, filepath.Base(argv[0]), err)
	}
	return &GameProcess{cmd: cmd, PID: cmd.Process.Pid}, nil
}

// Run starts the game and blocks until it exits, returning its exit code.
func (b *Builder) Run(ctx context.Context, p Profile) (int, error) {
	proc, err := b.Start(ctx, p)
	if err != nil {
		return -1, err
	}
	return proc.Wait()
}

// Wait blocks until the game exits. Interrupt and terminate signals received
// meanwhile are forwarded to the game's process group. A non-zero exit is
// reported through the code, not as an error.
func (g *GameProcess) Wait() (int, error) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	done := make(chan error, 1)
	go func() { done <- g.cmd.Wait() }()

	for {
		select {
		case sig := <-sigs:
			_ = g.Signal(sig)
		case err := <-done:
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return exitErr.ExitCode(), nil
			}
			if err != nil {
				return -1, fmt.Errorf("%w: %w", ErrLaunch, err)
			}
			return 0, nil
		}
	}
}

// Signal delivers sig to the game's process group.
func (g *GameProcess) Signal(sig os.Signal) error {
	return signalGroup(g.cmd.Process, sig)
}
