package cmd

import (
	"io"
	"os"
	"time"

	"github.com/go-resty/resty/v2"

	"limeal.fr/cobalt/pkg/config"
	"limeal.fr/cobalt/pkg/game/authenticator"
	"limeal.fr/cobalt/pkg/game/folder"
	"limeal.fr/cobalt/pkg/game/installer"
	"limeal.fr/cobalt/pkg/game/launcher"
	"limeal.fr/cobalt/pkg/game/modloader"
	"limeal.fr/cobalt/pkg/game/profile"
	"limeal.fr/cobalt/pkg/logging"
	"limeal.fr/cobalt/pkg/notes"
	"limeal.fr/cobalt/pkg/utils"
)

// App holds the stores and services shared by every command.
type App struct {
	Paths    config.Paths
	Settings *config.Settings
	Config   *config.Store
	Accounts *profile.Store
	Tokens   *authenticator.TokenStore
	Notes    *notes.Store

	Installer   *installer.Client
	Resolver    *launcher.Resolver
	Provisioner *launcher.Provisioner
	Ely         authenticator.Authenticator
	Meta        *resty.Client

	Prompt *Prompter
	Out    io.Writer
	Log    *logging.Logger

	now     func() time.Time
	logFile io.Closer
}

type AppOptions struct {
	Paths *config.Paths
	In    io.Reader
	Out   io.Writer
	Debug bool
}

// NewApp loads launcher.toml, prepares the data directory and wires the services.
func NewApp(opts AppOptions) (*App, error) {
	paths := config.Paths{}
	if opts.Paths != nil {
		paths = *opts.Paths
	} else {
		var err error
		if paths, err = config.DefaultPaths(); err != nil {
			return nil, err
		}
	}
	if err := paths.Ensure(); err != nil {
		return nil, err
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	settings, err := config.LoadOrCreateSettings(paths.SettingsFile())
	if err != nil {
		return nil, err
	}
	logFile, err := logging.Setup(settings.Log.Level, settings.Log.File)
	if err != nil {
		return nil, err
	}
	if opts.Debug {
		logging.SetLevel("debug")
	}
	log := logging.Default()

	meta := utils.NewMetaClient(settings.Network.MetaRetries, settings.Timeout())
	downloader := utils.NewDownloader(settings.Network.DownloadRetries, log)
	downloader.Progress = os.Stderr

	cfg := config.NewStore(paths.ConfigFile(), log)

	return &App{
		Paths:    paths,
		Settings: settings,
		Config:   cfg,
		Accounts: profile.NewStore(paths.AccountsFile(), paths.AccountsSeqFile(), log),
		Tokens:   authenticator.NewTokenStore(),
		Notes:    notes.NewStore(paths.NotesFile()),
		Installer: installer.NewClient(installer.ClientOptions{
			Meta:       meta,
			Downloader: downloader,
			Endpoints:  settings.Endpoints,
			Log:        log,
			Progress:   utils.BarProgress(os.Stderr),
		}),
		Resolver:    launcher.NewResolver(log),
		Provisioner: launcher.NewProvisioner(paths.JavaDir(), settings.Endpoints.Temurin, downloader, cfg, log),
		Ely:         authenticator.NewElyAuthenticator(settings.Endpoints.ElyAuth, meta),
		Meta:        meta,
		Prompt:      NewPrompter(opts.In, opts.Out),
		Out:         opts.Out,
		Log:         log,
		now:         time.Now,
		logFile:     logFile,
	}, nil
}

func (a *App) Close() error {
	if a.logFile != nil {
		return a.logFile.Close()
	}
	return nil
}

// GameDir is the directory a version id is installed to. Modded ids share
// the directory of their base game version.
func (a *App) GameDir(id string, separate bool) string {
	return a.Paths.GameDir(launcher.BaseGameVersion(id), separate)
}

func (a *App) Builder() *launcher.Builder {
	b := launcher.NewBuilder(a.Installer, a.Accounts, a.Tokens, a.Log)
	b.Stdout = a.Out
	return b
}

func (a *App) Dispatcher() *modloader.Dispatcher {
	return modloader.NewDispatcher(a.Installer, a.Meta, a.Settings.Endpoints,
		modloader.ChooserFunc(a.Prompt.ChooseBuild), a.Config, a.Log)
}

func (a *App) Folder(separate bool, version string) *folder.GameFolder {
	return folder.New(a.GameDir(version, separate))
}
