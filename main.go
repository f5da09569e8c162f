// medchat - A terminal client for the medical chat gateway.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/jeranaias/medchat-tui/internal/apiclient"
	"github.com/jeranaias/medchat-tui/internal/cli"
	"github.com/jeranaias/medchat-tui/internal/config"
	"github.com/jeranaias/medchat-tui/internal/kvstore"
	"github.com/jeranaias/medchat-tui/internal/logging"
	"github.com/jeranaias/medchat-tui/internal/media"
	"github.com/jeranaias/medchat-tui/internal/security"
	"github.com/jeranaias/medchat-tui/internal/session"
	"github.com/jeranaias/medchat-tui/internal/store"
	"github.com/jeranaias/medchat-tui/internal/tokenstore"
	"github.com/jeranaias/medchat-tui/internal/ui/app"
	"github.com/jeranaias/medchat-tui/internal/ui/chat"
	"github.com/jeranaias/medchat-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// PassphraseEnv holds the passphrase for an encrypted credential.
const PassphraseEnv = "MEDCHAT_PASSPHRASE"

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run())
}

func run() int {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdVersion:
		if err := cli.HandleVersion(os.Stdout, args); err != nil {
			cli.DisplayError(os.Stderr, err, args.JSON, "version")
			return cli.GetExitCode(err)
		}
		return cli.ExitSuccess
	case cli.CmdUnknown:
		err := &cli.ValidationError{Reason: fmt.Sprintf("unknown command %q", args.Unknown)}
		cli.DisplayError(os.Stderr, err, args.JSON, "")
		if !args.JSON {
			fmt.Fprintln(os.Stderr)
			cli.PrintUsage(os.Stderr)
		}
		return cli.ExitUsageError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, cfgPath, err := loadConfig(args)
	if err != nil {
		cli.DisplayError(os.Stderr, err, args.JSON, cmd.String())
		return cli.GetExitCode(err)
	}

	logOpts := logging.Options{Level: cfg.Log.Level}
	if p, err := cfg.LogPath(); err == nil {
		logOpts.Path = p
	}
	if args.Verbose && cmd != cli.CmdTUI {
		logOpts.Console = os.Stderr
	}
	log, closeLog, err := logging.New(logOpts)
	if err != nil {
		// A broken log file must not stop the client.
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		log, closeLog = zap.NewNop(), func() error { return nil }
	}
	defer closeLog()

	log.Info("medchat starting",
		zap.String("version", Version),
		zap.String("command", cmd.String()),
		zap.String("gateway", cfg.Gateway.BaseURL))

	svc, err := newServices(cfg, log)
	if err != nil {
		cli.DisplayError(os.Stderr, err, args.JSON, cmd.String())
		return cli.GetExitCode(err)
	}
	defer svc.Close()

	if cmd == cli.CmdTUI {
		if err := runTUI(ctx, cfg, cfgPath, svc, log); err != nil {
			fmt.Fprintf(os.Stderr, "Error running medchat: %v\n", err)
			return cli.ExitGeneralError
		}
		return cli.ExitSuccess
	}

	deps := cli.Deps{
		Session:    svc.provider,
		Chat:       svc.chat,
		Media:      svc.gateway,
		Mic:        svc.capture,
		Config:     cfg,
		ConfigPath: cfgPath,
		Prompt:     cli.NewTermPrompter(os.Stdin, os.Stderr),
		Out:        os.Stdout,
		Err:        os.Stderr,
		Markdown:   cfg.UI.Markdown && cli.IsStdoutTTY(),
		Dark:       isDark(cfg.UI.Theme),
		Width:      cli.AnswerWidth(),
		Color:      cli.ColorsEnabled(),
		Logger:     log,
	}
	if err := cli.Run(ctx, cmd, args, deps); err != nil {
		log.Debug("command failed", zap.String("command", cmd.String()), zap.Error(err))
		cli.DisplayError(os.Stderr, err, args.JSON, cmd.String())
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// loadConfig reads --config or the default file and applies --api.
func loadConfig(args cli.Args) (*config.Config, string, error) {
	path := args.ConfigPath
	if path == "" {
		p, err := config.ConfigPath()
		if err == nil {
			path = p
		}
	}

	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		// Keep the field-level problems reachable for the exit code.
		var verrs config.ValidateErrors
		if errors.As(err, &verrs) {
			return nil, path, err
		}
		return nil, path, cli.WrapError(err, "failed to load configuration")
	}

	if args.API != "" {
		cfg.Gateway.BaseURL = args.API
		if err := cfg.Validate(); err != nil {
			return nil, path, err
		}
	}
	return cfg, path, nil
}

func isDark(theme string) bool {
	switch theme {
	case "dark":
		return true
	case "light":
		return false
	}
	return termenv.HasDarkBackground()
}

// =============================================================================
// SERVICES
// =============================================================================

// services is the object graph shared by the TUI and the line commands.
type services struct {
	kv       *kvstore.SQLiteStore
	gateway  *apiclient.Gateway
	auth     *store.Auth
	chat     *store.Chat
	provider *session.Provider
	capture  *media.Capture
}

func newServices(cfg *config.Config, log *zap.Logger) (*services, error) {
	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, cli.WrapError(err, "failed to resolve database path")
	}
	kv, err := kvstore.OpenSQLite(dbPath)
	if err != nil {
		return nil, cli.WrapError(err, "failed to open local storage")
	}

	opts := []tokenstore.Option{tokenstore.WithLogger(log.Named("tokens"))}
	if cfg.Storage.EncryptCredential {
		sealer, err := security.NewSealer(os.Getenv(PassphraseEnv))
		if err != nil {
			kv.Close()
			return nil, cli.WrapError(err, "credential encryption is enabled; set "+PassphraseEnv)
		}
		opts = append(opts, tokenstore.WithSealer(sealer))
	}
	tokens := tokenstore.New(kv, opts...)

	client := apiclient.New(tokens, apiclient.Options{
		BaseURL:   cfg.Gateway.BaseURL,
		UserAgent: cfg.Gateway.UserAgent,
		Timeout:   time.Duration(cfg.Gateway.RequestTimeoutSecs) * time.Second,
		RateLimit: cfg.Gateway.RateLimitPerSec,
		Logger:    log.Named("http"),
	})
	gw := apiclient.NewGateway(client)

	auth := store.NewAuth(gw, tokens, log.Named("auth"))
	return &services{
		kv:       kv,
		gateway:  gw,
		auth:     auth,
		chat:     store.NewChat(gw, log.Named("chat")),
		provider: session.NewProvider(auth, tokens, log.Named("session")),
		capture:  media.NewCapture(&media.CommandRecorder{Command: cfg.Media.RecordCommand}),
	}, nil
}

// Close releases the local database.
func (s *services) Close() error {
	return s.kv.Close()
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(ctx context.Context, cfg *config.Config, cfgPath string, svc *services, log *zap.Logger) error {
	theme := styles.NewTheme(cfg.UI.Theme)

	m := app.New(ctx, app.Options{
		Session: svc.provider,
		Chat: chat.Options{
			Chat:           svc.chat,
			Media:          svc.gateway,
			Mic:            svc.capture,
			MaxUploadBytes: int64(cfg.Media.MaxUploadMB) << 20,
			Markdown:       cfg.UI.Markdown,
			Logger:         log.Named("ui"),
		},
		Theme:       theme,
		ShowSidebar: cfg.UI.ShowSidebar,
		Logger:      log.Named("app"),
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if cfgPath != "" {
		if _, err := os.Stat(cfgPath); err == nil {
			err := config.Watch(ctx, cfgPath, func(c *config.Config, err error) {
				p.Send(app.ConfigReloadedMsg{Config: c, Err: err})
			})
			if err != nil {
				log.Warn("config watch disabled", zap.Error(err))
			}
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
