package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/toanujgoel/Naukri-Profile-Refresh/browser"
	"github.com/toanujgoel/Naukri-Profile-Refresh/config"
	"github.com/toanujgoel/Naukri-Profile-Refresh/engine"
	"github.com/toanujgoel/Naukri-Profile-Refresh/httpapi"
	"github.com/toanujgoel/Naukri-Profile-Refresh/naukri"
	"github.com/toanujgoel/Naukri-Profile-Refresh/preflight"
	"github.com/toanujgoel/Naukri-Profile-Refresh/resume"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "naukri-refresh",
	Short: "Keeps a Naukri profile fresh by re-saving the headline and re-uploading the resume",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one refresh run and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		result := refresh(cmd.Context(), cfg, logger, func() (engine.Page, func() error, error) {
			return launchPage(cfg.Browser.Headless)
		})
		if !result.Succeeded() {
			return fmt.Errorf("run failed at step %q: %s", result.Step, result.Cause.Error())
		}
		logger.Info("Profile refresh succeeded", "run_id", result.RunID)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the refresh workflow over HTTP (POST /refresh)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		runner := httpapi.RunnerFunc(func(ctx context.Context) engine.RunResult {
			return refresh(ctx, cfg, logger, func() (engine.Page, func() error, error) {
				return launchPage(cfg.Browser.Headless)
			})
		})

		g := gin.Default()
		httpapi.NewServer(runner, logger).Register(g)
		return g.Run(cfg.Server.Addr)
	},
}

func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return cfg, logger, nil
}

// pageFactory opens the page a run will own. The returned cleanup releases
// the underlying browser when the run ends.
type pageFactory func() (engine.Page, func() error, error)

func launchPage(headless bool) (engine.Page, func() error, error) {
	b, err := browser.Launch(headless)
	if err != nil {
		return nil, nil, err
	}
	page, err := b.NewPage()
	if err != nil {
		_ = b.Close()
		return nil, nil, err
	}
	return page, b.Close, nil
}

// refresh performs one complete run: preconditions first, then the browser
// lifecycle, then the fixed step sequence. Every precondition is checked
// before newPage runs, so a missing secret or unreachable target never opens
// a browser, let alone executes a step.
func refresh(ctx context.Context, cfg *config.Config, logger *slog.Logger, newPage pageFactory) engine.RunResult {
	creds, perr := config.Credentials()
	if perr != nil {
		return engine.PreconditionFailure(perr)
	}

	if perr := preflight.Check(ctx, cfg.Target.LoginURL, cfg.Timeouts.Preflight); perr != nil {
		return engine.PreconditionFailure(perr)
	}

	if err := os.MkdirAll(cfg.Browser.ScreenshotDir, 0o755); err != nil {
		return engine.PreconditionFailure(engine.Preconditionf(err, "cannot create screenshot directory"))
	}

	page, cleanup, err := newPage()
	if err != nil {
		return engine.PreconditionFailure(engine.Preconditionf(err, "browser launch failed"))
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Error("Browser shutdown failed", "error", err)
		}
	}()

	run := engine.NewRunContext(ctx, page, creds,
		resume.NewLocator(cfg.Resume.Dir, cfg.Resume.Extensions))

	executor := engine.NewExecutor(logger, engine.NewResolver(logger), cfg.Browser.ScreenshotDir)
	steps := naukri.Steps(
		naukri.Target{LoginURL: cfg.Target.LoginURL, ProfileURL: cfg.Target.ProfileURL},
		naukri.Timeouts{
			Navigation:    cfg.Timeouts.Navigation,
			Step:          cfg.Timeouts.Step,
			Postcondition: cfg.Timeouts.Postcondition,
		},
	)

	return executor.Run(run, steps)
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.AddCommand(runCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
