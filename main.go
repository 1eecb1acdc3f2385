package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/console"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/mail"
	"github.com/Zachkp/portfolio/internal/store"
	"github.com/Zachkp/portfolio/internal/theme"
	"github.com/Zachkp/portfolio/internal/tui"
	"github.com/Zachkp/portfolio/internal/web"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "portfolio",
	Short:         "Personal portfolio site with an interactive console",
	Long:          rootLong,
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the website",
	Long:  serveLong,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open the console in this terminal",
	Long:  consoleLong,
	Args:  cobra.NoArgs,
	RunE:  runConsole,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $PORTFOLIO_CONFIG or ./portfolio.toml)")
	rootCmd.AddCommand(serveCmd, consoleCmd, adminCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development || cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		return err
	}
	defer logger.Sync()
	gin.SetMode(cfg.Server.Mode)

	st, err := store.Open(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	prefs := theme.Open(st, logger)
	defer prefs.Close()

	site, err := content.NewProvider(cfg.Content.Path, logger)
	if err != nil {
		return err
	}

	manager := console.NewManager(console.ManagerConfig{
		ExitDelay:     cfg.Console.ExitDelay,
		IdleTTL:       cfg.Console.IdleTTL,
		SweepInterval: cfg.Console.SweepInterval,
	}, logger)

	if !cfg.SMTPConfigured() {
		logger.Warn("SMTP credentials not configured; the contact form will report errors")
	}
	mailer := mail.NewSender(mail.Config{
		Host: cfg.SMTP.Host,
		Port: cfg.SMTP.Port,
		User: cfg.SMTP.User,
		Pass: cfg.SMTP.Pass,
		To:   cfg.Contact.ToEmail,
	}, logger)

	h := web.New(web.Deps{
		Content: site,
		Console: manager,
		Theme:   prefs,
		Store:   st,
		Mailer:  mailer,
		Logger:  logger,
		Admin:   web.AdminConfig{Username: cfg.Admin.Username, Password: cfg.Admin.Password},
		Privacy: web.PrivacyConfig{Retention: cfg.Privacy.Retention},
		Contact: web.ContactConfig{RatePerMinute: cfg.Contact.RatePerMinute},
		Debug:   cfg.Server.Mode == gin.DebugMode,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	jobs, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		manager.Run(jobs)
	}()
	go func() {
		defer wg.Done()
		h.Maintain(jobs, time.Hour)
	}()
	if cfg.Content.Watch {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := site.Watch(jobs); err != nil {
				logger.Error("content watch stopped", zap.Error(err))
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("mode", cfg.Server.Mode))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			logger.Error("shutdown", zap.Error(serr))
		}
	}

	cancelJobs()
	wg.Wait()
	h.Wait()
	return err
}

func runConsole(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// The terminal belongs to the console; logs would corrupt the screen.
	logger := zap.NewNop()

	opts := tui.Options{
		BaseURL:   "http://localhost:" + cfg.Server.Port,
		ExitDelay: cfg.Console.ExitDelay,
		Logger:    logger,
	}

	// Reuse the site's database for the theme flag when it is reachable.
	st, err := store.Open(ctx, cfg.Database.Path)
	if err == nil {
		defer st.Close()
		prefs := theme.Open(st, logger)
		defer prefs.Close()
		opts.Theme = prefs
	}

	return tui.Run(ctx, opts)
}
