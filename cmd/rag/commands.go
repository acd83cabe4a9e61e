package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ragchat/internal/api"
	"ragchat/internal/domain"
	"ragchat/internal/extract"
	"ragchat/internal/logging"
	"ragchat/internal/tui"
)

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Rebuild the vector store from the documents folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := buildApp(ctx, cfg, newLogger(cfg, cmd.ErrOrStderr()), false)
			if err != nil {
				return err
			}
			report, err := a.svc.Ingest(ctx)
			if err != nil {
				return fmt.Errorf("ingest failed: %w", err)
			}
			printReport(cmd, report)
			return nil
		},
	}
}

func askCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer one question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, cmd)
			if err != nil {
				return err
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			answer, err := a.svc.Ask(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "maximum time to wait for an answer (0 = no limit)")
	return cmd
}

func chatCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive question loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// info logs would corrupt the terminal UI
			logger := logging.New("error", cfg.Log.Format, cmd.ErrOrStderr())
			a, err := buildApp(cmd.Context(), cfg, logger, true)
			if err != nil {
				return err
			}
			report, err := a.svc.Load(cmd.Context())
			if err != nil {
				return err
			}
			summary := report.Summary
			if summary == "" {
				summary = fmt.Sprintf("%d documents loaded.", report.Stored)
			}
			_, err = tea.NewProgram(tui.New(a.svc, summary, timeout), tea.WithAltScreen()).Run()
			return err
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "maximum time to wait for each answer")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr string
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /ask over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, cmd)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			srv := api.NewServer(a.svc, a.logger, timeout)
			if err := srv.ListenAndServe(ctx, addr); err != nil {
				return err
			}
			a.logger.Info("server_stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8000)")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "maximum time per /ask request")
	return cmd
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that external tools and the documents folder are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ok := true
			if err := extract.CheckAvailable(cfg.PDF.Command); err != nil {
				ok = false
				cmd.Printf("[FAIL] %v\n%s\n", err, extract.InstallInstructions())
			} else {
				cmd.Printf("[ OK ] %s found\n", cfg.PDF.Command)
			}
			if info, err := os.Stat(cfg.Documents.Dir); err != nil || !info.IsDir() {
				ok = false
				cmd.Printf("[FAIL] documents folder %q not found\n", cfg.Documents.Dir)
			} else {
				cmd.Printf("[ OK ] documents folder %s\n", cfg.Documents.Dir)
			}
			if !ok {
				return errors.New("environment check failed")
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("rag version %s\n", version)
		},
	}
}

// loadApp builds the full app and restores (or rebuilds) the store.
func loadApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := buildApp(ctx, cfg, newLogger(cfg, cmd.ErrOrStderr()), true)
	if err != nil {
		return nil, err
	}
	if _, err := a.svc.Load(ctx); err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}
	return a, nil
}

func printReport(cmd *cobra.Command, report *domain.IngestReport) {
	cmd.Printf("Stored %d documents.\n", report.Stored)
	for _, s := range report.Skipped {
		cmd.Printf("  skipped %s: %s\n", s.Path, s.Reason)
	}
	if report.Summary != "" {
		cmd.Printf("\nSummary: %s\n", report.Summary)
	}
}
