package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/course-viewer/internal/repository"
	"github.com/noah-isme/course-viewer/internal/tui"
	"github.com/noah-isme/course-viewer/pkg/config"
	"github.com/noah-isme/course-viewer/pkg/logger"
)

func newTUICmd() *cobra.Command {
	var logFile string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Edit courses in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			// The screen owns stdout.
			cfg.Log.Output = logFile
			return runTUI(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", filepath.Join(os.TempDir(), "courseapp.log"), "file receiving log output")
	return cmd
}

func runTUI(ctx context.Context, cfg *config.Config) error {
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := repository.NewCourseStore()
	logr.Info("terminal screen starting", zap.Int("courses", len(store.Courses())))

	p := tea.NewProgram(tui.NewModel(ctx, store), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run terminal screen: %w", err)
	}

	logr.Info("terminal screen closed", zap.Uint64("version", store.Version()))
	return nil
}
