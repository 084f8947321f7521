// Command courseapp serves and edits a shared list of courses.
//
// Usage:
//
//	courseapp serve            # HTTP API, SSE and WebSocket streams
//	courseapp serve --port 9090
//	courseapp tui              # terminal course editor
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// @title Course Viewer API
// @version 1.0.0
// @description Course list with a single selection, live snapshot streams and exports.
// @BasePath /api/v1
// @schemes http

var rootCmd = &cobra.Command{
	Use:           "courseapp",
	Short:         "View and edit a list of courses",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(newServeCmd(), newTUICmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatalf("courseapp: %v", err)
	}
}
