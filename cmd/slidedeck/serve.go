package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/slidedeck/internal/server"
)

var (
	serveHost     string
	servePort     string
	serveTemplate string
	serveManual   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the slidedeck server",
	Long: `Start the slidedeck HTTP server.

The template is loaded once at startup and shared by every request.
Assembled decks are saved under ~/.slidedeck/outputs and served by id.
Provider settings in the config file are reloaded when it changes.

The server provides:
  - GET  /health                 - Basic server health check
  - GET  /api/layouts            - Template layouts and placeholder idx values
  - POST /api/decks/assemble     - Assemble a deck from {"content": ...}
  - GET  /api/decks/{deck_id}    - Download an assembled deck
  - POST /api/decks/outline      - Draft a slide plan with the model
  - POST /api/decks/generate     - Outline, detail and assemble in one call

Examples:
  slidedeck serve                    # Start on default port 8080
  slidedeck serve --port 3000        # Start on custom port
  slidedeck serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		}))

		// Get home directory
		h, err := getHome()
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		cfgMgr, err := loadConfig(h)
		if err != nil {
			return err
		}
		if cfgMgr.ConfigFile() != "" {
			logger.Info("watching config", "path", cfgMgr.ConfigFile())
			cfgMgr.WatchConfig()
		}

		// Create server
		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			TemplatePath:  serveTemplate,
			ManualPath:    serveManual,
			Home:          h,
			ConfigManager: cfgMgr,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")
	serveCmd.Flags().StringVarP(&serveTemplate, "template", "t", "", "Template .pptx/.potx (default from config)")
	serveCmd.Flags().StringVar(&serveManual, "manual", "", "Slide manual JSONL (default from config)")

	rootCmd.AddCommand(serveCmd)
}
