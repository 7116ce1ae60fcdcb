package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/parentstudy/internal/bootstrap"
	"github.com/at-ishikawa/parentstudy/internal/config"
	"github.com/at-ishikawa/parentstudy/internal/server"
	"github.com/at-ishikawa/parentstudy/internal/tips"
	"github.com/at-ishikawa/parentstudy/internal/tutor"
)

const shutdownTimeout = 10 * time.Second

var configFile string

func main() {
	var debugMode bool
	rootCmd := &cobra.Command{
		Use:           "parentstudy-server",
		Short:         "Parent study tutor service HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode)
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogger(debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
}

func run(ctx context.Context) error {
	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	client, closeClient, err := bootstrap.NewInferenceClient(cfg)
	if err != nil {
		return fmt.Errorf("bootstrap.NewInferenceClient() > %w", err)
	}
	app.AddShutdownHook(closeClient)

	srv, err := newHTTPServer(cfg, tutor.NewService(client, cfg.Worksheet.QuestionCount))
	if err != nil {
		return err
	}
	listener, err := net.Listen("tcp", cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("net.Listen(%s) > %w", cfg.Server.Address, err)
	}

	return app.Run(ctx, func(ctx context.Context) error {
		return bootstrap.Serve(ctx, srv, listener, shutdownTimeout)
	})
}

func newHTTPServer(cfg *config.Config, t server.Tutor) (*http.Server, error) {
	catalog, err := tips.Load()
	if err != nil {
		return nil, fmt.Errorf("tips.Load() > %w", err)
	}

	handler := server.NewTutorHandler(t, catalog, cfg.Server.MaxWorksheets)
	path, h := server.NewTutorServiceHandler(handler, connect.WithInterceptors(server.NewLoggingInterceptor(nil)))

	mux := http.NewServeMux()
	mux.Handle(path, h)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           server.CORSMiddleware(h2c.NewHandler(mux, &http2.Server{}), cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
