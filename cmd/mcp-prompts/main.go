package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sha1n/mcp-prompts-server-go/internal/app"
	"github.com/sha1n/mcp-prompts-server-go/internal/auth"
	"github.com/sha1n/mcp-prompts-server-go/internal/config"
	"github.com/sha1n/mcp-prompts-server-go/internal/domain"
	"github.com/sha1n/mcp-prompts-server-go/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 5 * time.Second

func main() {
	cmd, err := newRootCommand()
	if err == nil {
		err = cmd.Execute()
	}
	if err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() (*cobra.Command, error) {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "mcp-prompts",
		Short: "Serve a directory of Markdown prompts over the Model Context Protocol",
		Long: "mcp-prompts loads every .md file under PROMPTS_DIR and exposes it as an MCP tool,\n" +
			"an MCP prompt, or both. Files may start with a YAML front matter block with\n" +
			"'description' and 'enabled' keys.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(v)
			if err != nil {
				return err
			}
			if err := logging.Setup(cmd.ErrOrStderr(), settings.Log); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, settings, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	if err := config.BindFlags(cmd.Flags(), v); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	return cmd, nil
}

func run(ctx context.Context, settings *config.Settings, stdin io.Reader, stdout io.Writer) error {
	mcpServer, cleanup, err := app.CreateMCPServer(ctx, settings, domain.DefaultServerMetadata(version))
	if err != nil {
		return err
	}
	defer cleanup()

	switch settings.Transport {
	case config.TransportStdio:
		return serveStdio(ctx, mcpServer, stdin, stdout)
	case config.TransportSSE, config.TransportHTTP:
		return StartHTTPServer(ctx, mcpServer, settings)
	default:
		return fmt.Errorf("unknown transport: %s", settings.Transport)
	}
}

func serveStdio(ctx context.Context, mcpServer *server.MCPServer, stdin io.Reader, stdout io.Writer) error {
	stdioServer := server.NewStdioServer(mcpServer)
	stdioServer.SetErrorLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelError))

	slog.Info("Serving on stdio")
	err := stdioServer.Listen(ctx, stdin, stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("Server stopped")
	return nil
}

// httpTransport is an MCP transport that can be mounted on an HTTP server
type httpTransport interface {
	http.Handler
	Shutdown(ctx context.Context) error
}

// StartHTTPServer serves the SSE or streamable HTTP transport until ctx is done
func StartHTTPServer(ctx context.Context, mcpServer *server.MCPServer, settings *config.Settings) error {
	middleware, err := auth.NewMiddleware(ctx, settings.Auth)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(settings.Host, strconv.Itoa(settings.Port)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var transport httpTransport
	switch settings.Transport {
	case config.TransportSSE:
		sseServer := server.NewSSEServer(mcpServer, server.WithHTTPServer(httpServer))
		transport = sseServer
		httpServer.Handler = middleware(sseServer)
	case config.TransportHTTP:
		streamableServer := server.NewStreamableHTTPServer(mcpServer, server.WithStreamableHTTPServer(httpServer))
		transport = streamableServer
		mux := http.NewServeMux()
		mux.Handle("/mcp", middleware(streamableServer))
		httpServer.Handler = mux
	default:
		return fmt.Errorf("transport %s is not served over HTTP", settings.Transport)
	}

	useTLS := settings.CertFile != "" && settings.KeyFile != ""
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "transport", settings.Transport, "addr", httpServer.Addr, "tls", useTLS, "auth", settings.Auth.Type)
		if useTLS {
			errCh <- httpServer.ListenAndServeTLS(settings.CertFile, settings.KeyFile)
		} else {
			errCh <- httpServer.ListenAndServe()
		}
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := transport.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Graceful shutdown timed out, closing connections", "error", err)
		_ = httpServer.Close()
	}
	slog.Info("Server stopped")
	return nil
}
