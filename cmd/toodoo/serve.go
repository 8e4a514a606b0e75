package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/too-doo/internal/httpapi"
	jobs "github.com/nhle/too-doo/internal/sync"
)

// shutdownTimeout bounds the graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

var (
	serveHost string
	servePort int
	serveJobs bool
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides server.host)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides server.port)")
	serveCmd.Flags().BoolVar(&serveJobs, "jobs", true, "run aggregation, session and mail jobs in the background")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve the notes, labels, analytics and auth endpoints over HTTP.

Background jobs (weekly aggregation, session pruning and, when
configured, mail capture) run in the same process unless --jobs=false.

Examples:
  toodoo serve
  toodoo serve --port 9090 --jobs=false`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := setup(ctx, logStderr)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.enableOAuth(); err != nil {
		return fmt.Errorf("configuring oauth: %w", err)
	}

	cfg := e.cfg.Server
	if serveHost != "" {
		cfg.Host = serveHost
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	srv, err := httpapi.NewServer(e.notes, e.analytics, e.auth, e.logger, cfg)
	if err != nil {
		return err
	}

	if serveJobs {
		poller := e.newPoller(ctx, "")
		poller.Start()
		defer poller.Stop()
		go logResults(ctx, e, poller)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	e.logger.Info(shutdownCtx, "server shutdown complete")
	return nil
}

// logResults drains job results until ctx ends.
func logResults(ctx context.Context, e *env, p *jobs.Poller) {
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-p.Results():
			if res.Error != nil {
				continue // already logged by the poller
			}
			e.logger.Info(ctx, "job finished",
				zap.String("job", res.Name),
				zap.Int("items", res.Report.Items),
				zap.String("detail", res.Report.Detail))
		}
	}
}
