package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/app"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/router"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type ServeOptions struct {
	*RootOptions
	Addr string
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local API server",
		Long: `Serve the shop API on the local network. Cloud sync runs in the
background after writes settle when Google Drive credentials are configured.

Example:
  kiranamitra serve
  kiranamitra serve --addr 127.0.0.1:8700`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default 127.0.0.1:$PORT)")
	return cmd
}

func serve(parent context.Context, opts *ServeOptions) error {
	a, err := opts.open(app.Options{})
	if err != nil {
		return err
	}
	defer closeApp(a)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.StartAutoSync(ctx); err != nil {
		return WrapExitError(ExitCommandError, "start auto sync", err)
	}

	addr := opts.Addr
	if addr == "" {
		addr = fmt.Sprintf("127.0.0.1:%d", a.Config.Port)
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      router.New(ctx, a),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("db", a.Config.DBPath).Msg("KiranaMitra listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return WrapExitError(ExitFailure, "server error", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "forced shutdown", err)
	}
	log.Info().Msg("server exited")
	return nil
}
