package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rcliao/d6calc/internal/server"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dice form over HTTP",
		Long:  "Serve one dice form over HTTP. State at GET /api/state, live updates at GET /api/watch (WebSocket).",
		Run:   runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default: $D6CALC_ADDR or :8080)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Addr
	}

	sess, closeSession, err := openSession(log.Default())
	if err != nil {
		exitErr("serve", err)
	}
	defer closeSession()

	srv, err := server.New(sess)
	if err != nil {
		exitErr("serve", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{Addr: addr, Handler: srv.Routes()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	log.Printf("Starting web server on %s (session %s)", addr, sess.ID())
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		exitErr("serve", err)
	}
}
