// Command testgateway serves the in-memory gateway on a local port so the CLI
// can be tried without the real backends. Two accounts are seeded: "admin"
// and "demo", both with password "demo".
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/quzhan/internal/client/models"
	"github.com/dmitrijs2005/quzhan/internal/flagx"
	"github.com/dmitrijs2005/quzhan/internal/logging"
	"github.com/dmitrijs2005/quzhan/internal/testgateway"
)

func main() {
	addr := ":8080"
	ttl := testgateway.DefaultAccessTTL

	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	fs.StringVar(&addr, "a", addr, "listen address")
	fs.DurationVar(&ttl, "t", ttl, "access token lifetime")
	_ = fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-a", "-t"}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	logger, err := logging.New(os.Stdout, "info", "json")
	if err != nil {
		log.Fatalf("%v", err)
	}

	gw := testgateway.New(testgateway.WithAccessTTL(ttl))
	for name, role := range map[string]models.Role{"admin": models.RoleAdmin, "demo": models.RoleUser} {
		id, err := gw.AddUser(name, "demo", role)
		if err != nil {
			log.Fatalf("%v", err)
		}
		gw.AddPost(id, "Welcome to quzhan", "Posted by "+name+".", models.PostApproved)
	}

	srv := &http.Server{Addr: addr, Handler: gw.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info(ctx, "test gateway listening", "addr", addr, "access_ttl", ttl.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error(ctx, "server stopped", "error", err)
	}
}
