package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tomz197/survival/internal/config"
	"github.com/tomz197/survival/internal/loop/server"
	"github.com/tomz197/survival/internal/ws"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"
)

//go:embed index.html
var htmlPage string

func main() {
	logger, err := config.NewLogger(os.Stderr, "web")
	if err != nil {
		logger.Warn("falling back to info level", "err", err)
	}

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")
	page := strings.ReplaceAll(htmlPage, "{{.SSHHost}}", sshHost)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The registry outlives the signal so shutdown can notify players.
	regCtx, cancelRegistry := context.WithCancel(context.Background())
	defer cancelRegistry()
	gameServer := server.NewServer(logger.WithPrefix("registry"))
	go gameServer.Run(regCtx)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","players":%d}`, gameServer.GetSnapshot().Players)
	})
	mux.Handle("/ws", ws.NewHandler(gameServer, ws.HandlerOptions{
		Logger:  logger.WithPrefix("ws"),
		Context: regCtx,
	}))

	addr := net.JoinHostPort(host, port)
	srv := &http.Server{Addr: addr, Handler: mux}

	logger.Info("starting web server", "url", "http://"+addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	gameServer.Shutdown(5 * time.Second)
	cancelRegistry()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
