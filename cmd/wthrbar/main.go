package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/swelljoe/wthrbar/internal/config"
	"github.com/swelljoe/wthrbar/internal/handlers"
	"github.com/swelljoe/wthrbar/internal/places"
	"github.com/swelljoe/wthrbar/internal/poller"
	"github.com/swelljoe/wthrbar/internal/weather"
)

func main() {
	envFile := flag.String("env", ".env", "optional file with WTHRBAR_* settings")
	once := flag.Bool("once", false, "print the status line once and exit")
	addr := flag.String("http", "", "serve /status, /places and /health on this address instead of polling")
	spec := flag.String("every", poller.DefaultSpec, "cron spec for the polling loop")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := weather.NewClient(cfg.BaseURL, cfg.RequestTimeout)
	service := weather.NewService(cfg.ServiceOptions(), client)

	switch {
	case *once:
		err = printOnce(ctx, service, os.Stdout)
	case *addr != "":
		err = serve(ctx, cfg, service, *addr)
	default:
		log.Printf("Polling weather for %q (%s)", cfg.Location, *spec)
		err = poller.New(service, os.Stdout).Run(ctx, *spec)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func printOnce(ctx context.Context, src poller.Source, out io.Writer) error {
	res, err := src.Status(ctx, time.Now())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, res.Text)
	return err
}

func serve(ctx context.Context, cfg *config.Config, service *weather.Service, addr string) error {
	var database handlers.Database
	if db, err := places.Open(cfg.DBPath); err != nil {
		log.Printf("Warning: Database connection failed: %v", err)
		log.Println("Continuing without place search...")
	} else {
		defer db.Close()
		database = db
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handlers.New(database, service).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("Server starting on http://localhost%s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
