package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/richard-senior/apex/internal/app"
	"github.com/richard-senior/apex/internal/logger"
	"github.com/richard-senior/apex/pkg/api"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file (defaults to $APEX_CONFIG)")
	flag.Parse()

	a, err := app.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration:", err)
	}
	defer a.Close()

	if err := app.ConfigureLogging(a.Config, 0); err != nil {
		logger.Fatal("Failed to configure logging:", err)
	}

	cfg := a.Config.HTTP
	handler := api.NewHandler(a.Toolbox)
	router := api.NewRouter(handler, cfg.AllowedOrigins, cfg.RequestTimeout)

	// handlers that call ESPN need the request timeout plus headroom for the write
	writeTimeout := 10 * time.Second
	if cfg.RequestTimeout+5*time.Second > writeTimeout {
		writeTimeout = cfg.RequestTimeout + 5*time.Second
	}
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout,
	}

	go func() {
		logger.Info("apex API listening on port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed:", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown:", err)
	}
	logger.Info("Server exited")
}
