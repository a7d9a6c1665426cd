package main

import (
	"flag"
	"os"

	"github.com/richard-senior/apex/internal/app"
	"github.com/richard-senior/apex/internal/logger"
	"github.com/richard-senior/apex/pkg/server"
	"github.com/richard-senior/apex/pkg/transport"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file (defaults to $APEX_CONFIG)")
	flag.Parse()

	// stdout carries the protocol so logging must go to file before anything is written
	logger.SetLogOutput('f')

	a, err := app.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load configuration:", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := app.ConfigureLogging(a.Config, 'f'); err != nil {
		logger.Error("Failed to configure logging:", err)
		os.Exit(1)
	}

	logger.Info("Starting apex MCP server", server.Version)

	s := server.InitInstance(transport.NewStdioTransport(), a.Toolbox)
	if err := s.Start(); err != nil {
		logger.Error("Server error:", err)
		a.Close()
		os.Exit(1)
	}

	logger.Info("MCP server shutting down")
}
