package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/richard-senior/apex/internal/config"
	"github.com/richard-senior/apex/internal/logger"
	"github.com/richard-senior/apex/internal/processor"
	"github.com/richard-senior/apex/pkg/predict"
)

// Usage:
//
//	apex-predict -input match.json
//	apex-predict Arsenal Chelsea soccer
//	cat batch.json | apex-predict -output out.json
func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	configPath := flag.String("config", "", "YAML configuration file whose engine section tunes the weights")
	inputFile := flag.String("input", "", "Input file path (if not provided, stdin will be used)")
	outputFile := flag.String("output", "", "Output file path (if not provided, stdout will be used)")
	flag.Parse()

	logger.SetShowDateTime(true)
	// results go to stdout
	logger.SetWriters(os.Stderr, os.Stderr)
	if *debug {
		logger.SetLevel(logger.DEBUG)
		logger.Debug("Debug logging enabled")
	}

	engineCfg := predict.DefaultEngineConfig()
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			logger.Fatal("Failed to load configuration", err)
		}
		engineCfg = cfg.Engine
	}
	engine, err := predict.NewEngine(engineCfg)
	if err != nil {
		logger.Fatal("Invalid engine configuration", err)
	}

	var input []byte
	if *inputFile != "" {
		input, err = os.ReadFile(*inputFile)
		if err != nil {
			logger.Fatal("Failed to read input file", err)
		}
	} else if args := flag.Args(); len(args) >= 2 {
		sport := ""
		if len(args) > 2 {
			sport = args[2]
		}
		in := processor.QuickMatch(args[0], args[1], sport)
		input, err = json.Marshal(in)
		if err != nil {
			logger.Fatal("Failed to create request from command line arguments", err)
		}
	} else {
		input, err = io.ReadAll(os.Stdin)
		if err != nil {
			logger.Fatal("Failed to read from stdin", err)
		}
	}

	result, err := processor.ProcessRequest(engine, input)
	if err != nil {
		logger.Error("Failed to process request", err)
		os.Exit(1)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, result, 0644); err != nil {
			logger.Fatal("Failed to write to output file", err)
		}
	} else {
		fmt.Println(string(result))
	}
}
