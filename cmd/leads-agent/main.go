package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"leadsagent/internal/core"
	"leadsagent/internal/di"
	"leadsagent/internal/logging"
)

var (
	// Lead flags
	firstName = flag.String("first-name", "", "Lead first name")
	lastName  = flag.String("last-name", "", "Lead last name")
	email     = flag.String("email", "", "Lead email address")
	company   = flag.String("company", "", "Lead company name")

	// Input flags
	inputFile   = flag.String("file", "", "Input message file (use stdin if not specified)")
	maxSearches = flag.Int("max-searches", 0, "Cap on research web searches (0 uses configured default)")
	debug       = flag.Bool("debug", false, "Include the execution trace in the output")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog     = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	// Load .env if present; real config still comes from config.yaml and env
	_ = godotenv.Load()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	message, err := readMessage()
	if err != nil {
		logger.Fatal("Failed to read lead message", zap.Error(err))
	}

	lead := core.Lead{
		FirstName: *firstName,
		LastName:  *lastName,
		Email:     *email,
		Company:   *company,
		Message:   message,
	}

	container, err := di.BuildContainer()
	if err != nil {
		logger.Fatal("Failed to build container", zap.Error(err))
	}

	err = container.Invoke(func(pipeline *core.Pipeline) error {
		outcome, err := pipeline.Classify(context.Background(), lead, core.Options{
			MaxSearches: *maxSearches,
			Debug:       *debug,
		})
		if err != nil {
			return err
		}
		return printOutcome(outcome)
	})
	if err != nil {
		logger.Fatal("Classification failed", zap.Error(err))
	}
}

func readMessage() (string, error) {
	var reader io.Reader = os.Stdin
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			return "", fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		reader = file
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func printOutcome(outcome *core.Outcome) error {
	out := struct {
		LeadID    string      `json:"lead_id"`
		Kind      string      `json:"kind"`
		FromCache bool        `json:"from_cache"`
		Result    core.Result `json:"result"`
		Trace     *core.Trace `json:"trace,omitempty"`
	}{
		LeadID:    outcome.LeadID,
		Kind:      string(outcome.Result.Kind()),
		FromCache: outcome.FromCache,
		Result:    outcome.Result,
		Trace:     outcome.Trace,
	}
	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode outcome: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}
