package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"research-agent/internal/di"
	"research-agent/internal/infrastructure/env"
	"research-agent/internal/infrastructure/userinteraction"
)

const queryPrompt = "What can I help you research?"

func main() {
	envService := env.NewEnvService()

	cfg, err := di.LoadConfig(envService)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	console := userinteraction.NewConsoleUserInteraction()
	query, err := console.AskQuery(context.Background(), queryPrompt)
	if err != nil {
		log.Fatalf("Failed to read query: %v", err)
	}
	cfg.RunName = query

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	container, err := di.NewContainer(ctx, cfg, di.WithUI(console))
	if err != nil {
		log.Fatalf("Initialization error: %v", err)
	}

	code := run(ctx, container, query)
	container.Close()
	os.Exit(code)
}

func run(ctx context.Context, container *di.Container, query string) int {
	container.Logger.Info("Research started", "query", query)

	outcome, err := container.Research.Research(ctx, query)
	if err != nil {
		container.Logger.Error("Research failed", "error", err)
		fmt.Fprintf(os.Stderr, "\nResearch failed: %v\n", err)
		return 1
	}

	if !shouldSave(ctx, container) {
		return 0
	}

	if _, err := container.Research.Save(ctx, outcome, ""); err != nil {
		container.Logger.Error("Save failed", "error", err)
		fmt.Fprintf(os.Stderr, "\nSave failed: %v\n", err)
		return 1
	}
	return 0
}

func shouldSave(ctx context.Context, container *di.Container) bool {
	switch container.Config.SaveMode {
	case di.SaveAlways:
		return true
	case di.SaveNever:
		return false
	}

	ok, err := container.UI.Confirm(ctx, "Save this research to "+container.Config.OutputFile+"?")
	if err != nil {
		container.Logger.Warn("Could not read save confirmation", "error", err)
		return false
	}
	return ok
}

