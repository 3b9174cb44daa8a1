package main

import (
	"fmt"
	"os"

	"taskflow/internal/app"
	"taskflow/internal/config"
	"taskflow/internal/storage"
	"taskflow/internal/ui"
)

func main() {
	configPath := config.ResolveConfigPath()
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		fmt.Printf("failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	state := app.NewState(store, cfg.HistoryLimit)
	if err := state.Load(); err != nil {
		fmt.Printf("failed to load data: %v\n", err)
		os.Exit(1)
	}

	if err := ui.Run(state, cfg); err != nil {
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}
