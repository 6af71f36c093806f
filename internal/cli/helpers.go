package cli

import (
	"fmt"
	"os"

	"github.com/princespaghetti/sdmc/internal/config"
	"github.com/princespaghetti/sdmc/internal/logger"
	"github.com/princespaghetti/sdmc/internal/sdmmc"
	"github.com/princespaghetti/sdmc/internal/storage"
)

// defaultConfigFile is picked up from the working directory when --config is
// not given.
const defaultConfigFile = "sdmc.yaml"

// loadConfig resolves the configuration: the --config flag, then
// ./sdmc.yaml, then built-in defaults.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return config.Load(defaultConfigFile)
	}
	return config.Default(), nil
}

// newDriver builds the card driver selected by the configuration.
func newDriver(cfg *config.Config) sdmmc.CardDriver {
	switch cfg.Storage.Backend {
	case config.BackendDir:
		return sdmmc.NewHostCard(cfg.Storage.BackingDir, cfg.Storage.CapacityMB)
	default:
		return sdmmc.NewSimCard(cfg.Storage.CapacityMB)
	}
}

// openCard loads the configuration, brings the card up, and returns it with
// a cleanup function that unmounts and closes the logger.
func openCard() (*storage.Card, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, err
	}

	card := storage.New(cfg.StorageSettings(), newDriver(cfg), log)
	if err := card.Setup(); err != nil {
		_ = closeLog()
		return nil, nil, fmt.Errorf("bring up card: %w", err)
	}

	cleanup := func() {
		card.Unmount()
		_ = closeLog()
	}
	return card, cleanup, nil
}
