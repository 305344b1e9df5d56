package main

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeProduction Mode = "production"
	ModeTest       Mode = "test"
)

const (
	configDirPathEnv     = "DAPPLINK_CONFIG_DIR_PATH"
	defaultConfigDirPath = "."
	defaultGuardTTL      = 5 * time.Minute
)

// Config represents the overall application configuration
type Config struct {
	mode          Mode
	wallet        WalletConfig
	privateKeyHex string
	dbConf        DatabaseConfig
	guardTTL      time.Duration // retention window of the duplicate delivery guard
}

// LoadConfig builds configuration from environment variables
func LoadConfig(logger Logger) (*Config, error) {
	logger = logger.NewSystem("config")

	configDirPath := os.Getenv(configDirPathEnv)
	if configDirPath == "" {
		configDirPath = defaultConfigDirPath
	}

	// Load .env files
	configDotEnvPath := filepath.Join(configDirPath, ".env")
	logger.Info("loading .env file", "path", configDotEnvPath)
	if err := godotenv.Load(configDotEnvPath); err != nil {
		logger.Warn(".env file not found")
	}

	mode := Mode(os.Getenv("DAPPLINK_MODE"))
	if mode == "" {
		mode = ModeProduction
	} else if mode != ModeProduction && mode != ModeTest {
		logger.Fatal("invalid DAPPLINK_MODE value", "value", mode)
	}
	logger.Info("set mode", "value", mode)

	// Get database URL from environment variables
	var dbConf DatabaseConfig
	dbURL := os.Getenv("DAPPLINK_DATABASE_URL")

	// If DATABASE_URL is not empty, parse the connection string
	// Otherwise, read the envs in usual way
	if dbURL != "" {
		var err error
		dbConf, err = ParseConnectionString(dbURL)
		if err != nil {
			logger.Error("failed to parse connection string", "err", err)
			return nil, err
		}
	} else {
		// Read db config
		if err := cleanenv.ReadEnv(&dbConf); err != nil {
			logger.Error("failed to read env", "err", err)
			return nil, err
		}
	}

	// Retrieve the private key.
	privateKeyHex := os.Getenv("DAPPLINK_PRIVATE_KEY")
	if privateKeyHex == "" {
		logger.Fatal("DAPPLINK_PRIVATE_KEY environment variable is required")
	}

	guardTTL := defaultGuardTTL
	if raw := os.Getenv("DAPPLINK_GUARD_TTL_SECONDS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			guardTTL = time.Duration(parsed) * time.Second
		} else {
			logger.Warn("Invalid DAPPLINK_GUARD_TTL_SECONDS", "value", raw)
		}
	}
	logger.Info("set duplicate guard ttl", "value", guardTTL)

	wallet, err := LoadWallet(configDirPath)
	if err != nil {
		logger.Fatal("failed to load wallet configuration", "error", err)
	}

	config := Config{
		mode:          mode,
		wallet:        wallet,
		privateKeyHex: privateKeyHex,
		dbConf:        dbConf,
		guardTTL:      guardTTL,
	}

	return &config, nil
}
