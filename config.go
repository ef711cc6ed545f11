package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	defaultListenAddress = "localhost:9898"
	defaultDirectory     = "screenshots"
	configFileName       = "snapcal-config.json"
)

type Config struct {
	GeminiKey           string
	OpenAIKey           string
	Provider            string
	Directory           string
	ListenAddress       string
	AnalyzeAfterCapture bool
	Notify              bool
}

var config = Config{
	Directory:     defaultDirectory,
	ListenAddress: defaultListenAddress,
	Notify:        true,
}

// path given with --config, empty means the user config directory
var configPathOverride string

func getConfigPath() (string, error) {
	if configPathOverride != "" {
		return configPathOverride, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("finding user config directory: %w", err)
	}
	return filepath.Join(configDir, configFileName), nil
}

// loads .env from the working directory and then the JSON config file. A
// missing file of either kind leaves the defaults in place.
func readConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env", "err", err)
	}

	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	byteValue, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file, using defaults", "path", configPath)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := json.Unmarshal(byteValue, &config); err != nil {
		return fmt.Errorf("unmarshalling config file %s: %w", configPath, err)
	}

	slog.Info("configuration loaded", "path", configPath)
	return nil
}

func writeConfig() error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	byteValue, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling config to JSON: %w", err)
	}

	if err := os.WriteFile(configPath, byteValue, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	slog.Info("config file has been written", "path", configPath)
	return nil
}

// resolve the API key for a provider: flag value first, then the
// environment, then the config file
func resolveAPIKey(provider, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	var envName, fromConfig string
	switch provider {
	case providerGemini:
		envName, fromConfig = "GEMINI_API_KEY", config.GeminiKey
	case providerOpenAI:
		envName, fromConfig = "OPENAI_API_KEY", config.OpenAIKey
	default:
		return "", nil
	}

	if key := os.Getenv(envName); key != "" {
		return key, nil
	}
	if fromConfig != "" {
		return fromConfig, nil
	}
	return "", fmt.Errorf("%w: pass -k/--api-key or set %s", ErrNoAPIKey, envName)
}
