// Package config loads companion settings for the CLI.
//
// Precedence, lowest to highest: stock defaults, YAML settings file,
// environment variables. A .env file in the working directory is loaded
// into the environment first, when present.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/clawdbot/go-companion/pkg/companion"
)

// Environment variable names the loader reads.
const (
	EnvServerURL         = "CLAWDBOT_SERVER_URL"
	EnvAuthToken         = "CLAWDBOT_AUTH_TOKEN"
	EnvSessionID         = "CLAWDBOT_SESSION_ID"
	EnvDeepgramKey       = "DEEPGRAM_API_KEY"
	EnvElevenLabsKey     = "ELEVENLABS_API_KEY"
	EnvElevenLabsVoiceID = "ELEVENLABS_VOICE_ID"
	EnvCartesiaKey       = "CARTESIA_API_KEY"
	EnvCartesiaVoiceID   = "CARTESIA_VOICE_ID"
)

// Load assembles settings from defaults, an optional YAML file, and the
// environment. path may be empty to skip the file layer.
func Load(path string) (companion.Settings, error) {
	// Missing .env is the common case, not an error.
	_ = godotenv.Load()

	settings := companion.DefaultSettings()

	if path != "" {
		fromFile, err := loadFile(path)
		if err != nil {
			return companion.Settings{}, err
		}
		settings.Merge(fromFile)
	}

	settings.Merge(fromEnv())
	return settings, nil
}

func loadFile(path string) (companion.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return companion.Settings{}, fmt.Errorf("read settings file: %w", err)
	}

	var settings companion.Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return companion.Settings{}, fmt.Errorf("parse settings file %s: %w", path, err)
	}
	return settings, nil
}

func fromEnv() companion.Settings {
	return companion.Settings{
		ServerURL:         os.Getenv(EnvServerURL),
		AuthToken:         os.Getenv(EnvAuthToken),
		SessionID:         os.Getenv(EnvSessionID),
		DeepgramAPIKey:    os.Getenv(EnvDeepgramKey),
		ElevenLabsAPIKey:  os.Getenv(EnvElevenLabsKey),
		ElevenLabsVoiceID: os.Getenv(EnvElevenLabsVoiceID),
		CartesiaAPIKey:    os.Getenv(EnvCartesiaKey),
		CartesiaVoiceID:   os.Getenv(EnvCartesiaVoiceID),
	}
}
