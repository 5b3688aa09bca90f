package companion

// Default voice identities the companion app ships with.
const (
	DefaultElevenLabsVoiceID = "k9294w367tNmQIywtFJI"
	DefaultCartesiaVoiceID   = "5ae6768d-7263-4c26-8d3a-a22976c534df"
)

// Settings holds everything the service needs to reach the chat backend
// and the speech providers. Construct one at application start and pass
// it to New; update it later through Service.Configure.
type Settings struct {
	// ServerURL is the Clawdbot backend base URL.
	ServerURL string `yaml:"server_url"`

	// AuthToken, when set, authenticates backend requests.
	AuthToken string `yaml:"auth_token"`

	// SessionID is the default conversation session. When empty the
	// service mints one at construction time.
	SessionID string `yaml:"session_id"`

	// DeepgramAPIKey enables speech-to-text.
	DeepgramAPIKey string `yaml:"deepgram_api_key"`

	// ElevenLabsAPIKey enables ElevenLabs synthesis.
	ElevenLabsAPIKey string `yaml:"elevenlabs_api_key"`

	// ElevenLabsVoiceID selects the ElevenLabs voice.
	ElevenLabsVoiceID string `yaml:"elevenlabs_voice_id"`

	// CartesiaAPIKey enables Cartesia synthesis. When both TTS keys are
	// present, Cartesia is preferred.
	CartesiaAPIKey string `yaml:"cartesia_api_key"`

	// CartesiaVoiceID selects the Cartesia voice.
	CartesiaVoiceID string `yaml:"cartesia_voice_id"`
}

// DefaultSettings returns settings with the stock voice identities and
// everything else empty.
func DefaultSettings() Settings {
	return Settings{
		ElevenLabsVoiceID: DefaultElevenLabsVoiceID,
		CartesiaVoiceID:   DefaultCartesiaVoiceID,
	}
}

// Merge overlays non-empty fields of partial onto s.
// Empty fields in partial leave the existing value untouched, so callers
// can update a single credential without restating the rest.
func (s *Settings) Merge(partial Settings) {
	if partial.ServerURL != "" {
		s.ServerURL = partial.ServerURL
	}
	if partial.AuthToken != "" {
		s.AuthToken = partial.AuthToken
	}
	if partial.SessionID != "" {
		s.SessionID = partial.SessionID
	}
	if partial.DeepgramAPIKey != "" {
		s.DeepgramAPIKey = partial.DeepgramAPIKey
	}
	if partial.ElevenLabsAPIKey != "" {
		s.ElevenLabsAPIKey = partial.ElevenLabsAPIKey
	}
	if partial.ElevenLabsVoiceID != "" {
		s.ElevenLabsVoiceID = partial.ElevenLabsVoiceID
	}
	if partial.CartesiaAPIKey != "" {
		s.CartesiaAPIKey = partial.CartesiaAPIKey
	}
	if partial.CartesiaVoiceID != "" {
		s.CartesiaVoiceID = partial.CartesiaVoiceID
	}
}

// Snapshot is a redacted view of the current settings, safe to log or
// show in a settings screen. Secrets are reduced to presence booleans.
type Snapshot struct {
	ServerURL         string
	SessionID         string
	HasAuthToken      bool
	HasDeepgramKey    bool
	HasElevenLabsKey  bool
	HasCartesiaKey    bool
	ElevenLabsVoiceID string
	CartesiaVoiceID   string
}

func (s Settings) snapshot() Snapshot {
	return Snapshot{
		ServerURL:         s.ServerURL,
		SessionID:         s.SessionID,
		HasAuthToken:      s.AuthToken != "",
		HasDeepgramKey:    s.DeepgramAPIKey != "",
		HasElevenLabsKey:  s.ElevenLabsAPIKey != "",
		HasCartesiaKey:    s.CartesiaAPIKey != "",
		ElevenLabsVoiceID: s.ElevenLabsVoiceID,
		CartesiaVoiceID:   s.CartesiaVoiceID,
	}
}
