package generation

import (
	"fmt"
	"sort"
	"time"

	"github.com/clinaid/medassist/internal/domain/providers"
	"github.com/clinaid/medassist/internal/infrastructure/clients/gemini"
	"github.com/clinaid/medassist/internal/infrastructure/clients/huggingface"
	"github.com/clinaid/medassist/pkg/config"
)

// Factory builds one backend gateway from AI configuration.
type Factory func(cfg *config.AIConfig) (providers.TextGenerationProvider, error)

// factories is the backend lookup table. Selection happens by name, never
// by switch.
var factories = map[string]Factory{
	"gemini": func(cfg *config.AIConfig) (providers.TextGenerationProvider, error) {
		return gemini.NewClient(&cfg.Gemini, callTimeout(cfg), probeTimeout(cfg))
	},
	"huggingface": func(cfg *config.AIConfig) (providers.TextGenerationProvider, error) {
		return huggingface.NewClient(&cfg.HuggingFace, callTimeout(cfg), probeTimeout(cfg))
	},
}

// New builds the named backend gateway.
func New(name string, cfg *config.AIConfig) (providers.TextGenerationProvider, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unsupported text generation provider: %q (supported: %v)", name, Supported())
	}
	return factory(cfg)
}

// Supported lists the registered backend names.
func Supported() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func callTimeout(cfg *config.AIConfig) time.Duration {
	seconds := cfg.CallTimeoutSeconds
	if seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}

func probeTimeout(cfg *config.AIConfig) time.Duration {
	seconds := cfg.ProbeTimeoutSeconds
	if seconds <= 0 {
		seconds = 10
	}
	return time.Duration(seconds) * time.Second
}
