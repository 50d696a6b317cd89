// Command listening-eras runs the listening era analysis service: it
// ingests streaming history exports, partitions them into eras of stable
// taste, and serves the results over HTTP.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/justestif/go-listening-eras/internal/naming"
	"github.com/justestif/go-listening-eras/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	server, err := web.NewServer(web.ServerConfig{
		Addr:           envOr("ADDR", web.DefaultAddr),
		AllowedOrigins: strings.Split(envOr("ALLOWED_ORIGINS", "*"), ","),
		SpotifyID:      os.Getenv("SPOTIFY_ID"),
		SpotifySecret:  os.Getenv("SPOTIFY_SECRET"),
		RedirectURI:    os.Getenv("SPOTIFY_REDIRECT_URI"),
		NamingClient:   namingClient(logger),
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run()
}

// namingClient selects the LLM provider from the environment. Missing
// credentials disable provider naming; eras then get fallback titles.
func namingClient(logger *log.Logger) naming.Client {
	provider := envOr("LLM_PROVIDER", "openai")
	model := os.Getenv("LLM_MODEL")

	switch provider {
	case "openai":
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			return naming.NewOpenAIClient(key, model)
		}
	case "anthropic":
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			return naming.NewAnthropicClient(key, model)
		}
	default:
		logger.Warn("unknown LLM provider, era naming disabled", "provider", provider)
		return nil
	}

	logger.Warn("no LLM credentials set, era naming will use fallback titles")
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
