package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"viralvideos/internal/infra"
	"viralvideos/internal/infra/preferences"
)

func main() {
	var (
		providerFlag   string
		endpointFlag   string
		keyFlag        string
		deploymentFlag string
		clearFlag      bool
	)
	flag.StringVar(&providerFlag, "provider", "sora", "settings group to configure (sora or chat)")
	flag.StringVar(&endpointFlag, "endpoint", "", "Azure OpenAI endpoint (fallbacks to environment)")
	flag.StringVar(&keyFlag, "key", "", "API key (fallbacks to environment)")
	flag.StringVar(&deploymentFlag, "deployment", "", "deployment name (fallbacks to environment)")
	flag.BoolVar(&clearFlag, "clear", false, "remove the stored values for the provider instead of writing them")
	flag.Parse()

	provider := strings.TrimSpace(strings.ToLower(providerFlag))
	keys, envPrefix, err := providerKeys(provider)
	if err != nil {
		exitWithError(err)
	}

	values := map[string]string{
		keys[0]: firstNonEmpty(endpointFlag, os.Getenv(envPrefix+"_ENDPOINT")),
		keys[1]: firstNonEmpty(keyFlag, os.Getenv(envPrefix+"_API_KEY")),
		keys[2]: firstNonEmpty(deploymentFlag, os.Getenv(envPrefix+"_DEPLOYMENT")),
	}
	if clearFlag {
		for k := range values {
			values[k] = ""
		}
	} else if values[keys[1]] == "" {
		exitWithError(fmt.Errorf("%s API key is required via -key or %s_API_KEY", strings.ToUpper(provider), envPrefix))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(fmt.Errorf("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := infra.NewDBPoolFromURL(ctx, dbURL)
	if err != nil {
		exitWithError(err)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "sorakey").Str("provider", provider).Logger()
	store := preferences.NewStore(infra.NewSQLRunner(pool, logger))
	for _, k := range keys {
		if !clearFlag && values[k] == "" {
			continue
		}
		if err := store.Set(ctx, k, values[k]); err != nil {
			exitWithError(fmt.Errorf("persist %s: %w", k, err))
		}
	}

	if clearFlag {
		fmt.Printf("%s settings cleared\n", strings.ToUpper(provider))
		return
	}
	fmt.Printf("%s settings stored (key %s)\n", strings.ToUpper(provider), preferences.MaskSecret(values[keys[1]]))
}

func providerKeys(provider string) ([3]string, string, error) {
	switch provider {
	case "sora", "":
		return [3]string{preferences.KeySoraEndpoint, preferences.KeySoraAPIKey, preferences.KeySoraDeployment}, "SORA", nil
	case "chat":
		return [3]string{preferences.KeyAzureLlmEndpoint, preferences.KeyAzureLlmAPIKey, preferences.KeyAzureLlmDeployment}, "AZURE_LLM", nil
	default:
		return [3]string{}, "", fmt.Errorf("unsupported provider %q", provider)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "sorakey: %v\n", err)
	os.Exit(1)
}
