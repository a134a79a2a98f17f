// Package configpath resolves which config file a command should read.
package configpath

import (
	"fmt"
	"os"

	"github.com/papercomputeco/entropy/pkg/config"
)

// ResolveConfigPath returns the config file to use: the flag value when set,
// then ENTROPY_CONFIG, then ~/.entropy/config.toml.
func ResolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv("ENTROPY_CONFIG"); env != "" {
		return env, nil
	}

	path, err := config.DefaultPath()
	if err != nil {
		return "", fmt.Errorf("could not resolve config path: %w", err)
	}
	return path, nil
}
