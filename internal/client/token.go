package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cli/go-gh/v2/pkg/auth"
)

const githubHost = "github.com"

// configPath determines the configuration directory for GitHub Copilot.
func configPath() (string, error) {
	// Try XDG config first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		if isValidDir(xdg) {
			return xdg, nil
		}
	}

	if runtime.GOOS == "windows" {
		if path := tryWindowsPaths(); path != "" {
			return path, nil
		}
	}

	usr, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}

	configDir := filepath.Join(usr.HomeDir, ".config")
	if isValidDir(configDir) {
		return configDir, nil
	}

	return "", errors.New("no valid config path found")
}

func isValidDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// tryWindowsPaths attempts to find the appropriate configuration path on Windows.
func tryWindowsPaths() string {
	if path := os.Getenv("LOCALAPPDATA"); isValidDir(path) {
		return path
	}

	if home := os.Getenv("HOME"); home != "" {
		if path := filepath.Join(home, "AppData", "Local"); isValidDir(path) {
			return path
		}
	}

	return ""
}

// getGitHubToken retrieves the GitHub token from the gh environment or the
// Copilot editor plugin config files.
func getGitHubToken() (string, error) {
	// gh resolves GH_TOKEN/GITHUB_TOKEN and its own hosts.yml
	if token, _ := auth.TokenForHost(githubHost); token != "" {
		return token, nil
	}

	configDir, err := configPath()
	if err != nil {
		return "", fmt.Errorf("failed to get config path: %w", err)
	}

	return tokenFromCopilotConfig(configDir)
}

// tokenFromCopilotConfig reads the oauth token the Copilot editor plugins
// store under configDir.
func tokenFromCopilotConfig(configDir string) (string, error) {
	configFiles := []string{
		filepath.Join(configDir, "github-copilot", "hosts.json"),
		filepath.Join(configDir, "github-copilot", "apps.json"),
	}

	for _, path := range configFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var config map[string]any
		if err := json.Unmarshal(data, &config); err != nil {
			continue
		}

		if token := extractGitHubToken(config); token != "" {
			return token, nil
		}
	}

	return "", errors.New("GitHub token not found in environment or config files")
}

// extractGitHubToken helps extract the token from config data
func extractGitHubToken(config map[string]any) string {
	for host, data := range config {
		if !strings.Contains(host, githubHost) {
			continue
		}

		tokenData, ok := data.(map[string]any)
		if !ok {
			continue
		}

		if token, ok := tokenData["oauth_token"].(string); ok && token != "" {
			return token
		}
	}
	return ""
}
