package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides (SOCIALHUB_API_BASE_URL, ...)
const EnvPrefix = "SOCIALHUB"

var configDir string
var configFilePath string
var credentialsPath string

// getConfigDir returns platform-specific config directory
func getConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		// Windows: %LOCALAPPDATA%\socialhub
		appData := os.Getenv("LOCALAPPDATA")
		if appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, "socialhub"), nil
	}

	// Unix-like (macOS, Linux): ~/.config/socialhub
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "socialhub"), nil
}

// getSystemConfigPaths returns platform-specific system config paths
func getSystemConfigPaths() []string {
	if runtime.GOOS == "windows" {
		return []string{filepath.Join(os.Getenv("ProgramFiles"), "SocialHub", "config.toml")}
	}

	return []string{
		"/etc/socialhub/config.toml",
		"/usr/local/etc/socialhub/config.toml",
	}
}

// Init initializes the configuration.
//
// Precedence, lowest first: defaults, system config, user config, .env file in
// the config directory, SOCIALHUB_* environment variables.
func Init(configPath string) error {
	var err error
	if configPath != "" {
		configDir = filepath.Dir(configPath)
		configFilePath = configPath
	} else {
		configDir, err = getConfigDir()
		if err != nil {
			return err
		}
		configFilePath = filepath.Join(configDir, "config.toml")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	credentialsPath = filepath.Join(configDir, "credentials")

	viper.Reset()
	viper.SetConfigType("toml")
	setDefaults()

	for _, sysConfigPath := range getSystemConfigPaths() {
		if _, err := os.Stat(sysConfigPath); err == nil {
			viper.SetConfigFile(sysConfigPath)
			_ = viper.ReadInConfig()
			break
		}
	}

	viper.SetConfigFile(configFilePath)
	_ = viper.ReadInConfig()

	// A missing .env is the normal case
	_ = godotenv.Load(filepath.Join(configDir, ".env"))

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	return nil
}

func setDefaults() {
	viper.SetDefault("api.base_url", "http://localhost:8080")
	viper.SetDefault("api.timeout", 30)
	viper.SetDefault("api.page_size", 10)
	viper.SetDefault("live.url", "ws://localhost:8080/api/v1/ws")
	viper.SetDefault("output.format", "text")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", filepath.Join(configDir, "socialhub.log"))
	viper.SetDefault("log.max_size_mb", 10)
	viper.SetDefault("log.max_backups", 3)
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetString returns a string configuration value
func GetString(key string) string {
	value := viper.GetString(key)
	if key == "log.file" {
		return expandPath(value)
	}
	return value
}

// GetInt returns an int configuration value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool configuration value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns an integer key interpreted as seconds
func GetDuration(key string) time.Duration {
	return time.Duration(viper.GetInt(key)) * time.Second
}

// Set overrides a value for the running process only
func Set(key string, value interface{}) {
	viper.Set(key, value)
}

// SetString sets a string configuration value and persists it
func SetString(key string, value string) error {
	viper.Set(key, value)
	return viper.WriteConfigAs(configFilePath)
}

// PageSize returns the configured page size, never less than 1
func PageSize() int {
	size := viper.GetInt("api.page_size")
	if size < 1 {
		return 10
	}
	return size
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	return configDir
}

// GetConfigFilePath returns the user config file path
func GetConfigFilePath() string {
	return configFilePath
}

// GetCredentialsPath returns the path to the credentials file
func GetCredentialsPath() string {
	return credentialsPath
}
