package utils

import "voyago/config"

// GetEnv returns the application environment.
func GetEnv() string {
	return config.GetEnv()
}

// IsProduction checks if the environment is production.
func IsProduction() bool {
	return config.IsProduction()
}

// LogLevel returns the configured log level name, empty when unset.
func LogLevel() string {
	return config.AppConfig.LogLevel
}
