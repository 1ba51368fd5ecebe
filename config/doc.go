// Package config loads pawkit configuration from YAML files, .env files,
// and environment variables using viper.
//
// Configuration is resolved in order: config.yml as the base, then
// environment variables (automatic binding), then a .env file if present.
//
//	settings, err := config.LoadSettings("pet-hub")
//	mgr := config.NewManagerFromSettings(settings)
package config
