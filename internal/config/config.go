// Package config loads application settings from environment variables
// (populated from a .env file by main, if one exists).
package config

import (
	"errors"

	"github.com/spf13/viper"
)

const (
	defaultDatabase   = "bandsync"
	defaultCursorFile = "next.json"
	defaultLogFile    = "bandsync.log"
)

// Config holds process-wide settings. Per-command knobs (interval, limit)
// stay on the command flags.
type Config struct {
	MongoURI   string
	Database   string
	Token      string
	CursorFile string
	LogFile    string
}

// Load reads settings from the environment. The Mongo connection string is
// required; the OAuth token is passed through as-is and its absence is
// reported by the API client as an auth failure when fetching starts.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("BANDSYNC_DATABASE", defaultDatabase)
	v.SetDefault("BANDSYNC_CURSOR_FILE", defaultCursorFile)
	v.SetDefault("BANDSYNC_LOG_FILE", defaultLogFile)

	mongoURI := v.GetString("MONGO_CONNECTION_STRING")
	if mongoURI == "" {
		return nil, errors.New("MONGO_CONNECTION_STRING environment variable not set")
	}

	return &Config{
		MongoURI:   mongoURI,
		Database:   v.GetString("BANDSYNC_DATABASE"),
		Token:      v.GetString("JAWBONE_OAUTH_TOKEN"),
		CursorFile: v.GetString("BANDSYNC_CURSOR_FILE"),
		LogFile:    v.GetString("BANDSYNC_LOG_FILE"),
	}, nil
}
