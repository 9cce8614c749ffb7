package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by parseEnv. The gateway URL keeps the name the
// web build used so both clients can share one .env file.
const (
	envGateway        = "NEXT_PUBLIC_GATEWAY_HOST_AND_PORT"
	envGatewayAlt     = "QUZHAN_GATEWAY"
	envRequestTimeout = "QUZHAN_REQUEST_TIMEOUT"
	envDatabasePath   = "QUZHAN_DB"
	envLogLevel       = "QUZHAN_LOG_LEVEL"
	envLogFormat      = "QUZHAN_LOG_FORMAT"
	envBasicUsername  = "QUZHAN_BASIC_USERNAME"
	envBasicPassword  = "QUZHAN_BASIC_PASSWORD"
)

func getEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

// parseEnv overlays values from the environment. Unparseable durations are
// ignored and the previous value kept.
func parseEnv(cfg *Config) {
	if v := getEnv(envGateway, envGatewayAlt); v != "" {
		cfg.BaseURL = v
	}
	if v := getEnv(envRequestTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		} else if secs, err := strconv.Atoi(v); err == nil {
			cfg.RequestTimeout = time.Duration(secs) * time.Second
		}
	}
	if v := getEnv(envDatabasePath); v != "" {
		cfg.DatabasePath = v
	}
	if v := getEnv(envLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := getEnv(envLogFormat); v != "" {
		cfg.LogFormat = v
	}
	if v := getEnv(envBasicUsername); v != "" {
		cfg.BasicUsername = v
	}
	if v := getEnv(envBasicPassword); v != "" {
		cfg.BasicPassword = v
	}
}
