// Package config loads runtime configuration for the quzhan CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: NEXT_PUBLIC_GATEWAY_HOST_AND_PORT (or QUZHAN_GATEWAY),
//     QUZHAN_REQUEST_TIMEOUT, QUZHAN_DB, QUZHAN_LOG_LEVEL, QUZHAN_LOG_FORMAT.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags, which override everything above.
//
// Supported flags
//
//	-a string   gateway base URL
//	-t int      request timeout (seconds)
//	-d string   local database path
//	-l string   log level
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "10s" or integer
// nanoseconds:
//
//	{
//	  "base_url": "http://localhost:8080",
//	  "request_timeout": "10s",
//	  "login_path": "/login",
//	  "database_path": "quzhan.db",
//	  "log_level": "info",
//	  "log_format": "text",
//	  "page_size": 10
//	}
package config
