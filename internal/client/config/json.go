package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/quzhan/internal/flagx"
	"github.com/dmitrijs2005/quzhan/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Every field is
// optional; absent fields leave the current value untouched.
type JsonConfig struct {
	BaseURL        string          `json:"base_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	LoginPath      string          `json:"login_path"`
	Platform       string          `json:"platform"`
	DatabasePath   string          `json:"database_path"`
	LogLevel       string          `json:"log_level"`
	LogFormat      string          `json:"log_format"`
	PageSize       int             `json:"page_size"`
	BasicUsername  string          `json:"basic_username"`
	BasicPassword  string          `json:"basic_password"`
}

// parseJson overlays cfg with the file named by -c/-config. It panics on read
// or decode errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	if jc.BaseURL != "" {
		cfg.BaseURL = jc.BaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.LoginPath != "" {
		cfg.LoginPath = jc.LoginPath
	}
	if jc.Platform != "" {
		cfg.Platform = jc.Platform
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.LogFormat != "" {
		cfg.LogFormat = jc.LogFormat
	}
	if jc.PageSize > 0 {
		cfg.PageSize = jc.PageSize
	}
	if jc.BasicUsername != "" {
		cfg.BasicUsername = jc.BasicUsername
	}
	if jc.BasicPassword != "" {
		cfg.BasicPassword = jc.BasicPassword
	}
}
