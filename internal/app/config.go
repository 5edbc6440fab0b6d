package app

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/academicworld-backend/internal/logger"
	"github.com/yungbote/academicworld-backend/internal/utils"
)

type Config struct {
	Port         string   `yaml:"port"`
	CORSOrigins  []string `yaml:"cors_origins"`
	EnsureSchema bool     `yaml:"ensure_schema"`
	EnableTracing bool    `yaml:"enable_tracing"`
}

// LoadConfig reads env first, then applies overrides from the optional YAML
// file named by CONFIG_FILE. Store connection parameters stay env-only; they
// are read where the store clients are constructed.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Port:          utils.GetEnv("PORT", "8080", log),
		CORSOrigins:   splitCSV(utils.GetEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5174", log)),
		EnsureSchema:  utils.GetEnvAsBool("MYSQL_ENSURE_SCHEMA", false, log),
		EnableTracing: utils.GetEnvAsBool("ENABLE_TRACING", false, log),
	}

	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file %s: %w", path, err)
	}
	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if fileCfg.Port != "" {
		cfg.Port = fileCfg.Port
	}
	if len(fileCfg.CORSOrigins) > 0 {
		cfg.CORSOrigins = fileCfg.CORSOrigins
	}
	if fileCfg.EnsureSchema {
		cfg.EnsureSchema = true
	}
	if fileCfg.EnableTracing {
		cfg.EnableTracing = true
	}
	log.Info("Config file applied", "path", path)
	return cfg, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
