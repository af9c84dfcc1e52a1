package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	SchemasDir  string
	RunsDBPath  string
	OutputDir   string
	LogLevel    string
	BatchSize   int
	DefaultRows int64
}

// Load reads COSTGEN_* variables. A .env file in the working directory is
// applied first; variables already set in the environment win.
func Load() *Config {
	loadDotEnv(".env")

	return &Config{
		SchemasDir:  getEnv("COSTGEN_SCHEMAS_DIR", "./schemas"),
		RunsDBPath:  getEnv("COSTGEN_RUNS_DB", "./costgen-runs.sqlite"),
		OutputDir:   getEnv("COSTGEN_OUTPUT_DIR", "."),
		LogLevel:    getEnv("COSTGEN_LOG_LEVEL", "info"),
		BatchSize:   int(getEnvInt("COSTGEN_BATCH_SIZE", 1000)),
		DefaultRows: getEnvInt("COSTGEN_DEFAULT_ROWS", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, value)
	}
}
