package config

import (
	"encoding/json"
	"flag"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string `json:"port"`
	OptionsDir  string `json:"optionsDir"`
	DBURL       string `json:"dbUrl"`
	AutoMigrate bool   `json:"autoMigrate"`
	Seed        bool   `json:"seed"`
}

func def() Config {
	return Config{
		Port:        "8080",
		OptionsDir:  "reference/options",
		DBURL:       "",
		AutoMigrate: false,
		Seed:        true,
	}
}

func loadJSON(path string) (Config, error) {
	c := def()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return c, err
	}
	return c, nil
}

func getenv(k, fallback string) string {
	if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func getenvBool(k string, fallback bool) bool {
	if v, ok := os.LookupEnv(k); ok {
		v = strings.TrimSpace(strings.ToLower(v))
		if v == "1" || v == "true" || v == "yes" {
			return true
		}
		if v == "0" || v == "false" || v == "no" {
			return false
		}
	}
	return fallback
}

func parseBool(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	return s == "true" || s == "1" || s == "yes"
}

// LoadWithPath читает JSON по указанному пути, потом применяет ENV и флаги.
func LoadWithPath(jsonPath string) Config {
	cfg := def()

	// JSON (если файл существует)
	if st, err := os.Stat(jsonPath); err == nil && !st.IsDir() {
		if c2, err := loadJSON(jsonPath); err == nil {
			cfg = c2
		}
	}

	// ENV overrides
	cfg.Port = getenv("VITRINA_PORT", cfg.Port)
	cfg.OptionsDir = getenv("VITRINA_OPTIONS_DIR", cfg.OptionsDir)
	cfg.DBURL = getenv("VITRINA_DB_URL", cfg.DBURL)
	cfg.AutoMigrate = getenvBool("VITRINA_AUTO_MIGRATE", cfg.AutoMigrate)
	cfg.Seed = getenvBool("VITRINA_SEED", cfg.Seed)

	// Flags overrides
	configPath := flag.String("config", jsonPath, "Path to config JSON")
	port := flag.String("port", cfg.Port, "HTTP port")
	options := flag.String("options", cfg.OptionsDir, "Path to option catalogs directory")
	db := flag.String("db", cfg.DBURL, "Postgres URL (empty = in-memory)")
	auto := flag.String("auto-migrate", strconv.FormatBool(cfg.AutoMigrate), "Apply idempotent DDL on start (true/false)")
	seed := flag.String("seed", strconv.FormatBool(cfg.Seed), "Seed default view template when empty (true/false)")

	flag.Parse()

	// Если через флаг передали другой конфиг — перечитаем
	if *configPath != jsonPath {
		return LoadWithPath(*configPath)
	}

	cfg.Port = strings.TrimSpace(*port)
	cfg.OptionsDir = strings.TrimSpace(*options)
	cfg.DBURL = strings.TrimSpace(*db)
	cfg.AutoMigrate = parseBool(*auto)
	cfg.Seed = parseBool(*seed)

	return cfg
}
