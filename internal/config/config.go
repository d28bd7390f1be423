package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr      string `yaml:"listen_addr" json:"listen_addr"`
	MetaDSN         string `yaml:"meta_dsn" json:"meta_dsn"`
	StagingDir      string `yaml:"staging_dir" json:"staging_dir"`
	UploadDir       string `yaml:"upload_dir" json:"upload_dir"`
	MaxDeclaredSize int64  `yaml:"max_declared_size" json:"max_declared_size"`
	GCMaxAgeHours   int    `yaml:"gc_max_age_hours" json:"gc_max_age_hours"`
	GCIntervalMin   int    `yaml:"gc_interval_min" json:"gc_interval_min"`
}

const (
	defaultListenAddr    = ":8080"
	defaultMetaDSN       = "memory://"
	defaultStagingDir    = "./data/staging"
	defaultUploadDir     = "./data/uploads"
	defaultGCMaxAgeHours = 24
	defaultGCIntervalMin = 30
)

// GCMaxAge возвращает возраст, после которого брошенная сессия подлежит сбору.
func (c *Config) GCMaxAge() time.Duration {
	return time.Duration(c.GCMaxAgeHours) * time.Hour
}

// GCInterval возвращает период фонового запуска GC.
func (c *Config) GCInterval() time.Duration {
	return time.Duration(c.GCIntervalMin) * time.Minute
}

// Load читает YAML-конфигурацию, применяет ENV-переопределения и возвращает актуальную структуру.
func Load() (*Config, error) {
	c := &Config{
		ListenAddr:    defaultListenAddr,
		MetaDSN:       defaultMetaDSN,
		StagingDir:    defaultStagingDir,
		UploadDir:     defaultUploadDir,
		GCMaxAgeHours: defaultGCMaxAgeHours,
		GCIntervalMin: defaultGCIntervalMin,
	}

	path := getenv("CONFIG_PATH", "./config.yaml")
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// ENV override
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("META_DSN"); v != "" {
		c.MetaDSN = v
	}
	if v := os.Getenv("STAGING_DIR"); v != "" {
		c.StagingDir = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		c.UploadDir = v
	}
	if v := os.Getenv("MAX_DECLARED_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.MaxDeclaredSize = n
		}
	}
	if v := os.Getenv("GC_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.GCMaxAgeHours = n
		}
	}
	if v := os.Getenv("GC_INTERVAL_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.GCIntervalMin = n
		}
	}

	return c, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}

	return def
}
