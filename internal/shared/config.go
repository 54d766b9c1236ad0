package shared

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	SourceMySQL = "mysql"
	SourceCMS   = "cms"
)

type Config struct {
	AppEnv         string
	LogLevel       string
	HTTPAddr       string
	MetricsAddr    string
	ContentSource  string
	MySQLDSN       string
	CMSBase        string
	CMSKey         string
	CMSRPS         int
	AuditWorkers   int
	RequestTimeout time.Duration
	CitywideLabel  string
	MetroLabel     string
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		LogLevel:       env("LOG_LEVEL", "info"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ":9100"),
		ContentSource:  strings.ToLower(env("CONTENT_SOURCE", SourceMySQL)),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/atlhub?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		CMSBase:        env("CMS_BASE_URL", "http://localhost:1337/api"),
		CMSKey:         env("CMS_API_KEY", ""),
		CMSRPS:         atoi("CMS_RPS", 5),
		AuditWorkers:   atoi("AUDIT_WORKERS", 8),
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		CitywideLabel:  env("CITYWIDE_LABEL", "Atlanta"),
		MetroLabel:     env("METRO_LABEL", "Atlanta Metro"),
	}
	if c.ContentSource == SourceCMS && c.CMSKey == "" {
		log.Warn().Msg("CMS_API_KEY is empty")
	}
	return c
}

// Validate reports settings the binaries cannot start with.
func (c Config) Validate() error {
	switch c.ContentSource {
	case SourceMySQL, SourceCMS:
	default:
		return fmt.Errorf("CONTENT_SOURCE must be %q or %q, got %q", SourceMySQL, SourceCMS, c.ContentSource)
	}
	if c.AuditWorkers <= 0 {
		return fmt.Errorf("AUDIT_WORKERS must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
