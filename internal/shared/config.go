package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv            string
	HTTPAddr          string
	MetricsAddr       string
	RedisAddr         string
	RedisDB           int
	RedisPass         string
	HostawayBase      string
	HostawayKey       string
	HostawayAccountID string
	PlacesBase        string
	PlacesKey         string
	SearchQueries     []string
	ImportWorkers     int
	ProviderTimeout   time.Duration
	CacheTTL          time.Duration
	CacheSweep        time.Duration
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
		AppEnv:            env("APP_ENV", "prod"),
		HTTPAddr:          env("HTTP_ADDR", ":8080"),
		MetricsAddr:       env("METRICS_ADDR", ":9100"),
		RedisAddr:         env("REDIS_ADDR", ""),
		RedisPass:         env("REDIS_PASSWORD", ""),
		RedisDB:           atoi("REDIS_DB", 0),
		HostawayBase:      env("HOSTAWAY_BASE_URL", "https://api.hostaway.com/v1"),
		HostawayKey:       env("HOSTAWAY_API_KEY", ""),
		HostawayAccountID: env("HOSTAWAY_ACCOUNT_ID", ""),
		PlacesBase:        env("GOOGLE_PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		PlacesKey:         env("GOOGLE_PLACES_API_KEY", ""),
		SearchQueries:     splitList(env("PROPERTY_SEARCH_QUERIES", "Flex Living London,Flex Living Shoreditch,Flex Living Camden,Flex Living property management")),
		ImportWorkers:     atoi("IMPORT_WORKERS", 4),
		ProviderTimeout:   time.Duration(atoi("PROVIDER_TIMEOUT_SECONDS", 10)) * time.Second,
		CacheTTL:          time.Duration(atoi("CACHE_TTL_SECONDS", 3600)) * time.Second,
		CacheSweep:        time.Duration(atoi("CACHE_SWEEP_SECONDS", 600)) * time.Second,
	}
	if c.HostawayKey == "" {
		log.Warn().Msg("HOSTAWAY_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
