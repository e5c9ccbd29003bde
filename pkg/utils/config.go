package utils

import (
	"os"
	"strconv"
	"time"
)

const (
	defaultComicAPI = "https://www.sankavollerei.com"
	defaultAddr     = ":8080"
)

type ServerConfig struct {
	Addr         string
	ComicAPI     string // remote comics API base URL
	TrackAPI     string // analytics endpoint used by the CLI reporter; empty disables it
	FetchTimeout time.Duration
	CacheTTL     time.Duration
}

func LoadServerConfig() ServerConfig {
	cfg := ServerConfig{
		Addr:         defaultAddr,
		ComicAPI:     defaultComicAPI,
		FetchTimeout: 15 * time.Second,
		CacheTTL:     2 * time.Minute,
	}

	if v := os.Getenv("KANATOON_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("KANATOON_COMIC_API"); v != "" {
		cfg.ComicAPI = v
	}
	if v := os.Getenv("KANATOON_TRACK_API"); v != "" {
		cfg.TrackAPI = v
	}
	if v := os.Getenv("KANATOON_FETCH_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FetchTimeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("KANATOON_CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.CacheTTL = time.Duration(n) * time.Second
		}
	}

	return cfg
}
