package main

import (
	"upset-backend/lib/sqliteutil"
	"upset-backend/services/ingest"
)

type ScraperConfig struct {
	BaseUrl     string `json:"base_url"`
	Identity    string `json:"identity"`
	MaxRequests int    `json:"max_requests"`
	// length of one rate limit window in seconds
	WindowSeconds int `json:"window_seconds"`
	// route requests through the cloudflare bypass transport with a
	// rotating browser user agent
	BrowserBypass bool `json:"browser_bypass"`
}

// cron specs per sync job, an empty spec falls back to the default
type ScheduleConfig struct {
	Upcoming     string `json:"upcoming"`
	Results      string `json:"results"`
	Rankings     string `json:"rankings"`
	Profiles     string `json:"profiles"`
	Health       string `json:"health"`
	ResultsLimit int    `json:"results_limit"`
	// concurrent page fetches during fan-out syncs
	Workers int `json:"workers"`
}

type Config struct {
	Port     int               `json:"port"`
	Database sqliteutil.Config `json:"database"`
	Scraper  ScraperConfig     `json:"scraper"`
	Schedule ScheduleConfig    `json:"schedule"`
	Smtp     ingest.SmtpConfig `json:"smtp"`
}
