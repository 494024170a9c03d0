package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	TasksAPIURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Background job knobs.
	ReconcileInterval time.Duration
	ActivateInterval  time.Duration
	// ReminderLead is how long before an occurrence its reminder becomes
	// visible. The product has shipped both 1h and 15m at different points;
	// 1h stays the default until that is settled.
	ReminderLead   time.Duration
	HorizonDays    int
	MaxOccurrences int
	FetchTimeout   time.Duration
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          mustGetenv("DATABASE_URL"),
		TasksAPIURL:          getenv("TASKS_API_URL", "http://tasks-api:8080"),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",

		ReconcileInterval: getenvDuration("RECONCILE_INTERVAL", time.Hour),
		ActivateInterval:  getenvDuration("ACTIVATE_INTERVAL", time.Minute),
		ReminderLead:      getenvDuration("REMINDER_LEAD", time.Hour),
		HorizonDays:       getenvInt("HORIZON_DAYS", 365),
		MaxOccurrences:    getenvInt("MAX_OCCURRENCES", 365),
		FetchTimeout:      getenvDuration("FETCH_TIMEOUT", 10*time.Second),
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func mustGetenv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		panic("missing env: " + key)
	}
	return v
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
