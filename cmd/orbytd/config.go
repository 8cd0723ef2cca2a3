package main

import (
	"github.com/spf13/viper"
)

// runtimeConfig is the daemon configuration, sourced from ORBYT_* environment
// variables.
type runtimeConfig struct {
	Listen      string
	DatabaseURL string
	RedisAddr   string

	CronSecret          string
	StripeWebhookSecret string

	LoginURL    string
	SettingsURL string

	LogLevel         string
	MetricsNamespace string

	CalendarSyncSchedule string
	FinanceSyncSchedule  string
	RenewSchedule        string
}

func loadConfig() runtimeConfig {
	v := viper.New()
	v.SetEnvPrefix("ORBYT")
	v.AutomaticEnv()

	_ = v.BindEnv("listen")
	_ = v.BindEnv("database_url")
	_ = v.BindEnv("redis_addr")
	_ = v.BindEnv("cron_secret")
	_ = v.BindEnv("stripe_webhook_secret")
	_ = v.BindEnv("login_url")
	_ = v.BindEnv("settings_url")
	_ = v.BindEnv("log_level")
	_ = v.BindEnv("metrics_namespace")
	_ = v.BindEnv("calendar_sync_schedule")
	_ = v.BindEnv("finance_sync_schedule")
	_ = v.BindEnv("renew_schedule")

	v.SetDefault("listen", ":8080")
	v.SetDefault("login_url", "/login")
	v.SetDefault("settings_url", "/settings")
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics_namespace", "orbyt")
	v.SetDefault("calendar_sync_schedule", "*/15 * * * *")
	v.SetDefault("finance_sync_schedule", "0 6 * * *")
	v.SetDefault("renew_schedule", "0 * * * *")

	return runtimeConfig{
		Listen:               v.GetString("listen"),
		DatabaseURL:          v.GetString("database_url"),
		RedisAddr:            v.GetString("redis_addr"),
		CronSecret:           v.GetString("cron_secret"),
		StripeWebhookSecret:  v.GetString("stripe_webhook_secret"),
		LoginURL:             v.GetString("login_url"),
		SettingsURL:          v.GetString("settings_url"),
		LogLevel:             v.GetString("log_level"),
		MetricsNamespace:     v.GetString("metrics_namespace"),
		CalendarSyncSchedule: v.GetString("calendar_sync_schedule"),
		FinanceSyncSchedule:  v.GetString("finance_sync_schedule"),
		RenewSchedule:        v.GetString("renew_schedule"),
	}
}
