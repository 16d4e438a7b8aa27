package config

import "testing"

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Port: "8080"},
		MongoDB:   MongoDBConfig{URI: "mongodb://localhost:27017", DBName: "seedledger"},
		Reporting: ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "Asia/Kolkata"},
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.Server.Port = "" }},
		{"missing mongo uri", func(c *Config) { c.MongoDB.URI = "" }},
		{"missing db name", func(c *Config) { c.MongoDB.DBName = "" }},
		{"missing cron schedule", func(c *Config) { c.Reporting.CronSchedule = "" }},
		{"missing timezone", func(c *Config) { c.Reporting.Timezone = "" }},
		{"sheets credentials without sheet id", func(c *Config) { c.Sheets.CredentialsPath = "/creds.json" }},
		{"sheet id without credentials", func(c *Config) { c.Sheets.SpreadsheetID = "sheet-1" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestSheetsEnabled(t *testing.T) {
	cfg := validConfig()
	if cfg.SheetsEnabled() {
		t.Error("sheets reported enabled without configuration")
	}
	cfg.Sheets = SheetsConfig{CredentialsPath: "/creds.json", SpreadsheetID: "sheet-1"}
	if !cfg.SheetsEnabled() {
		t.Error("sheets reported disabled despite configuration")
	}
}
