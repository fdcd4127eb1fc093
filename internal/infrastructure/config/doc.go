// Package config loads and validates greenhouse core configuration.
//
// Configuration is read from a YAML file, merged over hardcoded defaults,
// and finally overridden by GREENHOUSE_* environment variables. Secrets
// (broker credentials, InfluxDB token, SMTP password, push API key) should
// always come from the environment in production.
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path})
package config
