package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"markonly/internal/markonly"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// policyFromEnv reads the MARKONLY_* variables over the defaults.
func policyFromEnv() markonly.Policy {
	p := markonly.NewPolicy()
	p.ActiveValue = getEnv("MARKONLY_ACTIVE_VALUE", p.ActiveValue)
	p.DeletedValue = getEnv("MARKONLY_DELETED_VALUE", p.DeletedValue)
	p.Enabled = getEnvBool("MARKONLY_ENABLED", p.Enabled)
	p.DebugLogging = getEnvBool("MARKONLY_DEBUG", p.DebugLogging)
	p.DefaultActiveOnCreate = getEnvBool("MARKONLY_DEFAULT_ACTIVE_ON_CREATE", p.DefaultActiveOnCreate)
	return p
}
