package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validTestConfig() *Config {
	return &Config{
		Port:       "8000",
		JWTSecret:  "a-perfectly-long-test-secret-value-1234",
		DBPassword: "s3cure-db-password",
		DBSSLMode:  "require",
		Env:        "development",
	}
}

func TestValidate_Development(t *testing.T) {
	cfg := validTestConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_MissingPort(t *testing.T) {
	cfg := validTestConfig()
	cfg.Port = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_MissingJWTSecret(t *testing.T) {
	cfg := validTestConfig()
	cfg.JWTSecret = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_ProductionRejectsDefaultSecret(t *testing.T) {
	cfg := validTestConfig()
	cfg.Env = "production"
	cfg.JWTSecret = "your-secret-key-change-in-production"
	assert.Error(t, cfg.Validate())
}

func TestValidate_ProductionRejectsShortSecret(t *testing.T) {
	cfg := validTestConfig()
	cfg.Env = "production"
	cfg.JWTSecret = "short"
	assert.Error(t, cfg.Validate())
}

func TestValidate_ProductionRejectsWeakDBPassword(t *testing.T) {
	cfg := validTestConfig()
	cfg.Env = "production"
	cfg.DBPassword = "password"
	assert.Error(t, cfg.Validate())

	cfg.DBPassword = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_ProductionAcceptsStrongConfig(t *testing.T) {
	cfg := validTestConfig()
	cfg.Env = "production"
	assert.NoError(t, cfg.Validate())
}
