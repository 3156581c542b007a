package bootstrap

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:         "mongodb://localhost:27017",
		MongoDatabase:    "campus_hub",
		AuthSecret:       "test-secret-test-secret-test-sec",
		TokenTTL:         time.Hour,
		StorageType:      "local",
		StorageLocalPath: "./uploads",
		StorageLocalURL:  "/files",
	}
}

func TestValidateConfigAccepts(t *testing.T) {
	if err := ValidateConfig(nil, validAppConfig(), zap.NewNop()); err != nil {
		t.Errorf("ValidateConfig = %v", err)
	}
}

func TestValidateConfigRejects(t *testing.T) {
	cases := map[string]func(*AppConfig){
		"bad mongo uri":       func(c *AppConfig) { c.MongoURI = "not-a-uri" },
		"empty auth secret":   func(c *AppConfig) { c.AuthSecret = "" },
		"zero token ttl":      func(c *AppConfig) { c.TokenTTL = 0 },
		"unknown storage":     func(c *AppConfig) { c.StorageType = "ftp" },
		"local without path":  func(c *AppConfig) { c.StorageLocalPath = "" },
		"s3 without region": func(c *AppConfig) {
			c.StorageType = "s3"
			c.StorageS3Bucket = "b"
		},
	}
	for name, mutate := range cases {
		cfg := validAppConfig()
		mutate(&cfg)
		if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
			t.Errorf("%s: accepted", name)
		}
	}
}
