package engineconfig

import (
	"github.com/radarinvest/backend/internal/alerting"
	"github.com/radarinvest/backend/internal/contracts"
	"github.com/radarinvest/backend/internal/scoring"
)

// Config is the full scoring engine configuration, loaded from one YAML
// file so every tunable lives in a single reviewable place.
type Config struct {
	Meta            Meta                  `yaml:"meta" json:"meta"`
	Gate            scoring.GateBounds    `yaml:"gate" json:"gate"`
	Weights         contracts.WeightTable `yaml:"weights" json:"weights"`
	Alerts          alerting.Thresholds   `yaml:"alerts" json:"alerts"`
	Recommendations Recommendations       `yaml:"recommendations" json:"recommendations"`
}

// Meta identifies the configuration revision.
type Meta struct {
	EngineID string `yaml:"engine_id" json:"engine_id"`
	Version  string `yaml:"version" json:"version"`
}

// Recommendations bounds the recommendation list size.
type Recommendations struct {
	DefaultLimit int `yaml:"default_limit" json:"default_limit"`
	MaxLimit     int `yaml:"max_limit" json:"max_limit"`
}

// Default returns the built-in configuration, used when no YAML file is
// present.
func Default() *Config {
	return &Config{
		Meta: Meta{
			EngineID: "radar-default",
			Version:  "1",
		},
		Gate:    scoring.DefaultGateBounds(),
		Weights: contracts.DefaultWeightTable(),
		Alerts:  alerting.DefaultThresholds(),
		Recommendations: Recommendations{
			DefaultLimit: 10,
			MaxLimit:     50,
		},
	}
}
