package engineconfig

import "fmt"

// ValidationError names the offending field. Validation failures abort
// startup; a scoring cycle must never run on a half-valid configuration.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks every constraint the engine relies on.
func Validate(cfg *Config) error {
	if cfg.Meta.EngineID == "" {
		return ValidationError{"meta.engine_id", "required"}
	}

	if cfg.Gate.PEMax <= 0 {
		return ValidationError{"gate.pe_max", "must be > 0"}
	}
	if cfg.Gate.PBMax <= 0 {
		return ValidationError{"gate.pb_max", "must be > 0"}
	}
	if cfg.Gate.PayoutMax <= 0 {
		return ValidationError{"gate.payout_max", "must be > 0"}
	}
	if cfg.Gate.DebtToEBITDAMax <= 0 {
		return ValidationError{"gate.debt_to_ebitda_max", "must be > 0"}
	}

	if err := cfg.Weights.Validate(); err != nil {
		return ValidationError{"weights", err.Error()}
	}

	if cfg.Alerts.ScoreAlert <= 0 || cfg.Alerts.ScoreAlert > 10 {
		return ValidationError{"alerts.score_alert", "must be in (0, 10]"}
	}
	if cfg.Alerts.DividendAlert <= 0 {
		return ValidationError{"alerts.dividend_alert", "must be > 0"}
	}

	r := cfg.Recommendations
	if r.DefaultLimit <= 0 {
		return ValidationError{"recommendations.default_limit", "must be > 0"}
	}
	if r.MaxLimit < r.DefaultLimit {
		return ValidationError{"recommendations.max_limit", "must be >= default_limit"}
	}

	return nil
}
