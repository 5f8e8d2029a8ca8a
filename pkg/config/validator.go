package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// structValidator runs the declarative `validate:"..."` struct tags
// (required/oneof/min/max) on Config and its nested sections. The
// cross-field and provider-conditional rules below it cover what struct
// tags alone can't express.
var structValidator = validator.New()

// Validator validates configuration comprehensively with clear error messages.
type Validator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll performs comprehensive validation (fail-fast).
func (v *Validator) ValidateAll() error {
	if err := structValidator.Struct(v.cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if err := v.validateSchedule(); err != nil {
		return fmt.Errorf("schedule validation failed: %w", err)
	}
	if err := v.validateJudge(); err != nil {
		return fmt.Errorf("judge validation failed: %w", err)
	}
	if err := v.validateOCR(); err != nil {
		return fmt.Errorf("OCR validation failed: %w", err)
	}
	if err := v.validateReplicator(); err != nil {
		return fmt.Errorf("replicator validation failed: %w", err)
	}
	return nil
}

var timeRangePattern = regexp.MustCompile(`^\d{2}:\d{2}-\d{2}:\d{2}$`)

func (v *Validator) validateSchedule() error {
	s := v.cfg.Schedule
	if s.Quiet == "" {
		return nil
	}
	if !timeRangePattern.MatchString(s.Quiet) {
		return NewValidationError("schedule.quiet", fmt.Errorf("%w: expected HH:MM-HH:MM, got %q", ErrInvalidValue, s.Quiet))
	}
	for _, day := range strings.Split(s.Days, ",") {
		day = strings.TrimSpace(day)
		if day == "" {
			continue
		}
		if !isValidDayAbbrev(day) {
			return NewValidationError("schedule.days", fmt.Errorf("%w: %q", ErrInvalidValue, day))
		}
	}
	return nil
}

func isValidDayAbbrev(day string) bool {
	switch day {
	case "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun":
		return true
	default:
		return false
	}
}

func (v *Validator) validateJudge() error {
	j := v.cfg.Judge
	switch j.Provider {
	case "", "local":
		if j.BaseURL == "" {
			return NewValidationError("judge.base_url", ErrMissingRequiredField)
		}
	case "anthropic":
		if j.AnthropicAPIKeyEnv == "" {
			return NewValidationError("judge.anthropic_api_key_env", ErrMissingRequiredField)
		}
	default:
		return NewValidationError("judge.provider", fmt.Errorf("%w: %q", ErrInvalidValue, j.Provider))
	}
	return nil
}

func (v *Validator) validateOCR() error {
	o := v.cfg.OCR
	if o.SaveScreenshots && o.ScreenshotsDir == "" {
		return NewValidationError("ocr.screenshots_dir", ErrMissingRequiredField)
	}
	return nil
}

func (v *Validator) validateReplicator() error {
	r := v.cfg.Replicator
	if r.PGDSN == "" {
		return nil // mirror is optional
	}
	if r.BatchSize < 1 {
		return NewValidationError("replicator.batch_size", fmt.Errorf("%w: must be >= 1", ErrInvalidValue))
	}
	return nil
}
