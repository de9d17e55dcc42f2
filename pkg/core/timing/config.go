package timing

import (
	"github.com/matzehuels/jyotish/pkg/core/graha"
	"github.com/matzehuels/jyotish/pkg/errors"
)

// SearchConfig tunes the boundary search for one body.
type SearchConfig struct {
	// StepDays is the coarse scan step.
	StepDays int `json:"step_days" toml:"step_days"`

	// MaxDays is the search horizon in either direction.
	MaxDays int `json:"max_days" toml:"max_days"`

	// GraceDays is the retrograde tolerance window. Zero disables
	// re-entry verification.
	GraceDays int `json:"grace_days" toml:"grace_days"`
}

// SearchConfigs maps every body to its search parameters.
type SearchConfigs map[graha.Body]SearchConfig

// DefaultSearchConfigs returns the built-in table. Steps and horizons scale
// with each body's synodic behaviour; the Moon is listed for completeness
// although sign timing skips it.
func DefaultSearchConfigs() SearchConfigs {
	return SearchConfigs{
		graha.Sun:     {StepDays: 3, MaxDays: 40, GraceDays: 0},
		graha.Moon:    {StepDays: 1, MaxDays: 5, GraceDays: 0},
		graha.Mercury: {StepDays: 2, MaxDays: 90, GraceDays: 30},
		graha.Venus:   {StepDays: 3, MaxDays: 120, GraceDays: 50},
		graha.Mars:    {StepDays: 5, MaxDays: 240, GraceDays: 80},
		graha.Jupiter: {StepDays: 14, MaxDays: 450, GraceDays: 150},
		graha.Saturn:  {StepDays: 21, MaxDays: 1000, GraceDays: 180},
		graha.Rahu:    {StepDays: 14, MaxDays: 600, GraceDays: 0},
		graha.Ketu:    {StepDays: 14, MaxDays: 600, GraceDays: 0},
	}
}

// Validate checks a single body's parameters.
func (c SearchConfig) Validate() error {
	if c.StepDays <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "step_days must be positive, got %d", c.StepDays)
	}
	if c.MaxDays < c.StepDays {
		return errors.New(errors.ErrCodeInvalidConfig, "max_days (%d) must be at least step_days (%d)", c.MaxDays, c.StepDays)
	}
	if c.GraceDays < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "grace_days must not be negative, got %d", c.GraceDays)
	}
	return nil
}

// Validate checks that every body has a usable entry.
func (cs SearchConfigs) Validate() error {
	for _, b := range graha.All {
		c, ok := cs[b]
		if !ok {
			return errors.New(errors.ErrCodeInvalidConfig, "missing search config for %s", b.Name())
		}
		if err := c.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "search config for %s", b.Name())
		}
	}
	return nil
}

func (c SearchConfig) verifyStep() int {
	return max(1, c.StepDays/2)
}
