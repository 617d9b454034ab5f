// Package config provides configuration types and loading for summary widgets.
package config

import "github.com/kylesnowschwartz/summary-widget/stats"

// Default global values.
const (
	DefaultStatistic = string(stats.StatCount)
	DefaultDigits    = DigitsNone
	DefaultListen    = ":8080"

	// DigitsNone disables rounding; the value is shown as-is.
	DigitsNone = -1
)

// DefaultConfig returns the hardcoded global default configuration.
func DefaultConfig() ResolvedConfig {
	return ResolvedConfig{
		Statistic: DefaultStatistic,
		Digits:    DefaultDigits,
	}
}

// StarterConfig returns a Config suitable for serializing as a starting
// template: the global defaults plus one example widget per statistic.
func StarterConfig() Config {
	statistic := DefaultStatistic
	digits := DefaultDigits
	listen := DefaultListen

	widgets := make(map[string]SettingsConfig, len(stats.ValidStatistics))
	for _, s := range stats.ValidStatistics {
		name := string(s)
		var d *int
		if s == stats.StatMean {
			d = intPtr(2)
		}
		widgets[name] = SettingsConfig{Statistic: &name, Digits: d}
	}

	return Config{
		Listen: &listen,
		Defaults: SettingsConfig{
			Statistic: &statistic,
			Digits:    &digits,
		},
		Widgets: widgets,
	}
}

func intPtr(i int) *int {
	return &i
}
