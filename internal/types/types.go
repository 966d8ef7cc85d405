package types

// Strategy identifies one of the mutually exclusive sleep-inhibit mechanisms.
type Strategy string

const (
	StrategyAuto   Strategy = "auto"   // probe the platform and pick one
	StrategyNative Strategy = "native" // portal wake lock
	StrategyLegacy Strategy = "legacy" // recurring activity-reset timer
	StrategyMedia  Strategy = "media"  // silent looped playback
)

// IsValid reports whether s is a known strategy name.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyAuto, StrategyNative, StrategyLegacy, StrategyMedia:
		return true
	}
	return false
}

type Config struct {
	Inhibit InhibitConfig `yaml:"inhibit"`
	Log     LogConfig     `yaml:"log"`
}

type InhibitConfig struct {
	Strategy         Strategy `yaml:"strategy"`           // "auto", "native", "legacy" or "media"
	Reason           string   `yaml:"reason"`             // human-readable reason reported to the platform
	ResetIntervalSec int      `yaml:"reset_interval_sec"` // legacy strategy timer period, seconds
	Notifications    bool     `yaml:"notifications"`      // desktop notification on lost/failed lock
}

type LogConfig struct {
	Level    string `yaml:"level"`    // debug|info|warn|error
	Filename string `yaml:"filename"` // empty = stdout
}
