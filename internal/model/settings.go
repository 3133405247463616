package model

// Setting keys, shared with the persisted layout.
const (
	SettingProgressBarEnabled  = "progressbar-enabled"
	SettingProgressBarColor    = "progressbar-color"
	SettingColorCodedProjects  = "color-coded-projects-enabled"
	SettingFrequentSubprojects = "frequent-subprojects-enabled"
	SettingDarkMode            = "dark-mode"
)

// ProgressBarSettings controls the daily progress bar.
type ProgressBarSettings struct {
	Enabled     bool    `json:"enabled"`
	Color       string  `json:"color"`
	TargetHours float64 `json:"targetHours"`
}

// Settings holds user preferences stored alongside the timesheet data.
type Settings struct {
	ProgressBar         ProgressBarSettings `json:"progressBar"`
	ColorCodedProjects  bool                `json:"colorCodedProjects"`
	FrequentSubprojects bool                `json:"frequentSubprojects"`
	DarkMode            bool                `json:"darkMode"`
}

// DefaultSettings returns the settings used when nothing is stored.
func DefaultSettings() Settings {
	return Settings{
		ProgressBar: ProgressBarSettings{
			Enabled:     false,
			Color:       "#10b981",
			TargetHours: 8,
		},
	}
}

// SettingKeys lists every preference key in display order.
func SettingKeys() []string {
	return []string{
		SettingProgressBarEnabled,
		SettingProgressBarColor,
		SettingColorCodedProjects,
		SettingFrequentSubprojects,
		SettingDarkMode,
	}
}

// IsSettingKey reports whether key names a known preference.
func IsSettingKey(key string) bool {
	for _, k := range SettingKeys() {
		if k == key {
			return true
		}
	}
	return false
}
