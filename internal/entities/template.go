package entities

// Template is a named encounter variant: presentation, rewards and the
// particle shape played on death.
type Template struct {
	ID            string   `json:"id" yaml:"id"`
	DisplayName   string   `json:"display_name" yaml:"display_name"`
	BarColor      string   `json:"bar_color" yaml:"bar_color"`
	BarStyle      string   `json:"bar_style" yaml:"bar_style"`
	SpawnWeight   float64  `json:"spawn_weight" yaml:"spawn_weight"`
	Announce      bool     `json:"announce" yaml:"announce"`
	Announcement  []string `json:"announcement,omitempty" yaml:"announcement"`
	LootTableID   string   `json:"loot_table" yaml:"loot_table"`
	ParticleShape string   `json:"particle_shape" yaml:"particle_shape"`
}

// Name returns the display name, falling back to the id
func (t *Template) Name() string {
	if t == nil {
		return ""
	}
	if t.DisplayName != "" {
		return t.DisplayName
	}
	return t.ID
}

// TemplateID returns the id of t, or empty for nil
func TemplateID(t *Template) string {
	if t == nil {
		return ""
	}
	return t.ID
}
