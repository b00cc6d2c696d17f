package config

// Overrides carries command-line values that take priority over the file.
// Zero values leave the loaded setting untouched.
type Overrides struct {
	ConfigPath string
	Debug      bool
	Scale      int
	Palette    int // -1 = not set
	Format     string
	OutputDir  string
	Workers    int
	LogFile    string
}

// NoOverrides returns an Overrides that changes nothing.
func NoOverrides() Overrides {
	return Overrides{Palette: -1}
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, o Overrides) {
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	if o.Scale > 0 {
		cfg.Decode.Scale = o.Scale
	}
	if o.Palette >= 0 {
		cfg.Decode.Palette = o.Palette
	}
	if o.Format != "" {
		cfg.Export.Format = o.Format
	}
	if o.OutputDir != "" {
		cfg.Export.OutputDir = o.OutputDir
	}
	if o.Workers > 0 {
		cfg.Export.Workers = o.Workers
	}
	if o.LogFile != "" {
		cfg.Logging.LogFile = o.LogFile
	}
}
