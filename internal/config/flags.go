package config

import "flag"

// Flags holds the command-line overrides.
type Flags struct {
	Config      string
	Input       string
	Debug       bool
	Samples     int
	Workers     int
	Seed        int64
	WriteConfig string
}

// RegisterFlags registers the command-line flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.StringVar(&f.Input, "input", "", "Path to phase description file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.IntVar(&f.Samples, "samples", 0, "Samples per check")
	fs.IntVar(&f.Workers, "workers", 0, "Number of workers (0 = use config)")
	fs.Int64Var(&f.Seed, "seed", 0, "Random seed (0 = use config)")
	fs.StringVar(&f.WriteConfig, "write-config", "", "Write the effective config to this path and exit")
	return f
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Input != "" {
		cfg.Input.Path = f.Input
	}
	if f.Samples > 0 {
		cfg.Verify.Samples = f.Samples
	}
	if f.Workers > 0 {
		cfg.Verify.Workers = f.Workers
	}
	if f.Seed != 0 {
		cfg.Verify.Seed = f.Seed
	}
}
