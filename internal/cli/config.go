package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/daslerpc/mech-checker/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "MECHCHECK"

	cfgKeySpaceSize     = "space_size"
	cfgKeyGoal          = "goal"
	cfgKeyResolution    = "resolution"
	cfgKeyTopSpeed      = "top_speed"
	cfgKeyAllowedDelay  = "allowed_delay"
	cfgKeyHorizon       = "horizon"
	cfgKeyGuardLength   = "guard_length"
	cfgKeyVehicleLength = "vehicle_length"
	cfgKeyVGuards       = "vertical_guard_offsets"
	cfgKeyHGuards       = "horizontal_guard_offsets"
	cfgKeyDataDir       = "data_dir"
	cfgKeyWorkers       = "workers"
	cfgKeyStrategy      = "strategy"
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"space-size":               cfgKeySpaceSize,
	"goal":                     cfgKeyGoal,
	"resolution":               cfgKeyResolution,
	"top-speed":                cfgKeyTopSpeed,
	"allowed-delay":            cfgKeyAllowedDelay,
	"horizon":                  cfgKeyHorizon,
	"guard-length":             cfgKeyGuardLength,
	"vehicle-length":           cfgKeyVehicleLength,
	"vertical-guard-offsets":   cfgKeyVGuards,
	"horizontal-guard-offsets": cfgKeyHGuards,
	"workers":                  cfgKeyWorkers,
	"strategy":                 cfgKeyStrategy,
}

// addParamFlags registers the parameter flags on fs. Defaults are left empty
// so that config.yaml and the environment apply unless a flag is given.
func addParamFlags(fs *pflag.FlagSet) {
	fs.String("space-size", "", "side length of the square crossing space")
	fs.String("goal", "", "position every vehicle must reach (default: space size)")
	fs.String("resolution", "", "grid step in space and time, e.g. 1/16 or 0.0625")
	fs.String("top-speed", "", "speed limit in space units per time unit")
	fs.String("allowed-delay", "", "how far a vehicle may lag the top-speed schedule")
	fs.String("horizon", "", "time by which all vehicles must arrive (default: space/speed + delay)")
	fs.String("guard-length", "", "length of the guard region (default: 2 x resolution)")
	fs.String("vehicle-length", "", "length of a vehicle (default: 1 - guard length)")
	fs.StringSlice("vertical-guard-offsets", nil, "start offsets of the two vertical guards")
	fs.StringSlice("horizontal-guard-offsets", nil, "start offsets of the two horizontal guards")
	fs.Int("workers", 0, "worker goroutines per stage (default: all CPUs)")
	fs.String("strategy", "", "neighbor lookup: scan or generate")
}

// loadConfig reads config.yaml from configDir with Viper, layering
// MECHCHECK_* environment variables and the flags in fs on top. A missing
// config.yaml is not an error.
func loadConfig(configDir string, fs *pflag.FlagSet) (*viper.Viper, error) {
	defaults := types.DefaultParams()

	v := viper.New()
	v.SetDefault(cfgKeySpaceSize, defaults.SpaceSize)
	v.SetDefault(cfgKeyResolution, defaults.Resolution)
	v.SetDefault(cfgKeyTopSpeed, defaults.TopSpeed)
	v.SetDefault(cfgKeyAllowedDelay, defaults.AllowedDelay)
	v.SetDefault(cfgKeyWorkers, 0)
	v.SetDefault(cfgKeyStrategy, types.StrategyGenerate)

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// configFromViper assembles the run configuration. dataDir is the already
// resolved data directory.
func configFromViper(v *viper.Viper, dataDir string) types.Config {
	return types.Config{
		Params: types.Params{
			SpaceSize:              v.GetString(cfgKeySpaceSize),
			Goal:                   v.GetString(cfgKeyGoal),
			Resolution:             v.GetString(cfgKeyResolution),
			TopSpeed:               v.GetString(cfgKeyTopSpeed),
			AllowedDelay:           v.GetString(cfgKeyAllowedDelay),
			Horizon:                v.GetString(cfgKeyHorizon),
			GuardLength:            v.GetString(cfgKeyGuardLength),
			VehicleLength:          v.GetString(cfgKeyVehicleLength),
			VerticalGuardOffsets:   v.GetStringSlice(cfgKeyVGuards),
			HorizontalGuardOffsets: v.GetStringSlice(cfgKeyHGuards),
		},
		DataDir:  dataDir,
		Workers:  v.GetInt(cfgKeyWorkers),
		Strategy: v.GetString(cfgKeyStrategy),
	}
}

// configFile is the layout written to config.yaml by init.
type configFile struct {
	types.Params `yaml:",inline"`
	DataDir      string `yaml:"data_dir,omitempty"`
	Workers      int    `yaml:"workers"`
	Strategy     string `yaml:"strategy"`
}

// writeConfigIfMissing creates config.yaml with the reference parameters if
// the file does not exist. It reports whether a file was written.
func writeConfigIfMissing(path, dataDir string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := configFile{
		Params:   types.DefaultParams(),
		DataDir:  dataDir,
		Strategy: types.StrategyGenerate,
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# mechcheck configuration. Rationals may be written as 1/16 or 0.0625.\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
