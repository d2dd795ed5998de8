package config

import (
	"os"
	"path/filepath"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigtoml"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// FileName is the optional per-repository settings file, looked up in the project root.
const FileName = ".setup.toml"

// Config describes all configuration options
type Config struct {
	Recipe    string `usage:"Path to a recipe YAML file (the built-in recipe is used if empty)"`
	DryRun    bool   `default:"false" usage:"Only print what would be done"`
	SkipBuild bool   `default:"false" usage:"Skip the build steps"`
	SkipLink  bool   `default:"false" usage:"Skip the link steps"`
	Debug     bool   `default:"false" usage:"Include error traces and raw log fields in the output"`
	Log       struct {
		Level   string `default:"info"`
		JSON    bool   `default:"false" usage:"Output JSONND instead of pretty console messages"`
		NoColor bool   `default:"false" usage:"Disable colors"`
	}
}

var logLevels = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
}

// Loader initializes an empty config object and returns a new Loader for this object. Values are read
// from the defaults above, <root>/.setup.toml and SETUP_* environment variables. Flags are left to
// the command line layer.
func Loader(root string) (*Config, *aconfig.Loader) {
	files := []string{}
	cfgPath := filepath.Join(root, FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		files = append(files, cfgPath)
	}

	cfg := Config{}
	return &cfg, aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SETUP",
		SkipFlags: true,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".toml": aconfigtoml.New(),
		},
	})
}

// Load reads the configuration for the project in root.
func Load(root string) (*Config, error) {
	cfg, loader := Loader(root)
	if err := loader.Load(); err != nil {
		return nil, eris.Wrap(err, "Failed to load configuration")
	}

	if cfg.Recipe != "" && !filepath.IsAbs(cfg.Recipe) {
		cfg.Recipe = filepath.Join(root, cfg.Recipe)
	}

	return cfg, nil
}

// Validate verifies that all config fields have valid values
func (cfg *Config) Validate() error {
	_, ok := logLevels[cfg.Log.Level]
	if !ok {
		return eris.Errorf(`Invalid value for log.level: %s`, cfg.Log.Level)
	}

	if cfg.Recipe != "" {
		info, err := os.Stat(cfg.Recipe)
		if err != nil {
			return eris.Wrapf(err, "Invalid value for recipe")
		}

		if info.IsDir() {
			return eris.Errorf("Invalid value for recipe: %s is a directory", cfg.Recipe)
		}
	}

	return nil
}

// LogLevel converts the .Log.Level field to a zerolog.Level
func (cfg *Config) LogLevel() zerolog.Level {
	return logLevels[cfg.Log.Level]
}
