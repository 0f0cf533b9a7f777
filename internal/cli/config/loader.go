package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read into the configuration.
const EnvPrefix = "SPARQLQ_"

// loggerKey is used to store the logger in context.
type loggerKey struct{}

// configKey is used to store the loaded config in context.
type configKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

var configFileNames = []string{"sparqlq.yaml", "sparqlq.yml"}

// flagKeys maps flag names to config keys where they differ from the
// kebab-to-snake conversion.
var flagKeys = map[string]string{
	"base-url":   "endpoint.base_url",
	"repository": "endpoint.repository",
	"method":     "endpoint.method",
	"timeout":    "endpoint.timeout",
	"examples":   "examples_file",
	"port":       "ui.port",
}

// flagsIgnored are flags that select configuration rather than carry it.
var flagsIgnored = map[string]bool{
	"config": true,
	"target": true,
	"help":   true,
}

// envSections are the nested sections reachable through environment variables.
var envSections = []string{"endpoint", "ui"}

// findConfigUpward searches upward from startDir for a sparqlq config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findConfigUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		for _, name := range configFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// envKey transforms SPARQLQ_ENDPOINT_BASE_URL into endpoint.base_url.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range envSections {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

// flagKey returns the config key for an explicitly set flag, or "" to skip it.
func flagKey(f *pflag.Flag) string {
	if !f.Changed || flagsIgnored[f.Name] {
		return ""
	}
	if key, ok := flagKeys[f.Name]; ok {
		return key
	}
	return strings.ReplaceAll(f.Name, "-", "_")
}

func defaults() map[string]any {
	return map[string]any{
		"endpoint.base_url":   DefaultBaseURL,
		"endpoint.repository": DefaultRepository,
		"endpoint.method":     DefaultMethod,
		"endpoint.timeout":    DefaultTimeout.String(),
		"output":              DefaultOutput,
		"log_level":           DefaultLogLevel,
		"verbose":             false,
		"ui.port":             DefaultUIPort,
		"ui.auto_open":        true,
	}
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > endpoint profile > config file > defaults.
//
// cfgFile may be empty, in which case sparqlq.yaml is searched upward from the
// working directory. target selects an entry of the endpoints map whose fields
// override the base endpoint section.
func LoadConfig(cfgFile, target string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if cfgFile == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfgFile = findConfigUpward(cwd)
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
		// Only a path written in the file is relative to the file. Env and
		// flag values below stay relative to the working directory.
		if p := k.String("examples_file"); p != "" {
			if abs, err := filepath.Abs(cfgFile); err == nil {
				if err := k.Set("examples_file", resolvePathRelativeTo(p, filepath.Dir(abs))); err != nil {
					return nil, fmt.Errorf("failed to resolve examples_file: %w", err)
				}
			}
		}
	}

	// 3. Endpoint profile
	if target != "" {
		profile := "endpoints." + target
		if !k.Exists(profile) {
			return nil, fmt.Errorf("unknown endpoint profile %q (available: %s)",
				target, strings.Join(profileNames(k), ", "))
		}
		if err := k.MergeAt(k.Cut(profile), "endpoint"); err != nil {
			return nil, fmt.Errorf("failed to apply endpoint profile %q: %w", target, err)
		}
	}

	// 4. Environment variables
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Flags (only those explicitly set)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key := flagKey(f)
			if key == "" {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 6. Decode
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.Target = target
	cfg.File = cfgFile
	expandEndpointEnvVars(&cfg.Endpoint)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func profileNames(k *koanf.Koanf) []string {
	names := k.MapKeys("endpoints")
	if len(names) == 0 {
		return []string{"none"}
	}
	slices.Sort(names)
	return names
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// WithConfig returns a copy of ctx carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the config stored by WithConfig, or nil.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}

// expandEndpointEnvVars expands environment variables in endpoint fields that
// commonly carry secrets or deployment-specific hosts.
func expandEndpointEnvVars(e *EndpointConfig) {
	e.BaseURL = expandEnvVars(e.BaseURL)
	e.Username = expandEnvVars(e.Username)
	e.Password = expandEnvVars(e.Password)
}
