// Package config loads outfit's layered configuration with koanf.
// Precedence, lowest first: embedded defaults, the image's
// outfit.toml, legacy per-feature environment variables (GO_VERSION
// and friends), then OUTFIT_-prefixed environment variables.
package config

import (
	_ "embed"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/paths"
)

//go:embed defaults.toml
var defaultConfig []byte

// EnvPrefix is the prefix for outfit's own environment overrides.
// OUTFIT_GOLANG__VERSION=1.22.1 maps to golang.version; the double
// underscore is the key separator so single underscores survive in
// key names like api_levels.
const EnvPrefix = "OUTFIT_"

// legacyEnvKeys maps the environment variables the original shell
// installers honored onto config keys.
var legacyEnvKeys = map[string]string{
	"GO_VERSION":          "golang.version",
	"JAVA_VERSION":        "java.version",
	"KOTLIN_VERSION":      "kotlin.version",
	"RUBY_VERSION":        "ruby.version",
	"R_VERSION":           "rlang.version",
	"ANDROID_API_LEVELS":  "android.api_levels",
	"AWS_CLI_VERSION":     "awscli.version",
	"CLAUDE_CODE_VERSION": "claudecode.version",
}

// Config wraps the merged koanf tree with typed accessors.
type Config struct {
	k *koanf.Koanf
}

// Load builds the merged configuration for the given path layout.
func Load(p paths.Paths) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load embedded defaults")
	}

	cfgPath := p.ConfigFilePath()
	if _, err := os.Stat(cfgPath); err == nil {
		if err := k.Load(file.Provider(cfgPath), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", cfgPath)
		}
	}

	if err := k.Load(confmap.Provider(legacyEnv(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load legacy environment")
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	return &Config{k: k}, nil
}

// envKey transforms OUTFIT_GOLANG__VERSION into golang.version.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}

// legacyEnv collects the set legacy variables as a flat config map.
func legacyEnv() map[string]interface{} {
	m := make(map[string]interface{})
	for envName, key := range legacyEnvKeys {
		if v := os.Getenv(envName); v != "" {
			if key == "android.api_levels" {
				m[key] = splitList(v)
			} else {
				m[key] = v
			}
		}
	}
	return m
}

// splitList splits a comma- or whitespace-separated value.
func splitList(v string) []string {
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// String returns a string value, or the fallback if unset.
func (c *Config) String(key, fallback string) string {
	if !c.k.Exists(key) {
		return fallback
	}
	return c.k.String(key)
}

// Strings returns a list value. Values arriving from the environment
// are single strings; those are split on commas and whitespace. An
// empty TOML array stays empty rather than being rendered and re-split.
func (c *Config) Strings(key string) []string {
	if vals := c.k.Strings(key); len(vals) > 0 {
		return vals
	}
	if s, ok := c.k.Get(key).(string); ok && s != "" {
		return splitList(s)
	}
	return nil
}

// Bool returns a boolean value.
func (c *Config) Bool(key string) bool {
	return c.k.Bool(key)
}

// Version returns the configured version for a feature.
func (c *Config) Version(feature string) string {
	return c.k.String(feature + ".version")
}

// FeatureEnabled reports whether a feature is enabled in config.
func (c *Config) FeatureEnabled(feature string) bool {
	return c.k.Bool(feature + ".enabled")
}

// FailFast reports whether a failed feature should abort the run.
func (c *Config) FailFast() bool {
	return c.k.Bool("install.fail_fast")
}

// rawBytesProvider is a koanf provider over an in-memory byte slice.
type rawBytesProvider struct {
	bytes []byte
}

func (r *rawBytesProvider) ReadBytes() ([]byte, error) {
	return r.bytes, nil
}

func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrInternal, "rawBytesProvider does not support Read")
}
