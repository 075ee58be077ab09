package config

import (
	"bufio"
	"os"
	"strings"

	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/paths"
)

// EnabledFeatures returns the set of features to provision, always in
// registration order so inter-feature ordering holds no matter how the
// sources list them. The conf file holds key=value lines
// (feature=true|false); missing file means "use config only". A name
// the registry does not know fails up front, before anything installs.
func EnabledFeatures(p paths.Paths, cfg *Config, known []string) ([]string, error) {
	knownSet := make(map[string]bool, len(known))
	for _, name := range known {
		knownSet[name] = true
	}

	fromConf, err := readEnabledConf(p.EnabledFeaturesPath())
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool)
	for _, name := range fromConf {
		if !knownSet[name] {
			return nil, errors.Newf(errors.ErrFeatureNotFound,
				"unknown feature %q in %s", name, p.EnabledFeaturesPath())
		}
		wanted[name] = true
	}

	for _, name := range known {
		if cfg.FeatureEnabled(name) {
			wanted[name] = true
		}
	}

	var enabled []string
	for _, name := range known {
		if wanted[name] {
			enabled = append(enabled, name)
		}
	}
	return enabled, nil
}

// readEnabledConf parses key=value lines, returning keys with a true
// value. Blank lines and #-comments are skipped; malformed lines fail.
func readEnabledConf(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to open %s", path)
	}
	defer f.Close()

	var enabled []string
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, errors.Newf(errors.ErrConfigParse,
				"malformed line %d in %s: %q", lineNo, path, line)
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			return nil, errors.Newf(errors.ErrConfigParse,
				"empty feature name on line %d in %s", lineNo, path)
		}

		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			enabled = append(enabled, key)
		case "false", "0", "no", "off":
			// explicitly disabled
		default:
			return nil, errors.Newf(errors.ErrConfigParse,
				"invalid value %q for feature %s on line %d in %s", value, key, lineNo, path)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read %s", path)
	}

	return enabled, nil
}
