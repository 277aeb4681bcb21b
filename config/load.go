package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load a run configuration from a YAML or TOML file or http(s) URL. Keys
// missing from the file keep their default values; unknown keys are
// rejected.
func Load(location string) (Config, error) {
	cfg := Default()

	src, err := openSource(location)
	if err != nil {
		return cfg, err
	}
	defer src.Close()

	switch src.Ext() {
	case ".yaml", ".yml":
		err = decodeYAML(src, &cfg)
	case ".toml":
		err = decodeTOML(src, &cfg)
	default:
		return cfg, fmt.Errorf("%w: %q", ErrUnsupportedFormat, location)
	}
	if err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", src.Location(), err)
	}

	if err = cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", src.Location(), err)
	}
	return cfg, nil
}

func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeTOML(r io.Reader, cfg *Config) error {
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return err
	}

	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return fmt.Errorf("%w: %s", ErrUnknownKeys, strings.Join(keys, ", "))
	}
	return nil
}
