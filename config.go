package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	onParseErrorComment = "comment"
	onParseErrorError   = "error"
)

// fileConfig is the TOML file layout: all conversion options live under
// a [convert] table.
type fileConfig struct {
	Convert ConvertConfig `toml:"convert"`
}

// ConvertConfig controls conversion behavior.
type ConvertConfig struct {
	// TSVectorConfig is the text-search configuration used when FULLTEXT
	// indexes are approximated with to_tsvector. "simple" is language-
	// agnostic; set a language config for locale-aware search.
	TSVectorConfig string `toml:"tsvector_config"`
	// StripDefiner removes MySQL DEFINER clauses before parsing.
	StripDefiner bool `toml:"strip_definer"`
	// EmitOnUpdateTriggers replicates ON UPDATE CURRENT_TIMESTAMP columns
	// with trigger DDL instead of an advisory comment.
	EmitOnUpdateTriggers bool `toml:"emit_on_update_triggers"`
	// OnParseError picks what an unparseable statement becomes:
	// "comment" (advisory block) or "error" (error result).
	OnParseError string `toml:"on_parse_error"`
}

func defaultConvertConfig() ConvertConfig {
	return ConvertConfig{
		TSVectorConfig: "simple",
		StripDefiner:   true,
		OnParseError:   onParseErrorComment,
	}
}

// loadConfig reads a TOML config file and returns a ConvertConfig with
// defaults applied. Unknown keys and invalid values are errors.
func loadConfig(path string) (*ConvertConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := fileConfig{Convert: defaultConvertConfig()}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, k := range unknown {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	if err := cfg.Convert.validate(); err != nil {
		return nil, err
	}
	return &cfg.Convert, nil
}

func (c *ConvertConfig) validate() error {
	switch c.OnParseError {
	case onParseErrorComment, onParseErrorError:
	default:
		return fmt.Errorf("unsupported on_parse_error %q (want %q or %q)",
			c.OnParseError, onParseErrorComment, onParseErrorError)
	}
	if strings.TrimSpace(c.TSVectorConfig) == "" {
		return fmt.Errorf("tsvector_config must not be empty")
	}
	return nil
}
