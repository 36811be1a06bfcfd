package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vasildeda/notes2pdf/export"
)

// Config holds the defaults a command-line flag can override.
type Config struct {
	Database    string `yaml:"database"`
	Output      string `yaml:"output"`
	Format      string `yaml:"format"`      // markdown, html or bundle
	Compression string `yaml:"compression"` // none, zip, zstd, lz4 or brotli
}

func defaultConfig() Config {
	return Config{
		Database:    "NoteStore.sqlite",
		Output:      "out",
		Format:      "markdown",
		Compression: "zstd",
	}
}

func loadConfig(path string) (Config, error) {
	var c Config
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

// merge overlays the non-empty fields of other on top of c.
func (c Config) merge(other Config) Config {
	if other.Database != "" {
		c.Database = other.Database
	}
	if other.Output != "" {
		c.Output = other.Output
	}
	if other.Format != "" {
		c.Format = other.Format
	}
	if other.Compression != "" {
		c.Compression = other.Compression
	}
	return c
}

func (c Config) compression() (export.Compression, error) {
	switch c.Compression {
	case "none":
		return export.CompNone, nil
	case "zip":
		return export.CompZIP, nil
	case "zstd", "":
		return export.CompZSTD, nil
	case "lz4":
		return export.CompLZ4, nil
	case "brotli":
		return export.CompBR, nil
	}
	return 0, fmt.Errorf("unknown compression %q", c.Compression)
}
