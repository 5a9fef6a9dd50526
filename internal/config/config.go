package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the release metadata and directory layout for one packaging run.
// It is constructed once at startup and passed explicitly into every component;
// nothing in the pipeline mutates it afterwards.
type Config struct {
	// AppName is the human-facing application name shown in menus and installers.
	AppName string `yaml:"app_name"`
	// Executable is the file name of the compiled application binary.
	Executable string `yaml:"executable"`
	// Identifier is the reverse-DNS bundle identifier.
	Identifier string `yaml:"identifier"`
	// Version is the release version stamped into every artifact.
	Version string `yaml:"version"`
	// Description is a one-line summary used in package metadata.
	Description string `yaml:"description"`
	// License is the SPDX license identifier for package metadata.
	License string `yaml:"license"`
	// Homepage is the project URL embedded in package metadata.
	Homepage string `yaml:"homepage"`
	// Maintainer is the "Name <email>" string required by Debian control files.
	Maintainer string `yaml:"maintainer"`
	// Categories lists desktop-entry categories (e.g., Network, WebBrowser).
	Categories []string `yaml:"categories"`
	// MimeTypes lists MIME types the application registers as a handler for.
	MimeTypes []string `yaml:"mime_types"`
	// Depends lists Debian package dependencies for the .deb output.
	Depends []string `yaml:"depends"`
	// SourceDir is the root of the application source tree handed to the compiler.
	SourceDir string `yaml:"source_dir"`
	// BuildDir is where the compiler writes per-architecture binaries.
	BuildDir string `yaml:"build_dir"`
	// OutputDir is the root under which per-platform artifact directories are created.
	OutputDir string `yaml:"output_dir"`
	// IconDir holds pre-rendered icon sources; missing files degrade to placeholders.
	IconDir string `yaml:"icon_dir"`
	// CompilerPackage is the package selector passed to the compiler toolchain.
	CompilerPackage string `yaml:"compiler_package"`
}

const (
	// DefaultConfigFilename is the default name of the release configuration file.
	DefaultConfigFilename = "oxide-release.yaml"

	// DefaultFilePermissions is the permission mode used when writing the config file.
	DefaultFilePermissions = 0o644
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errAppNameRequired is returned when the application name is missing.
	errAppNameRequired = errors.New("app_name must be provided")
	// errVersionRequired is returned when the release version is missing.
	errVersionRequired = errors.New("version must be provided")
	// errBadIdentifier is returned when the bundle identifier is not reverse-DNS shaped.
	errBadIdentifier = errors.New("identifier must be a reverse-DNS string such as com.example.app")
)

// Default returns the configuration used when no file is present.
// Values describe the Oxide Browser release layout.
func Default() *Config {
	return &Config{
		AppName:         "Oxide Browser",
		Executable:      "oxide-browser",
		Identifier:      "com.cheesejaguar.oxide",
		Version:         "1.0.0",
		Description:     "A high-performance web browser",
		License:         "MIT",
		Homepage:        "https://github.com/cheesejaguar/browser",
		Maintainer:      "Oxide Maintainers <maintainers@oxide.invalid>",
		Categories:      []string{"Network", "WebBrowser"},
		MimeTypes:       []string{"text/html", "application/xhtml+xml", "x-scheme-handler/http", "x-scheme-handler/https"},
		Depends:         []string{"libc6 (>= 2.31)", "libgtk-3-0", "libssl3"},
		SourceDir:       ".",
		BuildDir:        "target",
		OutputDir:       "dist",
		IconDir:         filepath.Join("assets", "icons"),
		CompilerPackage: "browser",
	}
}

// Load reads configuration from the provided path, fills defaults for absent
// fields, and validates the result. A missing file is not an error: the
// defaults are returned so a fresh checkout can package without any setup.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	cfg := Default()

	contents, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return nil, fmt.Errorf("read release config: %w", err)
	}

	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal release config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal release config: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write release config: %w", err)
	}

	return nil
}

// Validate checks the provided configuration for required fields and formatting.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if strings.TrimSpace(cfg.AppName) == "" {
		return errAppNameRequired
	}

	if strings.TrimSpace(cfg.Version) == "" {
		return errVersionRequired
	}

	if strings.Count(cfg.Identifier, ".") < 2 || strings.ContainsAny(cfg.Identifier, " /\\") {
		return fmt.Errorf("%w: %q", errBadIdentifier, cfg.Identifier)
	}

	// Fill layout defaults so partial config files stay short.
	defaults := Default()
	if cfg.Executable == "" {
		cfg.Executable = defaults.Executable
	}

	if cfg.BuildDir == "" {
		cfg.BuildDir = defaults.BuildDir
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = defaults.OutputDir
	}

	if cfg.SourceDir == "" {
		cfg.SourceDir = defaults.SourceDir
	}

	if cfg.CompilerPackage == "" {
		cfg.CompilerPackage = defaults.CompilerPackage
	}

	return nil
}

// PackageName returns the lowercase, dash-separated name used for Debian
// packages and artifact file names.
func (c *Config) PackageName() string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(c.AppName), " ", "-"))
}
