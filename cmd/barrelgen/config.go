package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/barrelgen/pkg/engine"
)

// ProjectConfig holds the contents of .barrelgen/config.yaml.
type ProjectConfig struct {
	Version    int      `yaml:"version"`
	Root       string   `yaml:"root"`
	Barrel     string   `yaml:"barrel"`
	Extensions []string `yaml:"extensions"`
	Include    []string `yaml:"include"`
	Exclude    []string `yaml:"exclude"`
	Priority   []string `yaml:"priority"`
	ReportPath string   `yaml:"report"`
	MCPLogPath string   `yaml:"mcp_log"`
}

// loadProjectConfig reads .barrelgen/config.yaml from the current
// directory. Returns nil (no error) if the file does not exist.
func loadProjectConfig() (*ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(".barrelgen", "config.yaml"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// buildEngineConfig merges, in increasing precedence: built-in defaults,
// .barrelgen/config.yaml, then command-line flags.
func buildEngineConfig(flags *cliFlags) (engine.Config, *ProjectConfig, error) {
	project, err := loadProjectConfig()
	if err != nil {
		return engine.Config{}, nil, err
	}

	root := "."
	if project != nil && project.Root != "" {
		root = project.Root
	}
	if flags.root != "" {
		root = flags.root
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return engine.Config{}, nil, err
	}

	cfg := engine.DefaultConfig(absRoot)

	if project != nil {
		if project.Barrel != "" {
			cfg.BarrelName = project.Barrel
		}
		if len(project.Extensions) > 0 {
			cfg.Extensions = project.Extensions
		}
		if len(project.Include) > 0 {
			cfg.Include = project.Include
		}
		if len(project.Exclude) > 0 {
			cfg.Exclude = project.Exclude
		}
		cfg.Priority = project.Priority
		cfg.ReportPath = project.ReportPath
	}

	if flags.barrel != "" {
		cfg.BarrelName = flags.barrel
	}
	if flags.report != "" {
		cfg.ReportPath = flags.report
	}
	cfg.DryRun = flags.dryRun

	return cfg, project, nil
}
