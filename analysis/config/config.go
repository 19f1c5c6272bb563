// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return Load(configFile, b)
}

// Config contains the options of the detector runs.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:"options"`

	sourceFile string

	// if the DetectorFilter is specified
	detectorFilterRegex *regexp.Regexp

	// if the FunctionFilter is specified
	functionFilterRegex *regexp.Regexp
}

// Options are the user-settable options of the analyses
type Options struct {
	// ReportsDir is the directory where the findings will be stored when ReportFindings is set. If it is not
	// specified, a temporary directory is created next to the config file.
	ReportsDir string `yaml:"reports-dir"`

	// ReportFindings can be set to true, in which case findings will be written in a findings-*.yaml file in the
	// reports directory
	ReportFindings bool `yaml:"report-findings"`

	// DetectorFilter is a regex selecting the detectors to run by name. Empty means all detectors.
	DetectorFilter string `yaml:"detector-filter"`

	// FunctionFilter is a regex selecting the functions analyzed as roots. Functions that do not match may still
	// be analyzed as callees of a root.
	FunctionFilter string `yaml:"function-filter"`

	// MaxDepth sets a limit for the number of nested local calls followed by the interprocedural step.
	// If MaxDepth <= 0, then it is ignored and only recursion stops the analysis.
	MaxDepth int `yaml:"max-depth"`

	// MaxAlarms sets a limit for the number of findings reported by a run. If MaxAlarms > 0, then at most
	// MaxAlarms will be reported. Otherwise, if MaxAlarms <= 0, it is ignored.
	MaxAlarms int `yaml:"max-alarms"`

	// MaxBlockVisits is the number of times a block may be entered with different abstract states in one function
	// frame. This bounds the cost of the analysis on functions with many paths.
	MaxBlockVisits int `yaml:"max-block-visits"`

	// NumWorkers is the number of goroutines analyzing functions in parallel. Defaults to the number of CPUs.
	NumWorkers int `yaml:"num-workers"`

	// GuardPolicy overrides the guard policy of every detector when non-empty: one of "sticky", "fallback" or
	// "none"
	GuardPolicy string `yaml:"guard-policy"`

	// PlaceGranularity is either "field" (the default, field-sensitive taint) or "local" (a place is tainted when
	// any place with the same local is)
	PlaceGranularity string `yaml:"place-granularity"`

	// UnsafeShareBranchTaint makes sibling branches share one taint set instead of each branch receiving a copy.
	// Taint discovered on a branch then leaks into the branches explored after it.
	UnsafeShareBranchTaint bool `yaml:"unsafe-share-branch-taint"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`
}

// NewDefault returns an empty default config.
func NewDefault() *Config {
	return &Config{
		sourceFile: "",
		Options: Options{
			ReportsDir:             "",
			ReportFindings:         false,
			DetectorFilter:         "",
			FunctionFilter:         "",
			MaxDepth:               DefaultMaxCallDepth,
			MaxAlarms:              0,
			MaxBlockVisits:         DefaultMaxBlockVisits,
			NumWorkers:             0,
			GuardPolicy:            "",
			PlaceGranularity:       GranularityField,
			UnsafeShareBranchTaint: false,
			LogLevel:               int(InfoLevel),
		},
	}
}

// Load constructs a configuration from a byte slice representing the config file. filename is used to resolve
// paths relative to the config file.
//
//gocyclo:ignore
func Load(filename string, configBytes []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(configBytes, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}

	cfg.sourceFile = filename

	if cfg.ReportFindings {
		if err := setReportsDir(cfg, filename); err != nil {
			return nil, err
		}
	}

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if cfg.MaxBlockVisits <= 0 {
		cfg.MaxBlockVisits = DefaultMaxBlockVisits
	}

	switch cfg.PlaceGranularity {
	case "":
		cfg.PlaceGranularity = GranularityField
	case GranularityField, GranularityLocal:
	default:
		return nil, fmt.Errorf("invalid place-granularity %q: expected %q or %q", cfg.PlaceGranularity,
			GranularityField, GranularityLocal)
	}

	switch cfg.GuardPolicy {
	case "", GuardPolicySticky, GuardPolicyFallback, GuardPolicyNone:
	default:
		return nil, fmt.Errorf("invalid guard-policy %q", cfg.GuardPolicy)
	}

	cfg.compileFilters()
	return cfg, nil
}

func (c *Config) compileFilters() {
	c.detectorFilterRegex = nil
	c.functionFilterRegex = nil
	if c.DetectorFilter != "" {
		if r, err := regexp.Compile(c.DetectorFilter); err == nil {
			c.detectorFilterRegex = r
		}
	}
	if c.FunctionFilter != "" {
		if r, err := regexp.Compile(c.FunctionFilter); err == nil {
			c.functionFilterRegex = r
		}
	}
}

// SetDetectorFilter sets the detector filter, e.g. from a command line flag
func (c *Config) SetDetectorFilter(filter string) {
	c.DetectorFilter = filter
	c.compileFilters()
}

// SetFunctionFilter sets the function filter, e.g. from a command line flag
func (c *Config) SetFunctionFilter(filter string) {
	c.FunctionFilter = filter
	c.compileFilters()
}

func setReportsDir(c *Config, filename string) error {
	if c.ReportsDir == "" {
		tmpdir, err := os.MkdirTemp(path.Dir(filename), "*-report")
		if err != nil {
			return fmt.Errorf("could not create temp dir for reports")
		}
		c.ReportsDir = tmpdir
	} else {
		err := os.Mkdir(c.ReportsDir, 0750)
		if err != nil {
			if !os.IsExist(err) {
				return fmt.Errorf("could not create directory %s", c.ReportsDir)
			}
		}
	}
	return nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// MatchDetectorFilter returns true if the detector name matches the detector filter. If no filter has been set,
// it returns true. When the filter could not be compiled to a regex, it is used as a prefix.
func (c Config) MatchDetectorFilter(name string) bool {
	return matchFilter(c.detectorFilterRegex, c.DetectorFilter, name)
}

// MatchFunctionFilter returns true if the function identifier matches the function filter, if specified
func (c Config) MatchFunctionFilter(id string) bool {
	return matchFilter(c.functionFilterRegex, c.FunctionFilter, id)
}

func matchFilter(r *regexp.Regexp, filter string, s string) bool {
	if r != nil {
		return r.MatchString(s)
	} else if filter != "" {
		return strings.HasPrefix(s, filter)
	} else {
		return true
	}
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}

// ExceedsMaxDepth returns true if the input exceeds the maximum depth parameter of the configuration.
// (this implements the logic for using maximum depth; if the configuration setting is <= 0, then this returns false)
func (c Config) ExceedsMaxDepth(d int) bool {
	if c.MaxDepth <= 0 {
		return false
	} else {
		return d > c.MaxDepth
	}
}
