package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/hupe1980/kustomize-upstream/internal/filter"
)

// Error reports a split configuration that could not be read or is
// incomplete.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid configuration %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Top holds the upstream project identity and the manifest source.
type Top struct {
	Name           string `mapstructure:"name" json:"name"`
	Version        string `mapstructure:"version" json:"version"`
	SourceTemplate string `mapstructure:"sourceTemplate" json:"sourceTemplate"`

	// Source is the rendered SourceTemplate. It is never read from the
	// configuration document; the runner sets it once per run.
	Source *string `mapstructure:"-" json:"source,omitempty"`
}

// ResourceSpec holds the templates that place a single resource file.
type ResourceSpec struct {
	PathTemplate     string `mapstructure:"pathTemplate" json:"pathTemplate"`
	FilenameTemplate string `mapstructure:"filenameTemplate" json:"filenameTemplate"`
}

// DefaultPackageSpec holds the templates shared by all packages and the
// name of the package for unmatched resources.
type DefaultPackageSpec struct {
	// Template renders the package descriptor body.
	Template         string       `mapstructure:"template" json:"template"`
	DefaultName      string       `mapstructure:"defaultName" json:"defaultName"`
	FilenameTemplate string       `mapstructure:"filenameTemplate" json:"filenameTemplate"`
	PathTemplate     string       `mapstructure:"pathTemplate" json:"pathTemplate"`
	ResourceSpec     ResourceSpec `mapstructure:"resourceSpec" json:"resourceSpec"`
}

// SplitConfig is the configuration document passed on the command line.
type SplitConfig struct {
	Top                Top                `mapstructure:"top" json:"top"`
	DefaultPackageSpec DefaultPackageSpec `mapstructure:"defaultPackageSpec" json:"defaultPackageSpec"`
	SplitRules         []filter.Rule      `mapstructure:"splitRules" json:"splitRules"`
}

// LoadSplitConfig reads the split configuration at path. Keys are matched
// case-insensitively. Values of keys present in the file can be overridden
// with environment variables named after the key path, e.g.
// KUSTOMIZE_UPSTREAM_TOP_VERSION.
func LoadSplitConfig(path string) (*SplitConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if filepath.Ext(path) == "" {
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("reading: %w", err)}
	}

	var cfg SplitConfig
	if err := v.Unmarshal(&cfg, strictDecoding); err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("decoding: %w", err)}
	}

	if err := errors.Join(requireMatchers(v.Get("splitRules")), cfg.Validate()); err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	return &cfg, nil
}

// strictDecoding disables weakly typed decoding so that scalars keep the
// type they have in the document; an unquoted `version: 1.10` is a float
// and must not silently become "1.1".
func strictDecoding(dc *mapstructure.DecoderConfig) {
	dc.WeaklyTypedInput = false
}

// requireMatchers reports split rules without a matcher. Such a rule would
// decode to a zero Matcher that matches every resource.
func requireMatchers(raw interface{}) error {
	rules, ok := raw.([]interface{})
	if !ok {
		return nil
	}

	var errs []error

	for i, rule := range rules {
		if !hasValue(rule, "matcher") {
			errs = append(errs, fmt.Errorf("splitRules[%d].matcher is required", i))
		}
	}

	return errors.Join(errs...)
}

// hasValue reports whether m is a mapping with a non-null value under key,
// comparing keys case-insensitively.
func hasValue(m interface{}, key string) bool {
	switch val := m.(type) {
	case map[string]interface{}:
		for k, v := range val {
			if strings.EqualFold(k, key) && v != nil {
				return true
			}
		}
	case map[interface{}]interface{}:
		for k, v := range val {
			if strings.EqualFold(fmt.Sprint(k), key) && v != nil {
				return true
			}
		}
	}

	return false
}

// Validate checks that every required field is present.
func (c *SplitConfig) Validate() error {
	var errs []error

	required := []struct {
		key   string
		value string
	}{
		{"top.name", c.Top.Name},
		{"top.version", c.Top.Version},
		{"top.sourceTemplate", c.Top.SourceTemplate},
		{"defaultPackageSpec.template", c.DefaultPackageSpec.Template},
		{"defaultPackageSpec.defaultName", c.DefaultPackageSpec.DefaultName},
		{"defaultPackageSpec.filenameTemplate", c.DefaultPackageSpec.FilenameTemplate},
		{"defaultPackageSpec.pathTemplate", c.DefaultPackageSpec.PathTemplate},
		{"defaultPackageSpec.resourceSpec.pathTemplate", c.DefaultPackageSpec.ResourceSpec.PathTemplate},
		{"defaultPackageSpec.resourceSpec.filenameTemplate", c.DefaultPackageSpec.ResourceSpec.FilenameTemplate},
	}

	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.key))
		}
	}

	for i, rule := range c.SplitRules {
		if rule.PackageName != nil && *rule.PackageName == "" {
			errs = append(errs, fmt.Errorf("splitRules[%d].packageName must not be empty; omit it to drop matching resources", i))
		}
	}

	return errors.Join(errs...)
}

// Warnings returns non-fatal findings about the configuration.
func (c *SplitConfig) Warnings() []string {
	var warnings []string

	if _, err := semver.NewVersion(c.Top.Version); err != nil {
		warnings = append(warnings, fmt.Sprintf("top.version %q is not a semantic version", c.Top.Version))
	}

	return warnings
}

// WithSource returns a copy of c whose Top.Source is set to source.
func (c *SplitConfig) WithSource(source string) *SplitConfig {
	cp := *c
	cp.Top.Source = &source

	return &cp
}
