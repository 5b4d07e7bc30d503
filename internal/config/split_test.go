package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kustomize-upstream/internal/filter"
)

const contourConfig = `top:
  name: contour
  version: 1.14.0
  sourceTemplate: https://raw.githubusercontent.com/projectcontour/contour/v{{ .top.version }}/examples/render/contour.yaml
defaultPackageSpec:
  template: |
    apiVersion: kustomize.config.k8s.io/v1beta1
    kind: Kustomization
  pathTemplate: '{{ .top.name }}-{{ .top.version }}/{{ .packageName }}'
  filenameTemplate: kustomization.yaml
  defaultName: main
  resourceSpec:
    pathTemplate: '{{ .top.name }}-{{ .top.version }}/{{ .packageName }}'
    filenameTemplate: '{{ .resource.index | pad3 }}_{{ .resource.kind }}_{{ .resource.name }}.yaml'
splitRules:
  - matcher:
      kind: clusterrole
    packageName: cr
  - matcher:
      kind: Namespace
      name: projectcontour
  - matcher:
      namespace: kube-system
      name: coredns
    packageName: dns
`

// writeTempConfig writes content to a file named name in a temporary
// directory and returns its path.
func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	return p
}

func TestLoadSplitConfig(t *testing.T) {
	p := writeTempConfig(t, "contour.yaml", contourConfig)

	cfg, err := LoadSplitConfig(p)
	require.NoError(t, err)

	assert.Equal(t, "contour", cfg.Top.Name)
	assert.Equal(t, "1.14.0", cfg.Top.Version)
	assert.Contains(t, cfg.Top.SourceTemplate, "{{ .top.version }}")
	assert.Nil(t, cfg.Top.Source)

	assert.Equal(t, "main", cfg.DefaultPackageSpec.DefaultName)
	assert.Equal(t, "kustomization.yaml", cfg.DefaultPackageSpec.FilenameTemplate)
	assert.Contains(t, cfg.DefaultPackageSpec.Template, "kind: Kustomization")
	assert.Contains(t, cfg.DefaultPackageSpec.ResourceSpec.FilenameTemplate, "pad3")

	require.Len(t, cfg.SplitRules, 3)

	r0 := cfg.SplitRules[0]
	require.NotNil(t, r0.Matcher.Kind)
	assert.Equal(t, "clusterrole", *r0.Matcher.Kind)
	assert.Nil(t, r0.Matcher.Name)
	assert.Nil(t, r0.Matcher.Namespace)
	require.NotNil(t, r0.PackageName)
	assert.Equal(t, "cr", *r0.PackageName)

	r1 := cfg.SplitRules[1]
	assert.Nil(t, r1.PackageName, "rule without packageName drops resources")
	require.NotNil(t, r1.Matcher.Name)
	assert.Equal(t, "projectcontour", *r1.Matcher.Name)

	r2 := cfg.SplitRules[2]
	require.NotNil(t, r2.Matcher.Namespace)
	assert.Equal(t, "kube-system", *r2.Matcher.Namespace)
	assert.Equal(t, "dns", *r2.PackageName)
}

func TestLoadSplitConfig_CapitalizedKeys(t *testing.T) {
	content := `Top:
  name: contour
  version: 1.14.0
  sourceTemplate: https://example.com/contour.yaml
DefaultPackageSpec:
  template: body
  pathTemplate: out
  filenameTemplate: kustomization.yaml
  defaultName: main
  resourceSpec:
    pathTemplate: out
    filenameTemplate: r.yaml
SplitRules:
  - matcher:
      kind: clusterrole
    packageName: cr
`
	cfg, err := LoadSplitConfig(writeTempConfig(t, "upper.yaml", content))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/contour.yaml", cfg.Top.SourceTemplate)
	assert.Equal(t, "main", cfg.DefaultPackageSpec.DefaultName)
	require.Len(t, cfg.SplitRules, 1)
	assert.Equal(t, "cr", *cfg.SplitRules[0].PackageName)
}

func TestLoadSplitConfig_NoExtension(t *testing.T) {
	cfg, err := LoadSplitConfig(writeTempConfig(t, "config", contourConfig))
	require.NoError(t, err)
	assert.Equal(t, "contour", cfg.Top.Name)
}

func TestLoadSplitConfig_EnvOverride(t *testing.T) {
	t.Setenv("KUSTOMIZE_UPSTREAM_TOP_VERSION", "1.15.0")

	cfg, err := LoadSplitConfig(writeTempConfig(t, "contour.yaml", contourConfig))
	require.NoError(t, err)
	assert.Equal(t, "1.15.0", cfg.Top.Version)
}

func TestLoadSplitConfig_MissingFile(t *testing.T) {
	_, err := LoadSplitConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "reading")
}

func TestLoadSplitConfig_Malformed(t *testing.T) {
	_, err := LoadSplitConfig(writeTempConfig(t, "bad.yaml", "top: [unclosed"))
	require.Error(t, err)

	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoadSplitConfig_MissingFields(t *testing.T) {
	_, err := LoadSplitConfig(writeTempConfig(t, "partial.yaml", "top:\n  name: contour\n"))
	require.Error(t, err)

	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "top.version is required")
	assert.Contains(t, err.Error(), "defaultPackageSpec.resourceSpec.filenameTemplate is required")
	assert.NotContains(t, err.Error(), "top.name is required")
}

func TestLoadSplitConfig_RejectsNonStringScalars(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unquoted decimal version", strings.Replace(contourConfig, "version: 1.14.0", "version: 1.10", 1), "version"},
		{"integer version", strings.Replace(contourConfig, "version: 1.14.0", "version: 2", 1), "version"},
		{"numeric name", strings.Replace(contourConfig, "name: contour", "name: 42", 1), "name"},
		{"boolean matcher kind", strings.Replace(contourConfig, "kind: clusterrole", "kind: true", 1), "kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadSplitConfig(writeTempConfig(t, "contour.yaml", tt.content))
			require.Error(t, err)
			assert.Nil(t, cfg)

			var cfgErr *Error
			require.ErrorAs(t, err, &cfgErr)
			assert.Contains(t, err.Error(), "decoding")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadSplitConfig_QuotedVersionKeepsText(t *testing.T) {
	content := strings.Replace(contourConfig, "version: 1.14.0", `version: "1.10"`, 1)

	cfg, err := LoadSplitConfig(writeTempConfig(t, "contour.yaml", content))
	require.NoError(t, err)
	assert.Equal(t, "1.10", cfg.Top.Version)
}

func TestLoadSplitConfig_RuleWithoutMatcher(t *testing.T) {
	tests := []struct {
		name  string
		rules string
		want  []string
	}{
		{
			name:  "missing matcher",
			rules: "splitRules:\n  - packageName: nomatcher\n",
			want:  []string{"splitRules[0].matcher is required"},
		},
		{
			name:  "null matcher",
			rules: "splitRules:\n  - matcher:\n    packageName: nomatcher\n",
			want:  []string{"splitRules[0].matcher is required"},
		},
		{
			name:  "several rules",
			rules: "splitRules:\n  - matcher:\n      kind: crd\n    packageName: crd\n  - packageName: a\n  - packageName: b\n",
			want:  []string{"splitRules[1].matcher is required", "splitRules[2].matcher is required"},
		},
	}

	base := contourConfig[:strings.Index(contourConfig, "splitRules:")]

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSplitConfig(writeTempConfig(t, "contour.yaml", base+tt.rules))
			require.Error(t, err)

			var cfgErr *Error
			require.ErrorAs(t, err, &cfgErr)

			for _, want := range tt.want {
				assert.Contains(t, err.Error(), want)
			}

			assert.NotContains(t, err.Error(), "decoding")
		})
	}
}

func TestLoadSplitConfig_EmptyMatcherIsAllowed(t *testing.T) {
	base := contourConfig[:strings.Index(contourConfig, "splitRules:")]

	cfg, err := LoadSplitConfig(writeTempConfig(t, "contour.yaml", base+"splitRules:\n  - matcher: {}\n    packageName: all\n"))
	require.NoError(t, err)
	require.Len(t, cfg.SplitRules, 1)
	assert.Equal(t, "*", cfg.SplitRules[0].Matcher.String())
}

func TestLoadSplitConfig_CapitalizedMatcherKey(t *testing.T) {
	base := contourConfig[:strings.Index(contourConfig, "splitRules:")]

	cfg, err := LoadSplitConfig(writeTempConfig(t, "contour.yaml", base+"splitRules:\n  - Matcher:\n      kind: crd\n    packageName: crd\n"))
	require.NoError(t, err)
	require.Len(t, cfg.SplitRules, 1)
	require.NotNil(t, cfg.SplitRules[0].Matcher.Kind)
	assert.Equal(t, "crd", *cfg.SplitRules[0].Matcher.Kind)
}

func TestSplitConfig_ValidateEmptyPackageName(t *testing.T) {
	empty := ""
	cfg := validSplitConfig()
	cfg.SplitRules[0].PackageName = &empty

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "splitRules[0].packageName must not be empty")
}

func TestSplitConfig_Warnings(t *testing.T) {
	cfg := validSplitConfig()
	assert.Empty(t, cfg.Warnings())

	cfg.Top.Version = "latest"
	warnings := cfg.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `"latest"`)
}

func TestSplitConfig_WithSource(t *testing.T) {
	cfg := validSplitConfig()

	resolved := cfg.WithSource("https://example.com/v1.14.0.yaml")
	require.NotNil(t, resolved.Top.Source)
	assert.Equal(t, "https://example.com/v1.14.0.yaml", *resolved.Top.Source)
	assert.Nil(t, cfg.Top.Source, "original config must stay untouched")
}

func validSplitConfig() *SplitConfig {
	cr := "cr"

	return &SplitConfig{
		Top: Top{Name: "contour", Version: "1.14.0", SourceTemplate: "https://example.com"},
		DefaultPackageSpec: DefaultPackageSpec{
			Template:         "body",
			DefaultName:      "main",
			FilenameTemplate: "kustomization.yaml",
			PathTemplate:     "out",
			ResourceSpec:     ResourceSpec{PathTemplate: "out", FilenameTemplate: "r.yaml"},
		},
		SplitRules: []filter.Rule{{PackageName: &cr}},
	}
}
