package release

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Manifest is the subset of a package manifest a release touches.
type Manifest struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

var jsonVersionPattern = regexp.MustCompile(`("version"\s*:\s*")([^"]*)(")`)

func isYAML(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}

// ReadManifest loads a package.json or YAML manifest.
func ReadManifest(path string) (Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if isYAML(path) {
		err = yaml.Unmarshal(b, &m)
	} else {
		err = json.Unmarshal(b, &m)
	}
	if err != nil {
		return Manifest{}, fmt.Errorf("invalid manifest %s: %v", path, err)
	}
	if m.Version == "" {
		return Manifest{}, fmt.Errorf("invalid manifest %s: missing required field: version", path)
	}
	return m, nil
}

// WriteManifestVersion rewrites only the version field, keeping the rest of
// the file as it was.
func WriteManifestVersion(path, version string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	var out []byte
	if isYAML(path) {
		out, err = setYAMLVersion(b, version)
	} else {
		out, err = setJSONVersion(b, version)
	}
	if err != nil {
		return fmt.Errorf("invalid manifest %s: %v", path, err)
	}
	return os.WriteFile(path, out, 0o644)
}

func setJSONVersion(b []byte, version string) ([]byte, error) {
	loc := jsonVersionPattern.FindSubmatchIndex(b)
	if loc == nil {
		return nil, fmt.Errorf("missing required field: version")
	}
	var buf bytes.Buffer
	buf.Write(b[:loc[4]])
	buf.WriteString(version)
	buf.Write(b[loc[5]:])
	return buf.Bytes(), nil
}

func setYAMLVersion(b []byte, version string) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top-level must be mapping")
	}
	top := doc.Content[0]
	found := false
	for i := 0; i+1 < len(top.Content); i += 2 {
		if top.Content[i].Value == "version" {
			top.Content[i+1].Value = version
			top.Content[i+1].Tag = "!!str"
			top.Content[i+1].Style = yaml.DoubleQuotedStyle
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("missing required field: version")
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
