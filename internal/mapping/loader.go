package mapping

import (
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// DefaultVersion is assumed when a profile has no version.
const DefaultVersion = "1"

// SupportedVersions is the constraint a profile version must satisfy.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

// LoadFile loads and parses a YAML mapping profile from the given path.
func LoadFile(path string) (*ProfileFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping profile %s: %w", path, err)
	}

	pf, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return pf, nil
}

// Parse parses YAML data into a ProfileFile.
func Parse(data []byte) (*ProfileFile, error) {
	var pf ProfileFile

	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}

	applyDefaults(&pf)

	if err := CheckVersion(pf.Version); err != nil {
		return nil, err
	}

	return &pf, nil
}

// CheckVersion verifies that version is a semantic version this package reads.
func CheckVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid profile version %q: %w", version, err)
	}

	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("invalid version constraint: %w", err)
	}

	if !c.Check(v) {
		return fmt.Errorf("unsupported profile version %s (want %s)", v, SupportedVersions)
	}

	return nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(pf *ProfileFile) {
	if pf.Version == "" {
		pf.Version = DefaultVersion
	}
}

// Marshal serializes a ProfileFile to YAML.
func Marshal(pf *ProfileFile) ([]byte, error) {
	return yaml.Marshal(pf)
}
