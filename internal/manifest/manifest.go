// Package manifest reads the deployment manifest: the structured record of
// package and capability identifiers produced by the deployment step. It is
// consulted read-only, and only as a fallback when on-chain discovery
// fails. The schema is validated at the boundary; missing or malformed
// fields fail fast instead of silently defaulting.
package manifest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/helios-labs/tokenops/internal/capability"
	"github.com/helios-labs/tokenops/internal/errors"
)

// Objects holds the pinned object identifiers from deployment.
type Objects struct {
	TreasuryCap   string `yaml:"treasury_cap"`
	AdminCap      string `yaml:"admin_cap"`
	AdminRegistry string `yaml:"admin_registry"`
	PauseState    string `yaml:"pause_state"`
	UpgradeCap    string `yaml:"upgrade_cap"`
}

// Manifest is the deployment record for one network.
type Manifest struct {
	Network     string  `yaml:"network"`
	PackageID   string  `yaml:"package_id"`
	Module      string  `yaml:"module"`
	PublishedAt string  `yaml:"published_at"`
	Objects     Objects `yaml:"objects"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data)
}

// Parse validates manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, errors.NewManifestInvalid("(document)", err.Error())
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that every required field is present and plausibly
// formed. The upgrade cap is optional; everything else is required.
func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.Network) == "" {
		return errors.NewManifestInvalid("network", "missing")
	}
	if err := checkID("package_id", m.PackageID); err != nil {
		return err
	}
	if strings.TrimSpace(m.Module) == "" {
		return errors.NewManifestInvalid("module", "missing")
	}
	required := map[string]string{
		"objects.treasury_cap":   m.Objects.TreasuryCap,
		"objects.admin_cap":      m.Objects.AdminCap,
		"objects.admin_registry": m.Objects.AdminRegistry,
		"objects.pause_state":    m.Objects.PauseState,
	}
	for field, id := range required {
		if err := checkID(field, id); err != nil {
			return err
		}
	}
	if m.Objects.UpgradeCap != "" {
		if err := checkID("objects.upgrade_cap", m.Objects.UpgradeCap); err != nil {
			return err
		}
	}
	return nil
}

// ObjectFor implements capability.Fallback.
func (m *Manifest) ObjectFor(kind capability.Kind) (string, bool) {
	switch kind {
	case capability.KindTreasury:
		return m.Objects.TreasuryCap, m.Objects.TreasuryCap != ""
	case capability.KindAdmin:
		return m.Objects.AdminCap, m.Objects.AdminCap != ""
	case capability.KindAdminRegistry:
		return m.Objects.AdminRegistry, m.Objects.AdminRegistry != ""
	case capability.KindPauseState:
		return m.Objects.PauseState, m.Objects.PauseState != ""
	case capability.KindUpgrade:
		return m.Objects.UpgradeCap, m.Objects.UpgradeCap != ""
	default:
		return "", false
	}
}

func checkID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.NewManifestInvalid(field, "missing")
	}
	if !strings.HasPrefix(id, "0x") {
		return errors.NewManifestInvalid(field, fmt.Sprintf("%q is not a 0x-prefixed identifier", id))
	}
	return nil
}
