// Package metadata loads the static calculation catalog: which regions and
// virtual machine instance types each provider supports.
package metadata

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"

	"cloud-carbon/domain/emissions"
)

// Catalog maps provider ids to their supported regions and instance types.
type Catalog struct {
	CloudProviders map[string]ProviderMetadata `json:"cloud_providers"`
}

// ProviderMetadata lists the valid form choices for one provider.
type ProviderMetadata struct {
	Regions                 []string `json:"regions"`
	VirtualMachineInstances []string `json:"virtual_machine_instances"`
}

// Provider returns the metadata for one provider id.
func (c Catalog) Provider(id emissions.ProviderID) (ProviderMetadata, bool) {
	m, ok := c.CloudProviders[string(id)]
	return m, ok
}

// Load reads the catalog from a JSON file. It never fails: a missing or
// malformed file is logged with its specific cause and replaced by the
// built-in default catalog, so callers always get a usable catalog.
func Load(path string) Catalog {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Error("metadata.load.error", "reason", "file not found", "path", path)
		} else {
			slog.Error("metadata.load.error", "reason", "read failed", "path", path, "error", err)
		}
		return defaultCatalog()
	}
	var c Catalog
	if err := json.Unmarshal(b, &c); err != nil {
		slog.Error("metadata.load.error", "reason", "invalid JSON", "path", path, "error", err)
		return defaultCatalog()
	}
	if len(c.CloudProviders) == 0 {
		slog.Error("metadata.load.error", "reason", "no cloud_providers entries", "path", path)
		return defaultCatalog()
	}
	return c
}

// defaultCatalog covers all three providers with one region and one instance
// type each, enough to keep the calculator usable without the file.
func defaultCatalog() Catalog {
	return Catalog{
		CloudProviders: map[string]ProviderMetadata{
			"aws":   {Regions: []string{"us-east-1"}, VirtualMachineInstances: []string{"t2.micro"}},
			"azure": {Regions: []string{"eastus"}, VirtualMachineInstances: []string{"Standard_B1s"}},
			"gcp":   {Regions: []string{"us-central1"}, VirtualMachineInstances: []string{"e2-micro"}},
		},
	}
}
