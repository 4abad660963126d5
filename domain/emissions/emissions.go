package emissions

import (
	"fmt"
)

// ProviderID identifies a supported cloud provider on the estimation API.
type ProviderID string

const (
	ProviderAWS   ProviderID = "aws"
	ProviderAzure ProviderID = "azure"
	ProviderGCP   ProviderID = "gcp"
)

// providerNames maps provider ids to display names and back. Both directions
// live in one table so the mapping stays a bijection.
var providerNames = map[string]string{
	"aws":                   "Amazon Web Services",
	"azure":                 "Microsoft Azure",
	"gcp":                   "Google Cloud Platform",
	"Amazon Web Services":   "aws",
	"Microsoft Azure":       "azure",
	"Google Cloud Platform": "gcp",
}

// Providers returns all supported providers in stable order.
func Providers() []ProviderID {
	return []ProviderID{ProviderAWS, ProviderAzure, ProviderGCP}
}

// ParseProvider converts an external provider string into a ProviderID.
func ParseProvider(s string) (ProviderID, error) {
	switch ProviderID(s) {
	case ProviderAWS, ProviderAzure, ProviderGCP:
		return ProviderID(s), nil
	}
	return "", fmt.Errorf("invalid provider: %q", s)
}

// DisplayName returns the human-readable name for a provider id.
func (p ProviderID) DisplayName() string {
	return providerNames[string(p)]
}

// ConvertProviderName converts a provider id to its display name and vice
// versa. Any value outside the six known ones is an error, never a default.
func ConvertProviderName(s string) (string, error) {
	if name, ok := providerNames[s]; ok {
		return name, nil
	}
	return "", fmt.Errorf("invalid provider name: %q", s)
}

// ResourceKind identifies the kind of resource a calculation covers.
type ResourceKind string

const (
	KindVM      ResourceKind = "vm"
	KindStorage ResourceKind = "storage"
)

// Kinds returns both resource kinds in stable order.
func Kinds() []ResourceKind {
	return []ResourceKind{KindVM, KindStorage}
}

// ParseKind converts an external kind string into a ResourceKind.
func ParseKind(s string) (ResourceKind, error) {
	switch ResourceKind(s) {
	case KindVM, KindStorage:
		return ResourceKind(s), nil
	}
	return "", fmt.Errorf("invalid resource kind: %q", s)
}

// Endpoint returns the estimation API endpoint segment for the kind.
func (k ResourceKind) Endpoint() string {
	if k == KindVM {
		return "instance"
	}
	return "storage"
}

// ShortKey returns the key segment used in flattened breakdowns ("aws_store").
func (k ResourceKind) ShortKey() string {
	if k == KindStorage {
		return "store"
	}
	return string(k)
}

// Title returns the capitalized kind used in chart labels.
func (k ResourceKind) Title() string {
	if k == KindStorage {
		return "Storage"
	}
	return "Vm"
}

// co2eField returns the response field holding the CO2e value for the kind.
func (k ResourceKind) co2eField() string {
	if k == KindVM {
		return "total_co2e"
	}
	return "co2e"
}

// Bucket keys one breakdown entry: one provider, one resource kind.
type Bucket struct {
	Provider ProviderID
	Kind     ResourceKind
}

// Key returns the flattened form of the bucket ("aws_vm", "gcp_store").
func (b Bucket) Key() string {
	return string(b.Provider) + "_" + b.Kind.ShortKey()
}

// Buckets returns the full provider x kind cross product in stable order.
func Buckets() []Bucket {
	res := make([]Bucket, 0, len(Providers())*len(Kinds()))
	for _, k := range Kinds() {
		for _, p := range Providers() {
			res = append(res, Bucket{Provider: p, Kind: k})
		}
	}
	return res
}
