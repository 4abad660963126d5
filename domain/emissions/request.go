package emissions

import "fmt"

// Defaults applied by callers that collect optional form or plan fields.
const (
	DefaultDurationUnit    = "h"
	DefaultVCPUUtilization = 0.5
)

var durationUnits = map[string]struct{}{
	"ms": {}, "s": {}, "m": {}, "h": {}, "day": {}, "year": {},
}

var dataUnits = map[string]struct{}{
	"MB": {}, "GB": {}, "TB": {},
}

// storageTypeLabels normalizes form display labels to API storage types. Any
// value not in the table passes through unchanged.
var storageTypeLabels = map[string]string{
	"Solid-state Drive": "ssd",
	"Hard Disk Drive":   "hdd",
}

// RequestBody is one pending calculation entry, either a VMRequest or a
// StorageRequest. Field names follow the estimation API wire format.
type RequestBody interface {
	isRequestBody()
}

// VMRequest is the request body for one virtual machine calculation.
type VMRequest struct {
	Region                 string  `json:"region" yaml:"region"`
	Instance               string  `json:"instance" yaml:"instance"`
	Duration               int     `json:"duration" yaml:"duration"`
	DurationUnit           string  `json:"duration_unit" yaml:"duration_unit"`
	AverageVCPUUtilization float64 `json:"average_vcpu_utilization" yaml:"average_vcpu_utilization"`
}

func (VMRequest) isRequestBody() {}

// StorageRequest is the request body for one storage calculation.
type StorageRequest struct {
	Region       string  `json:"region" yaml:"region"`
	StorageType  string  `json:"storage_type" yaml:"storage_type"`
	Data         float64 `json:"data" yaml:"data"`
	DataUnit     string  `json:"data_unit" yaml:"data_unit"`
	Duration     int     `json:"duration" yaml:"duration"`
	DurationUnit string  `json:"duration_unit" yaml:"duration_unit"`
}

func (StorageRequest) isRequestBody() {}

// NewVMRequest builds a validated VM request body.
func NewVMRequest(region, instance string, duration int, durationUnit string, vcpuUtilization float64) (VMRequest, error) {
	if err := checkCommon(region, duration, durationUnit); err != nil {
		return VMRequest{}, err
	}
	if instance == "" {
		return VMRequest{}, &ValidationError{Field: "instance", Reason: "must not be empty"}
	}
	if vcpuUtilization < 0 || vcpuUtilization > 1 {
		return VMRequest{}, &ValidationError{Field: "vcpu_utilization", Reason: "must be between 0 and 1"}
	}
	return VMRequest{
		Region:                 region,
		Instance:               instance,
		Duration:               duration,
		DurationUnit:           durationUnit,
		AverageVCPUUtilization: vcpuUtilization,
	}, nil
}

// NewStorageRequest builds a validated storage request body. Display labels
// for the storage type are normalized to their API values.
func NewStorageRequest(region, storageType string, duration int, dataStored float64, dataUnit, durationUnit string) (StorageRequest, error) {
	if err := checkCommon(region, duration, durationUnit); err != nil {
		return StorageRequest{}, err
	}
	if storageType == "" {
		return StorageRequest{}, &ValidationError{Field: "storage_type", Reason: "must not be empty"}
	}
	if dataStored <= 0 {
		return StorageRequest{}, &ValidationError{Field: "data", Reason: "must be a positive amount"}
	}
	if _, ok := dataUnits[dataUnit]; !ok {
		return StorageRequest{}, &ValidationError{Field: "data_unit", Reason: "must be one of MB, GB, TB"}
	}
	if normalized, ok := storageTypeLabels[storageType]; ok {
		storageType = normalized
	}
	return StorageRequest{
		Region:       region,
		StorageType:  storageType,
		Data:         dataStored,
		DataUnit:     dataUnit,
		Duration:     duration,
		DurationUnit: durationUnit,
	}, nil
}

func checkCommon(region string, duration int, durationUnit string) error {
	if region == "" {
		return &ValidationError{Field: "region", Reason: "must not be empty"}
	}
	if duration <= 0 {
		return &ValidationError{Field: "duration", Reason: fmt.Sprintf("must be a positive integer, got %d", duration)}
	}
	if _, ok := durationUnits[durationUnit]; !ok {
		return &ValidationError{Field: "duration_unit", Reason: "must be one of ms, s, m, h, day or year"}
	}
	return nil
}
