package web

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	lo "github.com/samber/lo"

	"cloud-carbon/connectors/metadata"
	"cloud-carbon/domain/batch"
	"cloud-carbon/domain/emissions"
)

// server wires one session's batch store, the metadata catalog and the
// aggregator into the echo handlers.
type server struct {
	store   *batch.Store
	catalog metadata.Catalog
	agg     *emissions.Aggregator
}

func newServer(store *batch.Store, catalog metadata.Catalog, agg *emissions.Aggregator) *server {
	return &server{store: store, catalog: catalog, agg: agg}
}

func (s *server) register(e *echo.Echo) {
	e.GET("/api/providers", s.handleProviders)
	e.GET("/api/metadata", s.handleMetadata)
	e.GET("/api/batches", s.handleBatches)
	e.POST("/api/batch/:provider/vm", s.handleAppendVM)
	e.POST("/api/batch/:provider/storage", s.handleAppendStorage)
	e.POST("/api/batch/reset", s.handleReset)
	e.POST("/api/calculate", s.handleCalculate)
}

func (s *server) handleProviders(c echo.Context) error {
	providers := lo.Map(emissions.Providers(), func(p emissions.ProviderID, _ int) map[string]string {
		return map[string]string{"id": string(p), "name": p.DisplayName()}
	})
	return c.JSON(http.StatusOK, providers)
}

func (s *server) handleMetadata(c echo.Context) error {
	return c.JSON(http.StatusOK, s.catalog)
}

func (s *server) handleBatches(c echo.Context) error {
	res := make(map[string][]emissions.RequestBody, len(emissions.Buckets()))
	for _, b := range emissions.Buckets() {
		res[b.Key()] = s.store.Snapshot(b.Provider, b.Kind)
	}
	return c.JSON(http.StatusOK, res)
}

// vmEntry is the form payload for one VM batch entry. Optional fields keep
// the builder defaults.
type vmEntry struct {
	Region       string   `json:"region"`
	Instance     string   `json:"instance"`
	Duration     int      `json:"duration"`
	DurationUnit string   `json:"duration_unit"`
	Utilization  *float64 `json:"vcpu_utilization"`
}

func (s *server) handleAppendVM(c echo.Context) error {
	provider, err := emissions.ParseProvider(c.Param("provider"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}
	var entry vmEntry
	if err := c.Bind(&entry); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}
	if entry.DurationUnit == "" {
		entry.DurationUnit = emissions.DefaultDurationUnit
	}
	utilization := emissions.DefaultVCPUUtilization
	if entry.Utilization != nil {
		utilization = *entry.Utilization
	}
	body, err := emissions.NewVMRequest(entry.Region, entry.Instance, entry.Duration, entry.DurationUnit, utilization)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}
	s.store.Append(provider, emissions.KindVM, body)
	return c.JSON(http.StatusCreated, body)
}

// storageEntry is the form payload for one storage batch entry. The storage
// type accepts both display labels and API values.
type storageEntry struct {
	Region       string  `json:"region"`
	StorageType  string  `json:"storage_type"`
	Data         float64 `json:"data"`
	DataUnit     string  `json:"data_unit"`
	Duration     int     `json:"duration"`
	DurationUnit string  `json:"duration_unit"`
}

func (s *server) handleAppendStorage(c echo.Context) error {
	provider, err := emissions.ParseProvider(c.Param("provider"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}
	var entry storageEntry
	if err := c.Bind(&entry); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}
	if entry.DurationUnit == "" {
		entry.DurationUnit = emissions.DefaultDurationUnit
	}
	body, err := emissions.NewStorageRequest(entry.Region, entry.StorageType, entry.Duration, entry.Data, entry.DataUnit, entry.DurationUnit)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}
	s.store.Append(provider, emissions.KindStorage, body)
	return c.JSON(http.StatusCreated, body)
}

func (s *server) handleReset(c echo.Context) error {
	s.store.Reset()
	return c.JSON(http.StatusOK, map[string]string{"message": "All calculation entries have been reset"})
}

func (s *server) handleCalculate(c echo.Context) error {
	breakdown, err := s.agg.CalculateBreakdown(c.Request().Context(), s.store)
	if err != nil && errors.Is(err, emissions.ErrMissingCredential) {
		return c.JSON(http.StatusServiceUnavailable, errorBody(err))
	}
	res := map[string]any{
		"breakdown": breakdown.Flatten(),
		"total":     breakdown.Total(),
		"chart":     emissions.ChartData(breakdown),
	}
	if err != nil {
		// Per-provider failures are reported next to the totals that did
		// come back.
		res["errors"] = errorMessages(err)
	}
	return c.JSON(http.StatusOK, res)
}

func errorBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

// errorMessages splits a joined error into its individual messages.
func errorMessages(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return lo.Map(joined.Unwrap(), func(e error, _ int) string { return e.Error() })
	}
	return []string{err.Error()}
}
