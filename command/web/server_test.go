package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-carbon/connectors/metadata"
	"cloud-carbon/domain/batch"
	"cloud-carbon/domain/emissions"
)

// stubSender plays back canned results per bucket, or a global error.
type stubSender struct {
	calls     int
	responses map[emissions.Bucket][]emissions.Result
	err       error
}

func (s *stubSender) SendBatch(_ context.Context, provider emissions.ProviderID, kind emissions.ResourceKind, bodies []emissions.RequestBody) ([]emissions.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.responses[emissions.Bucket{Provider: provider, Kind: kind}], nil
}

func newTestServer(sender emissions.BatchSender) (*server, *echo.Echo) {
	srv := newServer(batch.NewStore(), metadata.Load("testdata-absent.json"), emissions.NewAggregator(sender))
	e := echo.New()
	srv.register(e)
	return srv, e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandleProviders(t *testing.T) {
	_, e := newTestServer(&stubSender{})
	rec := doJSON(e, http.MethodGet, "/api/providers", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var providers []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &providers))
	require.Len(t, providers, 3)
	assert.Equal(t, "aws", providers[0]["id"])
	assert.Equal(t, "Amazon Web Services", providers[0]["name"])
}

func TestHandleMetadataServesFallbackCatalog(t *testing.T) {
	_, e := newTestServer(&stubSender{})
	rec := doJSON(e, http.MethodGet, "/api/metadata", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var catalog metadata.Catalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catalog))
	assert.Len(t, catalog.CloudProviders, 3)
}

func TestHandleAppendVM(t *testing.T) {
	srv, e := newTestServer(&stubSender{})
	rec := doJSON(e, http.MethodPost, "/api/batch/aws/vm",
		`{"region":"us-east-1","instance":"t2.micro","duration":10}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	snap := srv.store.Snapshot(emissions.ProviderAWS, emissions.KindVM)
	require.Len(t, snap, 1)
	vm := snap[0].(emissions.VMRequest)
	assert.Equal(t, "h", vm.DurationUnit)
	assert.Equal(t, 0.5, vm.AverageVCPUUtilization)
}

func TestHandleAppendVMValidation(t *testing.T) {
	srv, e := newTestServer(&stubSender{})
	rec := doJSON(e, http.MethodPost, "/api/batch/aws/vm",
		`{"region":"us-east-1","instance":"t2.micro","duration":10,"vcpu_utilization":1.5}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "vcpu_utilization")
	assert.Empty(t, srv.store.Snapshot(emissions.ProviderAWS, emissions.KindVM))
}

func TestHandleAppendUnknownProvider(t *testing.T) {
	_, e := newTestServer(&stubSender{})
	rec := doJSON(e, http.MethodPost, "/api/batch/oracle/vm",
		`{"region":"r","instance":"i","duration":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid provider")
}

func TestHandleAppendStorageNormalizesLabel(t *testing.T) {
	srv, e := newTestServer(&stubSender{})
	rec := doJSON(e, http.MethodPost, "/api/batch/azure/storage",
		`{"region":"eastus","storage_type":"Hard Disk Drive","duration":720,"data":100,"data_unit":"GB"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	snap := srv.store.Snapshot(emissions.ProviderAzure, emissions.KindStorage)
	require.Len(t, snap, 1)
	assert.Equal(t, "hdd", snap[0].(emissions.StorageRequest).StorageType)
}

func TestHandleReset(t *testing.T) {
	srv, e := newTestServer(&stubSender{})
	doJSON(e, http.MethodPost, "/api/batch/aws/vm", `{"region":"r","instance":"i","duration":1}`)
	doJSON(e, http.MethodPost, "/api/batch/gcp/storage", `{"region":"r","storage_type":"ssd","duration":1,"data":1,"data_unit":"GB"}`)

	rec := doJSON(e, http.MethodPost, "/api/batch/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, b := range emissions.Buckets() {
		assert.Empty(t, srv.store.Snapshot(b.Provider, b.Kind))
	}
}

func TestHandleCalculate(t *testing.T) {
	sender := &stubSender{responses: map[emissions.Bucket][]emissions.Result{
		{Provider: emissions.ProviderAWS, Kind: emissions.KindVM}: {{"total_co2e": 1.23456}},
	}}
	_, e := newTestServer(sender)
	doJSON(e, http.MethodPost, "/api/batch/aws/vm",
		`{"region":"us-east-1","instance":"t2.micro","duration":10}`)

	rec := doJSON(e, http.MethodPost, "/api/calculate", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Breakdown map[string]float64     `json:"breakdown"`
		Total     float64                `json:"total"`
		Chart     []emissions.ChartSlice `json:"chart"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1.23456, res.Breakdown["aws_vm"])
	assert.Len(t, res.Breakdown, 6)
	assert.Equal(t, 1.23456, res.Total)
	require.Len(t, res.Chart, 1)
	assert.Equal(t, "Amazon Web Services Vm", res.Chart[0].Label)
	assert.Equal(t, 1, sender.calls, "only the non-empty batch is sent")
}

func TestHandleCalculateEmptyBatches(t *testing.T) {
	sender := &stubSender{}
	_, e := newTestServer(sender)

	rec := doJSON(e, http.MethodPost, "/api/calculate", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Chart []emissions.ChartSlice `json:"chart"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, []emissions.ChartSlice{{Label: "No Data", Value: 1}}, res.Chart)
	assert.Zero(t, sender.calls)
}

func TestHandleCalculateMissingCredential(t *testing.T) {
	_, e := newTestServer(&stubSender{err: emissions.ErrMissingCredential})
	doJSON(e, http.MethodPost, "/api/batch/aws/vm", `{"region":"r","instance":"i","duration":1}`)

	rec := doJSON(e, http.MethodPost, "/api/calculate", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "API_KEY")
}

func TestHandleCalculateReportsProviderErrors(t *testing.T) {
	_, e := newTestServer(&stubSender{err: &emissions.PermissionError{Provider: emissions.ProviderAWS}})
	doJSON(e, http.MethodPost, "/api/batch/aws/vm", `{"region":"r","instance":"i","duration":1}`)

	rec := doJSON(e, http.MethodPost, "/api/calculate", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Breakdown map[string]float64 `json:"breakdown"`
		Errors    []string           `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Zero(t, res.Breakdown["aws_vm"])
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "forbidden for aws")
}
