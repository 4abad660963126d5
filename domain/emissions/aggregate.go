package emissions

import (
	"context"
	"errors"
	"log/slog"
)

// Result is one raw estimation API response, decoded as-is.
type Result map[string]any

// ExtractCO2e reads the CO2e value (kg) from a raw result. A missing or
// non-numeric field counts as 0.
func ExtractCO2e(r Result, kind ResourceKind) float64 {
	v, ok := r[kind.co2eField()]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// SumBatch sums the CO2e values over a batch of raw results.
func SumBatch(results []Result, kind ResourceKind) float64 {
	total := 0.0
	for _, r := range results {
		total += ExtractCO2e(r, kind)
	}
	return total
}

// Breakdown maps each provider x kind bucket to its summed CO2e in kg.
type Breakdown map[Bucket]float64

// Total returns the overall CO2e across all buckets.
func (b Breakdown) Total() float64 {
	total := 0.0
	for _, v := range b {
		total += v
	}
	return total
}

// Flatten returns the breakdown keyed by flattened bucket names ("aws_vm").
func (b Breakdown) Flatten() map[string]float64 {
	res := make(map[string]float64, len(b))
	for bucket, v := range b {
		res[bucket.Key()] = v
	}
	return res
}

// BatchSender submits one provider's pending batch to the estimation API.
// Results may be shorter than the batch on partial failure; a non-nil error
// may accompany usable partial results.
type BatchSender interface {
	SendBatch(ctx context.Context, provider ProviderID, kind ResourceKind, bodies []RequestBody) ([]Result, error)
}

// BatchSource provides read access to accumulated batches.
type BatchSource interface {
	Snapshot(provider ProviderID, kind ResourceKind) []RequestBody
}

// Aggregator runs pending batches through a BatchSender and folds the raw
// results into a breakdown.
type Aggregator struct {
	sender BatchSender
}

func NewAggregator(sender BatchSender) *Aggregator {
	return &Aggregator{sender: sender}
}

// CalculateAll computes the per-provider CO2e totals for one resource kind.
// Providers with an empty batch contribute 0 without a network call. A failed
// provider keeps its partial (possibly zero) total and never blocks the
// others; its error is joined into the returned error. The breakdown always
// covers all three providers.
func (a *Aggregator) CalculateAll(ctx context.Context, kind ResourceKind, source BatchSource) (Breakdown, error) {
	breakdown := make(Breakdown, len(Providers()))
	for _, provider := range Providers() {
		breakdown[Bucket{Provider: provider, Kind: kind}] = 0
	}
	var errs []error
	for _, provider := range Providers() {
		bucket := Bucket{Provider: provider, Kind: kind}
		bodies := source.Snapshot(provider, kind)
		if len(bodies) == 0 {
			continue
		}
		slog.Info("calculate.batch", "provider", provider, "kind", kind, "size", len(bodies))
		results, err := a.sender.SendBatch(ctx, provider, kind, bodies)
		if err != nil {
			if errors.Is(err, ErrMissingCredential) {
				return breakdown, err
			}
			slog.Error("calculate.batch.error", "provider", provider, "kind", kind, "error", err)
			errs = append(errs, err)
		}
		breakdown[bucket] = SumBatch(results, kind)
	}
	return breakdown, errors.Join(errs...)
}

// CalculateBreakdown computes the full 6-bucket breakdown (vm + storage).
func (a *Aggregator) CalculateBreakdown(ctx context.Context, source BatchSource) (Breakdown, error) {
	breakdown := make(Breakdown, len(Buckets()))
	for _, bucket := range Buckets() {
		breakdown[bucket] = 0
	}
	var errs []error
	for _, kind := range Kinds() {
		part, err := a.CalculateAll(ctx, kind, source)
		for bucket, v := range part {
			breakdown[bucket] = v
		}
		if err != nil {
			if errors.Is(err, ErrMissingCredential) {
				return breakdown, err
			}
			errs = append(errs, err)
		}
	}
	return breakdown, errors.Join(errs...)
}
