package emissions

import (
	lo "github.com/samber/lo"
)

// ChartSlice is one categorized slice of the emissions pie chart.
type ChartSlice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ChartData turns a breakdown into chart-ready slices in stable bucket order,
// dropping empty buckets. When every bucket is empty it returns a single
// "No Data" sentinel so the chart renderer always has input.
func ChartData(breakdown Breakdown) []ChartSlice {
	slices := lo.FilterMap(Buckets(), func(b Bucket, _ int) (ChartSlice, bool) {
		v := breakdown[b]
		if v <= 0 {
			return ChartSlice{}, false
		}
		return ChartSlice{
			Label: b.Provider.DisplayName() + " " + b.Kind.Title(),
			Value: v,
		}, true
	})
	if len(slices) == 0 {
		return []ChartSlice{{Label: "No Data", Value: 1}}
	}
	return slices
}
