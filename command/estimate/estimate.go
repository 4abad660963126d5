package estimate

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	lo "github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"cloud-carbon/connectors/climatiq"
	"cloud-carbon/connectors/config"
	"cloud-carbon/domain/batch"
	"cloud-carbon/domain/emissions"
)

// planFile models the YAML estimation plan: the list of VM and storage
// entries to accumulate and submit in one run.
type planFile struct {
	Entries []planEntry `yaml:"entries"`
}

type planEntry struct {
	Provider     string   `yaml:"provider"`
	Type         string   `yaml:"type"` // vm|storage
	Region       string   `yaml:"region"`
	Duration     int      `yaml:"duration"`
	DurationUnit string   `yaml:"duration_unit"`
	Instance     string   `yaml:"instance"`
	Utilization  *float64 `yaml:"vcpu_utilization"`
	StorageType  string   `yaml:"storage_type"`
	Data         float64  `yaml:"data"`
	DataUnit     string   `yaml:"data_unit"`
}

// Run executes the estimate command: read the plan, batch its entries, send
// them to the estimation API and print the CO2e breakdown.
//
// Usage:
//
//	cloud-carbon estimate [-plan ./plan.yml] [-out breakdown.csv]
//
// ENV: API_KEY holds the estimation API token, CONFIG_PATH points to an
// optional YAML config file.
func Run(args []string) error {
	fs := flag.NewFlagSet("estimate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	planPath := fs.String("plan", "./plan.yml", "YAML plan file with calculation entries")
	outPath := fs.String("out", "", "optional CSV output path for the breakdown")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Resolve()
	if err != nil {
		return err
	}

	store := batch.NewStore()
	if err := loadPlan(*planPath, store); err != nil {
		return err
	}

	client := climatiq.NewClient(cfg.Climatiq.BaseURL, config.APIKey(), time.Duration(cfg.Climatiq.TimeoutSeconds)*time.Second)
	agg := emissions.NewAggregator(client)

	breakdown, err := agg.CalculateBreakdown(context.Background(), store)
	if err != nil {
		if errors.Is(err, emissions.ErrMissingCredential) {
			return err
		}
		// Partial failures are reported but do not hide the totals of the
		// providers that did answer.
		fmt.Fprintln(os.Stderr, err)
	}

	printBreakdown(breakdown)

	if *outPath != "" {
		if err := writeCSV(*outPath, breakdown); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "estimate.done out=%s\n", *outPath)
	}
	return nil
}

// loadPlan reads the plan file and appends each validated entry to its batch.
// Any invalid entry fails the run with its validation message.
func loadPlan(path string, store *batch.Store) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read plan %s: %w", path, err)
	}
	var plan planFile
	if err := yaml.Unmarshal(b, &plan); err != nil {
		return fmt.Errorf("invalid plan %s: %w", path, err)
	}
	if len(plan.Entries) == 0 {
		return fmt.Errorf("plan %s has no entries", path)
	}

	for i, e := range plan.Entries {
		provider, err := emissions.ParseProvider(e.Provider)
		if err != nil {
			return fmt.Errorf("plan entry %d: %w", i+1, err)
		}
		kind, err := emissions.ParseKind(e.Type)
		if err != nil {
			return fmt.Errorf("plan entry %d: %w", i+1, err)
		}
		durationUnit := e.DurationUnit
		if durationUnit == "" {
			durationUnit = emissions.DefaultDurationUnit
		}

		var body emissions.RequestBody
		switch kind {
		case emissions.KindVM:
			utilization := emissions.DefaultVCPUUtilization
			if e.Utilization != nil {
				utilization = *e.Utilization
			}
			body, err = emissions.NewVMRequest(e.Region, e.Instance, e.Duration, durationUnit, utilization)
		case emissions.KindStorage:
			body, err = emissions.NewStorageRequest(e.Region, e.StorageType, e.Duration, e.Data, e.DataUnit, durationUnit)
		}
		if err != nil {
			return fmt.Errorf("plan entry %d: %w", i+1, err)
		}
		store.Append(provider, kind, body)
	}
	return nil
}

func printBreakdown(breakdown emissions.Breakdown) {
	for _, bucket := range emissions.Buckets() {
		fmt.Printf("%-30s %s  %.5f kg CO2e\n", bucket.Provider.DisplayName(), bucket.Kind.Title(), breakdown[bucket])
	}
	fmt.Printf("%-30s %s  %.5f kg CO2e\n", "Total", "", breakdown.Total())
}

// writeCSV writes the breakdown as provider,service,co2e_kg rows.
func writeCSV(path string, breakdown emissions.Breakdown) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"provider", "service", "co2e_kg"}); err != nil {
		return err
	}
	rows := lo.Map(emissions.Buckets(), func(b emissions.Bucket, _ int) []string {
		return []string{string(b.Provider), string(b.Kind), strconv.FormatFloat(breakdown[b], 'f', -1, 64)}
	})
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
