package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/HarshaB45/AIDocumentIntelligence/internal/audit"
	"github.com/HarshaB45/AIDocumentIntelligence/internal/store"
	"github.com/HarshaB45/AIDocumentIntelligence/internal/telemetry"
)

func main() {
	extractDir := flag.String("extract", "data/extracted", "Directory of extraction JSON files")
	rulesPath := flag.String("rules", "", "YAML rules file (defaults apply when empty)")
	outDir := flag.String("out", "out", "Output directory")
	dbPath := flag.String("db", "", "SQLite run store path (runs are not archived when empty)")
	workers := flag.Int("workers", 0, "Worker count per pass (0 = GOMAXPROCS)")
	verbose := flag.Bool("verbose", false, "Log per-document warnings")
	otlpEndpoint := flag.String("otlp", "", "OTLP trace endpoint host:port (tracing off when empty)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdown, err := telemetry.Setup(ctx, "contract-audit", *otlpEndpoint)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	defer shutdown(context.Background())

	rules := audit.DefaultRules()
	if *rulesPath != "" {
		rules, err = audit.LoadRules(*rulesPath)
		if err != nil {
			log.Fatalf("rules: %v", err)
		}
	}

	records, err := audit.LoadRecords(*extractDir)
	if err != nil {
		log.Fatalf("load extractions: %v", err)
	}
	log.Printf("loaded %d extraction records from %s", len(records), *extractDir)

	pipeline := audit.NewPipeline(rules, *workers)
	pipeline.SetVerbose(*verbose)

	started := time.Now()
	result, err := pipeline.Run(ctx, records)
	if err != nil {
		if phase := audit.PhaseFromError(err); phase != "" {
			log.Fatalf("audit failed in %s: %v", phase, err)
		}
		log.Fatalf("audit failed: %v", err)
	}
	completed := time.Now()

	if err := writeOutputs(*outDir, result); err != nil {
		log.Fatalf("write outputs: %v", err)
	}

	if *dbPath != "" {
		st, err := store.Open(*dbPath)
		if err != nil {
			log.Fatalf("open run store: %v", err)
		}
		defer st.Close()
		runID, err := st.SaveRun(result, rules, started, completed)
		if err != nil {
			log.Fatalf("archive run: %v", err)
		}
		log.Printf("archived run %s to %s", runID, *dbPath)
	}

	printSummary(result, completed.Sub(started))
}

func writeOutputs(dir string, result *audit.RunResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	files := map[string]any{
		"per_doc.json":     result.Table,
		"corpus_kpis.json": result.KPIs,
		"findings.json":    result.Findings,
		"crossref.json":    result.CrossRef,
	}
	for name, v := range files {
		if err := writeJSON(filepath.Join(dir, name), v); err != nil {
			return err
		}
	}

	f, err := os.Create(filepath.Join(dir, "per_doc.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	return audit.WriteTableCSV(f, result.Table)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func printSummary(result *audit.RunResult, elapsed time.Duration) {
	bold := color.New(color.Bold)
	bold.Printf("\nAudited %d contracts in %s\n", len(result.Table), elapsed.Round(time.Millisecond))

	counts := result.KPIs.RiskBucketCounts
	color.Red("  high risk:   %d", counts[audit.BucketHigh])
	color.Yellow("  medium risk: %d", counts[audit.BucketMedium])
	color.Green("  low risk:    %d", counts[audit.BucketLow])
	fmt.Printf("  findings:    %d\n", len(result.Findings))
	fmt.Printf("  avg risk:    %.2f\n", result.KPIs.AvgRiskScore)
	if result.KPIs.NetDaysMedian != nil {
		fmt.Printf("  net terms:   median %.0f days\n", *result.KPIs.NetDaysMedian)
	}
}
