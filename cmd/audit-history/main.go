package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/HarshaB45/AIDocumentIntelligence/internal/store"
)

func main() {
	dbPath := flag.String("db", "audit.db", "SQLite run store path")
	runID := flag.String("run", "", "Show one run's table and KPIs instead of listing")
	findings := flag.Bool("findings", false, "With -run, show findings instead of the table")
	flag.Parse()

	st, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("open run store: %v", err)
	}
	defer st.Close()

	if *runID == "" {
		listRuns(st)
		return
	}
	if *findings {
		showFindings(st, *runID)
		return
	}
	showRun(st, *runID)
}

func listRuns(st *store.Store) {
	runs, err := st.ListRuns()
	if err != nil {
		log.Fatalf("list runs: %v", err)
	}
	if len(runs) == 0 {
		fmt.Println("no runs archived")
		return
	}
	fmt.Printf("%-36s  %-20s  %-9s  %s\n", "RUN", "STARTED", "DURATION", "DOCS")
	for _, r := range runs {
		fmt.Printf("%-36s  %-20s  %-9s  %d\n",
			r.RunID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.CompletedAt.Sub(r.StartedAt).Round(time.Millisecond),
			r.DocCount)
	}
}

func showRun(st *store.Store, runID string) {
	table, err := st.RunTable(runID)
	if err != nil {
		log.Fatalf("run table: %v", err)
	}
	kpis, err := st.RunKPIs(runID)
	if err != nil {
		log.Fatalf("run kpis: %v", err)
	}

	fmt.Printf("%-20s  %-8s  %-7s  %-7s  %s\n", "DOC", "RISK", "BUCKET", "ISSUES", "KINDS")
	for _, row := range table {
		fmt.Printf("%-20s  %-8.2f  %-7s  %-7d  %s\n",
			row.DocID, row.RiskScore, row.RiskBucket, row.IssueCount, row.IssueKinds)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	fmt.Println("\nKPIs:")
	if err := enc.Encode(kpis); err != nil {
		log.Fatalf("encode kpis: %v", err)
	}
}

func showFindings(st *store.Store, runID string) {
	rows, err := st.RunFindings(runID)
	if err != nil {
		log.Fatalf("run findings: %v", err)
	}
	for _, f := range rows {
		fmt.Printf("%-20s  %-28s  %s\n", f.DocID, f.Kind, f.Field)
	}
	fmt.Printf("%d findings\n", len(rows))
}
