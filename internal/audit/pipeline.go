package audit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
)

const tracerName = "github.com/HarshaB45/AIDocumentIntelligence/internal/audit"

// PhaseError reports which pipeline phase failed.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string { return fmt.Sprintf("%s: %v", e.Phase, e.Err) }
func (e *PhaseError) Unwrap() error { return e.Err }

// PhaseFromError extracts the failed phase name, or "pipeline" when the error
// did not originate in a specific phase.
func PhaseFromError(err error) string {
	var pe *PhaseError
	if errors.As(err, &pe) {
		return pe.Phase
	}
	return "pipeline"
}

// Pipeline runs the full two-pass audit over a corpus. Pass 1 and pass 2 are
// each embarrassingly parallel across documents; the aggregation between them
// is the synchronization barrier that makes the corpus statistics safe to
// read without locking during pass 2.
type Pipeline struct {
	rules   Rules
	workers int
	verbose bool

	norm   *Normalizer
	det    *Detector
	scorer *Scorer
}

// NewPipeline builds a pipeline for one rule set. workers <= 0 selects
// runtime.NumCPU.
func NewPipeline(rules Rules, workers int) *Pipeline {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	norm := NewNormalizer(rules)
	return &Pipeline{
		rules:   rules,
		workers: workers,
		norm:    norm,
		det:     NewDetector(rules, norm),
		scorer:  NewScorer(rules),
	}
}

// SetVerbose enables informational per-document warnings for values that
// could not be normalized. Purely diagnostic; never changes the output.
func (p *Pipeline) SetVerbose(v bool) { p.verbose = v }

// Run executes the whole engine: normalize + detect (pass 1), aggregate,
// cross-reference (pass 2), score, and summarize. A run either completes a
// full corpus pass or returns an error with no partial output. Records are
// processed in canonical doc_id order regardless of input order.
func (p *Pipeline) Run(ctx context.Context, records []ExtractionRecord) (*RunResult, error) {
	if len(records) == 0 {
		return nil, &PhaseError{Phase: "ingest", Err: errors.New("no input documents")}
	}

	sorted := make([]ExtractionRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID() < sorted[j].ID() })

	tracer := otel.Tracer(tracerName)

	// Pass 1: per-document normalization and local checks.
	ctx, pass1Span := tracer.Start(ctx, "audit.pass1")
	docs := make([]*Document, len(sorted))
	p.fanOutIndexed(len(sorted), func(i int) {
		doc := p.norm.Document(sorted[i])
		p.det.Detect(doc)
		docs[i] = doc
		p.warnUnparsed(doc)
	})
	pass1Span.End()
	if err := ctx.Err(); err != nil {
		return nil, &PhaseError{Phase: "pass1", Err: err}
	}

	// Barrier crossed: every pass-1 unit is done. Reduce to corpus stats.
	ctx, aggSpan := tracer.Start(ctx, "audit.aggregate")
	stats := Aggregate(docs)
	aggSpan.End()

	// Pass 2: corpus-aware checks against the frozen statistics.
	ctx, pass2Span := tracer.Start(ctx, "audit.pass2")
	checker := NewCrossChecker(p.rules, stats)
	p.fanOutIndexed(len(docs), func(i int) {
		checker.Check(docs[i])
	})
	pass2Span.End()
	if err := ctx.Err(); err != nil {
		return nil, &PhaseError{Phase: "pass2", Err: err}
	}

	// Scoring: per-document, then single-writer reductions.
	ctx, scoreSpan := tracer.Start(ctx, "audit.score")
	p.fanOutIndexed(len(docs), func(i int) {
		docs[i].Score = p.scorer.Score(docs[i])
	})
	scoreSpan.End()
	if err := ctx.Err(); err != nil {
		return nil, &PhaseError{Phase: "score", Err: err}
	}

	_, sumSpan := tracer.Start(ctx, "audit.summarize")
	table := BuildTable(docs)
	findings := BuildFindings(docs, p.rules.MaxQuoteChars)
	result := &RunResult{
		Documents: docs,
		Stats:     stats,
		Table:     table,
		KPIs:      SummarizeKPIs(table),
		Findings:  findings,
		CrossRef:  BuildCrossRefReport(findings),
	}
	sumSpan.End()
	return result, nil
}

// fanOutIndexed distributes n index-addressed units across the worker pool.
// Each unit writes only to its own slot, so no locking is needed.
func (p *Pipeline) fanOutIndexed(n int, fn func(i int)) {
	workers := p.workers
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
}

func (p *Pipeline) warnUnparsed(doc *Document) {
	if !p.verbose {
		return
	}
	if doc.Record.EffectiveDate != "" && !doc.DateParsed {
		log.Printf("doc %s: effective_date %q not parseable, keeping raw value",
			doc.Record.ID(), doc.Record.EffectiveDate)
	}
	if doc.Record.PaymentTerms != nil && doc.PaymentAmount == nil {
		log.Printf("doc %s: no currency-marked amount in payment terms", doc.Record.ID())
	}
}
