package audit

import "testing"

func docWith(id, partyA, partyB, law string, netDays *int) *Document {
	var parties []string
	if partyA != "" {
		parties = append(parties, partyA, partyB)
	}
	doc := &Document{
		Record: ExtractionRecord{
			DocID:        id,
			Parties:      parties,
			GoverningLaw: law,
		},
		PaymentNetDays: netDays,
	}
	doc.PartyKey = PartyKey(parties)
	return doc
}

func TestMedianOddAndEven(t *testing.T) {
	if got := median([]float64{30, 200, 30}); got != 30 {
		t.Fatalf("odd median = %v, want 30", got)
	}
	if got := median([]float64{30, 60}); got != 45 {
		t.Fatalf("even median = %v, want 45", got)
	}
}

func TestAggregateNetDaysMedian(t *testing.T) {
	docs := []*Document{
		docWith("a", "P1", "P2", "", intPtr(30)),
		docWith("b", "P1", "P2", "", intPtr(30)),
		docWith("c", "P1", "P2", "", intPtr(30)),
		docWith("d", "P1", "P2", "", intPtr(30)),
		docWith("e", "P1", "P2", "", intPtr(200)),
	}
	stats := Aggregate(docs)
	if stats.NetDaysMedian == nil || *stats.NetDaysMedian != 30 {
		t.Fatalf("corpus median = %v, want 30", stats.NetDaysMedian)
	}
	key := docs[0].PartyKey
	if got := stats.PerPartyNetDaysMedian[key]; got != 30 {
		t.Fatalf("party median = %v, want 30", got)
	}
}

func TestAggregateExcludesAbsentValues(t *testing.T) {
	docs := []*Document{
		docWith("a", "P1", "P2", "Delaware", nil),
		docWith("b", "P1", "P2", "", intPtr(60)),
	}
	stats := Aggregate(docs)
	if stats.NetDaysMedian == nil || *stats.NetDaysMedian != 60 {
		t.Fatalf("median must skip absent net days, got %v", stats.NetDaysMedian)
	}
	if stats.GoverningLawMode == nil || *stats.GoverningLawMode != "Delaware" {
		t.Fatalf("mode must skip absent laws, got %v", stats.GoverningLawMode)
	}
}

func TestAggregateAllAbsent(t *testing.T) {
	docs := []*Document{docWith("a", "", "", "", nil)}
	stats := Aggregate(docs)
	if stats.NetDaysMedian != nil || stats.GoverningLawMode != nil {
		t.Fatalf("expected no aggregates for empty inputs, got %+v", stats)
	}
	if len(stats.PerPartyNetDaysMedian) != 0 || len(stats.PerPartyGoverningLawMode) != 0 {
		t.Fatalf("expected empty per-party maps, got %+v", stats)
	}
}

func TestAggregateModeTieBreaksOnFirstSeen(t *testing.T) {
	// Delaware and California each appear twice; Delaware appears first in
	// canonical order, so it wins the tie.
	docs := []*Document{
		docWith("a", "P1", "P2", "Delaware", nil),
		docWith("b", "P1", "P2", "California", nil),
		docWith("c", "P1", "P2", "Delaware", nil),
		docWith("d", "P1", "P2", "California", nil),
	}
	stats := Aggregate(docs)
	if stats.GoverningLawMode == nil || *stats.GoverningLawMode != "Delaware" {
		t.Fatalf("tie must break on first occurrence, got %v", stats.GoverningLawMode)
	}
	if got := stats.PerPartyGoverningLawMode[docs[0].PartyKey]; got != "Delaware" {
		t.Fatalf("per-party tie must break on first occurrence, got %q", got)
	}
}

func TestAggregatePerPartyIsolation(t *testing.T) {
	docs := []*Document{
		docWith("a", "P1", "P2", "Delaware", intPtr(30)),
		docWith("b", "P3", "P4", "California", intPtr(90)),
	}
	stats := Aggregate(docs)
	k1 := docs[0].PartyKey
	k2 := docs[1].PartyKey
	if stats.PerPartyNetDaysMedian[k1] != 30 || stats.PerPartyNetDaysMedian[k2] != 90 {
		t.Fatalf("per-party medians bled across keys: %+v", stats.PerPartyNetDaysMedian)
	}
	if stats.PerPartyGoverningLawMode[k1] != "Delaware" || stats.PerPartyGoverningLawMode[k2] != "California" {
		t.Fatalf("per-party modes bled across keys: %+v", stats.PerPartyGoverningLawMode)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	docs := []*Document{
		docWith("a", "P1", "P2", "Delaware", intPtr(30)),
		docWith("b", "P1", "P2", "California", intPtr(45)),
	}
	first := Aggregate(docs)
	second := Aggregate(docs)
	if *first.NetDaysMedian != *second.NetDaysMedian {
		t.Fatalf("aggregation not idempotent: %v vs %v", *first.NetDaysMedian, *second.NetDaysMedian)
	}
	if *first.GoverningLawMode != *second.GoverningLawMode {
		t.Fatalf("mode not idempotent: %v vs %v", *first.GoverningLawMode, *second.GoverningLawMode)
	}
}
