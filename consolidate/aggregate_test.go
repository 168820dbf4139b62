package consolidate

import (
	"errors"
	"testing"
)

func TestAggregateSummary(t *testing.T) {
	cdr := cdrTable(
		cdrRow("9876543210", "Answered", "Interested", "2024-01-01", "10:00"),
		cdrRow("9876543210", "No Answer", "Ring No Response", "2024-01-02", "11:00"),
	)
	agg, err := AggregateCalls(cdr, ModeSummary)
	if err != nil {
		t.Fatalf("AggregateCalls: %v", err)
	}

	st := agg.Stats["9876543210"]
	if st == nil {
		t.Fatal("no stats for 9876543210")
	}
	if st.TotalAttempts != 2 || st.ConnectedAttempts != 1 || st.NotConnected() != 1 {
		t.Errorf("attempts = %d/%d/%d, want 2/1/1",
			st.TotalAttempts, st.ConnectedAttempts, st.NotConnected())
	}
	if got := st.FirstCall.Format(callTimeFormat); got != "2024-01-01 10:00:00" {
		t.Errorf("FirstCall = %s", got)
	}
	if got := st.LastCall.Format(callTimeFormat); got != "2024-01-02 11:00:00" {
		t.Errorf("LastCall = %s", got)
	}
	if st.LastStatus != "No Answer" || st.LastDisposition != "Ring No Response" {
		t.Errorf("last status/disposition = %q/%q", st.LastStatus, st.LastDisposition)
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	a := cdrRow("9876543210", "Answered", "Interested", "2024-01-01", "10:00")
	b := cdrRow("9876543210", "No Answer", "Ring No Response", "2024-01-02", "11:00")

	fwd, err := AggregateCalls(cdrTable(a, b), ModeSummary)
	if err != nil {
		t.Fatalf("AggregateCalls: %v", err)
	}
	rev, err := AggregateCalls(cdrTable(b, a), ModeSummary)
	if err != nil {
		t.Fatalf("AggregateCalls: %v", err)
	}

	f, r := fwd.Stats["9876543210"], rev.Stats["9876543210"]
	if *f != *r {
		t.Errorf("row order changed the summary: %+v vs %+v", f, r)
	}
}

func TestAggregateTieBreakLaterRowWins(t *testing.T) {
	cdr := cdrTable(
		cdrRow("9876543210", "No Answer", "First Entry", "2024-01-01", "10:00"),
		cdrRow("9876543210", "Answered", "Second Entry", "2024-01-01", "10:00"),
	)
	agg, err := AggregateCalls(cdr, ModeSummary)
	if err != nil {
		t.Fatalf("AggregateCalls: %v", err)
	}
	st := agg.Stats["9876543210"]
	if st.LastDisposition != "Second Entry" || st.LastStatus != "Answered" {
		t.Errorf("tie-break picked %q/%q, want the later-ingested row",
			st.LastDisposition, st.LastStatus)
	}
}

func TestAggregateDropsUnparseableRows(t *testing.T) {
	cdr := cdrTable(
		cdrRow("", "Answered", "Interested", "2024-01-01", "10:00"),
		cdrRow("no digits", "Answered", "Interested", "2024-01-01", "10:00"),
		cdrRow("9876543210", "Answered", "Interested", "not-a-date", "xx"),
		cdrRow("9876543210", "Answered", "Interested", "2024-01-01", "10:00"),
	)
	agg, err := AggregateCalls(cdr, ModeSummary)
	if err != nil {
		t.Fatalf("AggregateCalls: %v", err)
	}
	if agg.Dropped != 3 {
		t.Errorf("Dropped = %d, want 3", agg.Dropped)
	}
	if st := agg.Stats["9876543210"]; st == nil || st.TotalAttempts != 1 {
		t.Errorf("surviving row not aggregated: %+v", st)
	}
	if len(agg.Stats) != 1 {
		t.Errorf("Stats has %d keys, want 1", len(agg.Stats))
	}
}

func TestAggregateMissingColumn(t *testing.T) {
	header := append([]string{}, CDRColumns...)
	header[4] = "Status" // rename Call Status
	cdr := NewTable("CDR", header, nil)

	_, err := AggregateCalls(cdr, ModeSummary)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error = %v, want *SchemaError", err)
	}
	if schemaErr.Column != "Call Status" || schemaErr.Table != "CDR" {
		t.Errorf("SchemaError = %+v", schemaErr)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModeSummary {
		t.Errorf("ParseMode(\"\") = %v, %v", m, err)
	}
	if m, err := ParseMode("last_row"); err != nil || m != ModeLastRow {
		t.Errorf("ParseMode(last_row) = %v, %v", m, err)
	}
	if _, err := ParseMode("bogus"); err == nil {
		t.Error("ParseMode(bogus) should fail")
	}
}
