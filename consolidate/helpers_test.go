package consolidate

import (
	"os"
	"testing"
)

// Test fixtures shared across the package tests.

func mustOpen(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func misRow(patient, contact, provider string) []string {
	return []string{
		"Acme Corp", "2024-01-01", "GoldPlan", patient,
		"APP-1", "POL-1", "F", "Self", "lead@example.com",
		contact, "0", provider, "MH",
	}
}

func misTable(rows ...[]string) *Table {
	return NewTable("MIS", MISColumns, rows)
}

func cdrRow(customer, status, disposition, date, clock string) []string {
	return []string{
		customer, "CALL_OUT", "08045001122", "Agent A",
		status, "D01", disposition, "00:01:30", date, clock,
	}
}

func cdrTable(rows ...[]string) *Table {
	return NewTable("CDR", CDRColumns, rows)
}
