package consolidate

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// ErrNoProviders halts a run before any heavy computation when the caller
// supplied an empty provider selection.
var ErrNoProviders = errors.New("no provider selected")

// noCall fills the disposition/status columns of leads with no call match.
const noCall = "No Call"

// Call-derived output columns, in their declared order per mode.
var (
	SummaryColumns = []string{
		"Total_Attempts", "Connected_Attempts", "NotConnected_Attempts",
		"First_Call_Date", "Last_Call_Date", "Last_Disposition",
		"Last_Call_Status",
	}
	LastRowColumns = []string{
		"Call Type", "DID Number", "Connected to Agent", "Call Status",
		"Disposition Code", "Disposition Name",
		"Total Call Duration (HH:MM:SS)",
	}
)

// CallColumns returns the call-derived output columns for a mode.
func CallColumns(mode Mode) []string {
	if mode == ModeLastRow {
		return LastRowColumns
	}
	return SummaryColumns
}

// Providers lists the distinct non-empty ProviderName values, sorted.
func Providers(mis *Table) ([]string, error) {
	if err := ValidateColumns(mis, MISColumns); err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	for _, row := range mis.Rows {
		if p := mis.Value(row, "ProviderName"); p != "" {
			seen[p] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// FilterProviders restricts the MIS table to leads whose ProviderName is a
// member of the selection. Validation runs first so a bad MIS file never
// yields a partial report.
func FilterProviders(mis *Table, providers []string) (*Table, error) {
	if err := ValidateColumns(mis, MISColumns); err != nil {
		return nil, err
	}
	selected := make(map[string]struct{}, len(providers))
	for _, p := range providers {
		if p = strings.TrimSpace(p); p != "" {
			selected[p] = struct{}{}
		}
	}
	if len(selected) == 0 {
		return nil, ErrNoProviders
	}
	var rows [][]string
	for _, row := range mis.Rows {
		if _, ok := selected[mis.Value(row, "ProviderName")]; ok {
			rows = append(rows, row)
		}
	}
	return NewTable(mis.Name, mis.Header, rows), nil
}

// MergeLeads left-joins the filtered leads onto the call aggregate: every
// lead row appears exactly once, extended with the call-derived columns.
// Unmatched leads get zero counts and "No Call" disposition/status text.
func MergeLeads(leads *Table, agg *Aggregate) *Table {
	callCols := CallColumns(agg.Mode)
	header := append(append([]string{}, leads.Header...), callCols...)

	rows := make([][]string, 0, len(leads.Rows))
	for _, lead := range leads.Rows {
		out := make([]string, len(leads.Header), len(header))
		copy(out, lead)

		phone := NormalizePhone(leads.Value(lead, "ContactNo"))
		switch agg.Mode {
		case ModeLastRow:
			matched := agg.Match(phone)
			for _, col := range callCols {
				switch {
				case matched:
					out = append(out, agg.lastRowValue(phone, col))
				case col == "Call Status" || col == "Disposition Name":
					out = append(out, noCall)
				default:
					out = append(out, "")
				}
			}
		default:
			if st, ok := agg.Stats[phone]; ok {
				out = append(out,
					strconv.Itoa(st.TotalAttempts),
					strconv.Itoa(st.ConnectedAttempts),
					strconv.Itoa(st.NotConnected()),
					st.FirstCall.Format(callTimeFormat),
					st.LastCall.Format(callTimeFormat),
					st.LastDisposition,
					st.LastStatus,
				)
			} else {
				out = append(out, "0", "0", "0", "", "", noCall, noCall)
			}
		}
		rows = append(rows, out)
	}
	return NewTable("Consolidated", header, rows)
}
