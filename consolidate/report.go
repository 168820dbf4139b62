package consolidate

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/xuri/excelize/v2"
)

// Metrics are the dashboard numbers for one analysis run.
type Metrics struct {
	TotalLeads        int     `json:"total_leads"`
	MatchedLeads      int     `json:"matched_leads"`
	ProvidersSelected int     `json:"providers_selected"`
	UniquePhones      int     `json:"unique_phones"`
	TotalAttempts     int     `json:"total_attempts"`
	ConnectedAttempts int     `json:"connected_attempts"`
	ConnectionRate    float64 `json:"connection_rate"`
	DroppedCDRRows    int     `json:"dropped_cdr_rows"`
}

// DispositionCount is one entry of the disposition frequency breakdown.
type DispositionCount struct {
	Disposition string `json:"disposition"`
	Count       int    `json:"count"`
}

// Report is the projected output table plus its run metrics.
type Report struct {
	Table        *Table
	Metrics      Metrics
	Dispositions []DispositionCount
}

// ProjectReport selects the final column set (MIS columns in declared
// order, then the mode's call columns) and computes the run metrics over
// the merged table.
func ProjectReport(merged *Table, agg *Aggregate, providers []string) *Report {
	header := append(append([]string{}, MISColumns...), CallColumns(agg.Mode)...)

	dispCol := "Last_Disposition"
	if agg.Mode == ModeLastRow {
		dispCol = "Disposition Name"
	}

	m := Metrics{
		TotalLeads:        len(merged.Rows),
		ProvidersSelected: len(providers),
		DroppedCDRRows:    agg.Dropped,
	}
	phones := map[string]struct{}{}
	dispCounts := map[string]int{}

	rows := make([][]string, 0, len(merged.Rows))
	for _, row := range merged.Rows {
		out := make([]string, 0, len(header))
		for _, col := range header {
			out = append(out, merged.Value(row, col))
		}
		rows = append(rows, out)

		phone := NormalizePhone(merged.Value(row, "ContactNo"))
		if phone != "" {
			phones[phone] = struct{}{}
		}
		if agg.Match(phone) {
			st := agg.Stats[phone]
			m.MatchedLeads++
			m.TotalAttempts += st.TotalAttempts
			m.ConnectedAttempts += st.ConnectedAttempts
		}
		if d := merged.Value(row, dispCol); d != "" {
			dispCounts[d]++
		}
	}
	m.UniquePhones = len(phones)
	if m.TotalAttempts > 0 {
		rate := float64(m.ConnectedAttempts) / float64(m.TotalAttempts) * 100
		m.ConnectionRate = math.Round(rate*100) / 100
	}

	dispositions := make([]DispositionCount, 0, len(dispCounts))
	for d, n := range dispCounts {
		dispositions = append(dispositions, DispositionCount{Disposition: d, Count: n})
	}
	sort.Slice(dispositions, func(i, j int) bool {
		if dispositions[i].Count != dispositions[j].Count {
			return dispositions[i].Count > dispositions[j].Count
		}
		return dispositions[i].Disposition < dispositions[j].Disposition
	})

	return &Report{
		Table:        NewTable("Consolidated_Report", header, rows),
		Metrics:      m,
		Dispositions: dispositions,
	}
}

// Analyze runs the whole pipeline over two uploaded tables: validate both,
// filter leads by provider, aggregate calls, merge and project. Both
// inputs are validated up front so a bad CDR file cannot leave a partial
// MIS-only result behind.
func Analyze(mis, cdr *Table, providers []string, mode Mode) (*Report, error) {
	if err := ValidateColumns(mis, MISColumns); err != nil {
		return nil, err
	}
	if err := ValidateColumns(cdr, CDRColumns); err != nil {
		return nil, err
	}
	leads, err := FilterProviders(mis, providers)
	if err != nil {
		return nil, err
	}
	agg, err := AggregateCalls(cdr, mode)
	if err != nil {
		return nil, err
	}
	merged := MergeLeads(leads, agg)
	return ProjectReport(merged, agg, providers), nil
}

// WriteCSV emits the report table as UTF-8 comma-separated text with a
// header row.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Table.Header); err != nil {
		return err
	}
	for _, row := range r.Table.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteWorkbook renders the report as an Excel workbook with report,
// summary and dispositions sheets.
func (r *Report) WriteWorkbook(path string) error {
	x := excelize.NewFile()
	add := func(name string, rows [][]string) {
		idx, _ := x.NewSheet(name)
		for ri, row := range rows {
			for ci, v := range row {
				cell, _ := excelize.CoordinatesToCellName(ci+1, ri+1)
				x.SetCellStr(name, cell, v)
			}
		}
		if name == "report" {
			x.SetActiveSheet(idx)
		}
	}

	report := append([][]string{r.Table.Header}, r.Table.Rows...)

	summary := [][]string{
		{"Metric", "Value"},
		{"Total Leads", fmt.Sprintf("%d", r.Metrics.TotalLeads)},
		{"Matched Leads", fmt.Sprintf("%d", r.Metrics.MatchedLeads)},
		{"Providers Selected", fmt.Sprintf("%d", r.Metrics.ProvidersSelected)},
		{"Unique Phones", fmt.Sprintf("%d", r.Metrics.UniquePhones)},
		{"Total Attempts", fmt.Sprintf("%d", r.Metrics.TotalAttempts)},
		{"Connected Attempts", fmt.Sprintf("%d", r.Metrics.ConnectedAttempts)},
		{"Connection Rate", fmt.Sprintf("%.2f%%", r.Metrics.ConnectionRate)},
		{"Dropped CDR Rows", fmt.Sprintf("%d", r.Metrics.DroppedCDRRows)},
	}

	disp := [][]string{{"Disposition", "Count"}}
	for _, d := range r.Dispositions {
		disp = append(disp, []string{d.Disposition, fmt.Sprintf("%d", d.Count)})
	}

	add("report", report)
	add("summary", summary)
	add("dispositions", disp)
	x.DeleteSheet("Sheet1")

	return x.SaveAs(path)
}
