package consolidate

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how the CDR table is reduced to one entry per phone key.
type Mode string

const (
	// ModeSummary derives attempt counts and first/last call statistics.
	ModeSummary Mode = "summary"
	// ModeLastRow keeps the full most-recent call row per phone.
	ModeLastRow Mode = "last_row"
)

// ParseMode maps a request value to a Mode; empty defaults to summary.
func ParseMode(s string) (Mode, error) {
	switch strings.TrimSpace(s) {
	case "", string(ModeSummary):
		return ModeSummary, nil
	case string(ModeLastRow):
		return ModeLastRow, nil
	}
	return "", fmt.Errorf("unknown aggregation mode %q", s)
}

// answeredStatus is the exact Call Status value counted as a connect.
const answeredStatus = "Answered"

const callTimeFormat = "2006-01-02 15:04:05"

// CallStats is the per-phone summary over surviving CDR rows.
type CallStats struct {
	Phone             string
	TotalAttempts     int
	ConnectedAttempts int
	FirstCall         time.Time
	LastCall          time.Time
	LastDisposition   string
	LastStatus        string
}

func (s *CallStats) NotConnected() int { return s.TotalAttempts - s.ConnectedAttempts }

// Aggregate is the phone-key-unique reduction of a CDR table.
type Aggregate struct {
	Mode  Mode
	Stats map[string]*CallStats
	// Dropped counts CDR rows lost to an unusable phone key or an
	// unparseable call timestamp.
	Dropped int

	rows map[string][]string // most recent raw row per key (last_row mode)
	cdr  *Table
}

// timestampLayouts covers the date+time shapes seen in CDR exports.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02-01-2006 15:04:05",
	"02/01/2006 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02T15:04:05",
}

func parseCallTime(date, clock string) (time.Time, error) {
	raw := strings.TrimSpace(strings.TrimSpace(date) + " " + strings.TrimSpace(clock))
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable call time %q", raw)
}

// AggregateCalls reduces the CDR table to one entry per normalized phone.
// Rows without a phone key or timestamp are dropped and counted, never
// fatal. On equal last-call timestamps the later-ingested row wins.
func AggregateCalls(cdr *Table, mode Mode) (*Aggregate, error) {
	if err := ValidateColumns(cdr, CDRColumns); err != nil {
		return nil, err
	}

	agg := &Aggregate{
		Mode:  mode,
		Stats: map[string]*CallStats{},
		rows:  map[string][]string{},
		cdr:   cdr,
	}

	for _, row := range cdr.Rows {
		phone := NormalizePhone(cdr.Value(row, "Customer Number"))
		if phone == "" {
			agg.Dropped++
			continue
		}
		ts, err := parseCallTime(cdr.Value(row, "Call Start Date"), cdr.Value(row, "Call Start Time"))
		if err != nil {
			agg.Dropped++
			continue
		}

		st := agg.Stats[phone]
		if st == nil {
			st = &CallStats{Phone: phone, FirstCall: ts}
			agg.Stats[phone] = st
		}
		st.TotalAttempts++
		if cdr.Value(row, "Call Status") == answeredStatus {
			st.ConnectedAttempts++
		}
		if ts.Before(st.FirstCall) {
			st.FirstCall = ts
		}
		if st.TotalAttempts == 1 || !ts.Before(st.LastCall) {
			st.LastCall = ts
			st.LastDisposition = cdr.Value(row, "Disposition Name")
			st.LastStatus = cdr.Value(row, "Call Status")
			if mode == ModeLastRow {
				agg.rows[phone] = row
			}
		}
	}
	return agg, nil
}

// Match reports whether any surviving call row carries this phone key.
func (a *Aggregate) Match(phone string) bool {
	_, ok := a.Stats[phone]
	return phone != "" && ok
}

func (a *Aggregate) lastRowValue(phone, col string) string {
	row, ok := a.rows[phone]
	if !ok {
		return ""
	}
	return a.cdr.Value(row, col)
}
