package consolidate

import "fmt"

// Required MIS columns, in the order the upstream export declares them.
var MISColumns = []string{
	"CorporateName", "RequestDate", "ContractName", "PatientName",
	"ApplicationId", "PolicyNo", "Gender", "RelationShip", "EmailId",
	"ContactNo", "NoOfReschedule", "ProviderName", "ProviderState",
}

// Required CDR columns from the Acefone export.
var CDRColumns = []string{
	"Customer Number", "Call Type", "DID Number", "Connected to Agent",
	"Call Status", "Disposition Code", "Disposition Name",
	"Total Call Duration (HH:MM:SS)", "Call Start Date", "Call Start Time",
}

// SchemaError reports the first required column missing from an input
// table.
type SchemaError struct {
	Table  string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required column %q", e.Table, e.Column)
}

// ValidateColumns checks the required columns in order and fails on the
// first absence. Nothing may transform a table that fails here.
func ValidateColumns(t *Table, required []string) error {
	for _, col := range required {
		if t.Col(col) < 0 {
			return &SchemaError{Table: t.Name, Column: col}
		}
	}
	return nil
}
