package model

// TableCategory is derived by the classifier, never stored.
type TableCategory string

const (
	TableCapitalCalls  TableCategory = "capital_calls"
	TableDistributions TableCategory = "distributions"
	TableAdjustments   TableCategory = "adjustments"
	TableUnknown       TableCategory = "unknown"
)

// RawTable is one table as detected in the source PDF: the first detected row
// becomes the headers, the rest the data rows. Cells may be empty strings
// where the extractor found nothing.
type RawTable struct {
	Page       int
	TableIndex int
	Headers    []string
	Rows       [][]string
}

// Page is one PDF page with its extractable text and detected tables.
type Page struct {
	Number int
	Text   string
	Tables []RawTable
}
