package gtbank

// Profile describes the column layout of a GTBank CSV export. The
// internet banking portal and the branch "account history" export use
// different headers for the same data.
type Profile struct {
	Name      string
	DateCol   string
	DescCol   string
	RefCol    string
	DebitCol  string
	CreditCol string
	// DateFormats are tried in order; the portal switched formats in 2023.
	DateFormats []string
}

func (p Profile) requiredCols() []string {
	return []string{p.DateCol, p.DescCol, p.RefCol, p.DebitCol, p.CreditCol}
}

// profiles is the ordered list of export formats to try during
// auto-detection.
var profiles = []Profile{
	{
		Name:        "internet-banking",
		DateCol:     "Transaction Date",
		DescCol:     "Narration",
		RefCol:      "Reference",
		DebitCol:    "Debit",
		CreditCol:   "Credit",
		DateFormats: []string{"02-Jan-2006", "2006-01-02"},
	},
	{
		Name:        "account-history",
		DateCol:     "Trans. Date",
		DescCol:     "Remarks",
		RefCol:      "Reference No",
		DebitCol:    "Debits",
		CreditCol:   "Credits",
		DateFormats: []string{"02/01/2006"},
	},
}
