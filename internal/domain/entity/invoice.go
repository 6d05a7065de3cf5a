package entity

// InvoiceAddress is one delivery address block in the invoice header.
type InvoiceAddress struct {
	Label string   `json:"label"`
	Lines []string `json:"lines"`
}

// InvoiceHeader holds the branding printed at the top of an invoice.
type InvoiceHeader struct {
	CompanyName   string           `json:"company_name"`
	Addresses     []InvoiceAddress `json:"addresses"`
	Title         string           `json:"title"`
	InvoiceNumber string           `json:"invoice_number"`
	Date          string           `json:"date"`
}

// InvoiceField is a labelled value in one of the detail blocks.
type InvoiceField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// InvoiceLine is one row of the itemized table, already formatted.
type InvoiceLine struct {
	Index     int    `json:"index"`
	Product   string `json:"product"`
	Quantity  string `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Amount    string `json:"amount"`
}

// InvoiceSummary is the payment block.
type InvoiceSummary struct {
	Total            string `json:"total"`
	SecondaryTotal   string `json:"secondary_total"`
	TotalLine        string `json:"total_line"`
	ExchangeRateLine string `json:"exchange_rate_line"`
	PaymentStatus    string `json:"payment_status"`
}

// InvoiceRemark is one numbered clause of the remarks block.
type InvoiceRemark struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Invoice is a value object describing a printable invoice.
// It is NOT a database entity; it is composed from an archived receipt at render time.
type Invoice struct {
	Header   InvoiceHeader   `json:"header"`
	Shipment []InvoiceField  `json:"shipment"`
	Customer []InvoiceField  `json:"customer"`
	Staff    []InvoiceField  `json:"staff"`
	Lines    []InvoiceLine   `json:"lines"`
	Summary  InvoiceSummary  `json:"summary"`
	Remarks  []InvoiceRemark `json:"remarks"`
}
