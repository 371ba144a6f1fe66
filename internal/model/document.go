package model

// LineItem is a single item, transaction row, or pay component extracted
// from a document.
type LineItem struct {
	Name     *string  `json:"name,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Quantity *float64 `json:"quantity,omitempty"`
}

// Document is the extraction result. It is the superset of the fields
// produced across all document types; fields that do not apply to a type
// are nil and omitted from the response.
type Document struct {
	// Identity
	Merchant   *string `json:"merchant,omitempty"`
	Employer   *string `json:"employer,omitempty"`
	BankName   *string `json:"bank_name,omitempty"`
	SenderName *string `json:"sender_name,omitempty"`

	// Recipient
	BillToName    *string `json:"bill_to_name,omitempty"`
	BillToAddress *string `json:"bill_to_address,omitempty"`

	// Dates
	Date    *string `json:"date,omitempty"`
	DueDate *string `json:"due_date,omitempty"`

	// Financials
	Total    *float64 `json:"total,omitempty"`
	Subtotal *float64 `json:"subtotal,omitempty"`
	Tax      *float64 `json:"tax,omitempty"`
	Currency *string  `json:"currency,omitempty"`

	// Identifiers
	InvoiceNumber *string `json:"invoice_number,omitempty"`
	PONumber      *string `json:"po_number,omitempty"`
	AccountNumber *string `json:"account_number,omitempty"`

	// Meta
	Category        *string    `json:"category,omitempty"`
	DocTypeDetected *string    `json:"doc_type_detected,omitempty"`
	Items           []LineItem `json:"items,omitempty"`
	Summary         *string    `json:"summary,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	Confidence      *float64   `json:"confidence,omitempty"`

	ProcessingTimeMs int64 `json:"processing_time_ms"`
}
