package receipt

import "time"

// Fields holds the values extracted from a receipt's recognized text.
// Every key is always serialized; a field that did not match encodes as null.
type Fields struct {
	VendorName    *string `json:"Vendor Name"`
	ReceiptNumber *string `json:"Receipt Number"`
	Date          *string `json:"Date"`
	PaymentAmount *string `json:"Payment Amount"`
	Tax           *string `json:"Tax"`
	PaymentMethod *string `json:"Payment Method"`
}

// Result is the response for a processed upload
type Result struct {
	ReceiptData  Fields `json:"receipt_data"`
	TempFilePath string `json:"temp_file_path"`
}

// Upload is the ledger record of a stored upload. It never carries extracted fields.
type Upload struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"` // as sent by the client
	Path        string    `json:"path"`     // where it was stored
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	SHA256      string    `json:"sha256"`
	CreatedAt   time.Time `json:"created_at"`
}
