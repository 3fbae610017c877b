package receipt

import (
	"regexp"
	"strings"
)

// Digits and whitespace are Unicode-aware so receipts in other scripts (१२/३१/२०२३) match;
// RE2's \d, \D and \s are ASCII-only.
const (
	reDigit    = `\p{Nd}`
	reNonDigit = `\P{Nd}`
	reSpace    = `[\t\n\v\f\r\x{1c}-\x{1f}\x{85}\p{Z}]`
)

// Each rule is searched independently over the whole text; the leftmost match wins.
var (
	vendorPattern        = regexp.MustCompile(`(?m)^` + reSpace + `*(` + reNonDigit + `+)` + reSpace + `*$`)
	receiptNumberPattern = regexp.MustCompile(`(?i)(Receipt|Invoice|Order|)` + reSpace + `*(No|#):?` + reSpace + `*(` + reDigit + `+)`)
	datePattern          = regexp.MustCompile(`(` + reDigit + `{1,2}/` + reDigit + `{1,2}/` + reDigit + `{4})`)
	paymentAmountPattern = regexp.MustCompile(`(?i)(Total|Amount Paid|Grand Total|Payment):?` + reSpace + `*[₹$€]?` + reSpace + `*([` + reDigit + `,]+\.` + reDigit + `{2})`)
	taxPattern           = regexp.MustCompile(`(?i)(Tax|gst)` + reSpace + `*[$₹€]?` + reSpace + `*([` + reDigit + `,]+\.` + reDigit + `{2})`)
	paymentMethodPattern = regexp.MustCompile(`(?i)(CASH|CARD|CREDIT|DEBIT|VISA|UPI|Online)`)
)

// Extractor pulls receipt fields out of OCR text with pattern rules
type Extractor struct {
	// TaxAmount makes the Tax field capture the amount instead of the "Tax"/"gst" label.
	// Off by default for compatibility with existing clients that expect the label.
	TaxAmount bool
}

// ExtractFields runs the default extractor over text
func ExtractFields(text string) Fields {
	return Extractor{}.Extract(text)
}

// Extract returns the six receipt fields found in text. It has no side effects.
func (e Extractor) Extract(text string) Fields {
	var f Fields

	if m := vendorPattern.FindStringSubmatch(text); m != nil {
		f.VendorName = ptr(strings.TrimSpace(m[1]))
	}

	if m := receiptNumberPattern.FindStringSubmatch(text); m != nil {
		f.ReceiptNumber = ptr(m[3])
	}

	if m := datePattern.FindStringSubmatch(text); m != nil {
		f.Date = ptr(m[1])
	}

	if m := paymentAmountPattern.FindStringSubmatch(text); m != nil {
		f.PaymentAmount = ptr(m[2])
	}

	if m := taxPattern.FindStringSubmatch(text); m != nil {
		if e.TaxAmount {
			f.Tax = ptr(m[2])
		} else {
			f.Tax = ptr(m[1])
		}
	}

	if m := paymentMethodPattern.FindStringSubmatch(text); m != nil {
		f.PaymentMethod = ptr(strings.ToUpper(m[1]))
	}

	return f
}

func ptr(s string) *string {
	return &s
}
