package receipt

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Extractor", func() {
	var (
		extractor Extractor
		text      string
		fields    Fields
	)

	BeforeEach(func() {
		extractor = Extractor{}
	})

	JustBeforeEach(func() {
		fields = extractor.Extract(text)
	})

	When("the text is a typical receipt", func() {
		BeforeEach(func() {
			text = sampleText
		})

		It("should find every field", func() {
			Expect(fields.VendorName).To(HaveValue(Equal("CORNER STORE")))
			Expect(fields.ReceiptNumber).To(HaveValue(Equal("4821")))
			Expect(fields.Date).To(HaveValue(Equal("12/31/2023")))
			Expect(fields.PaymentAmount).To(HaveValue(Equal("123.45")))
			Expect(fields.Tax).To(HaveValue(Equal("Tax")))
			Expect(fields.PaymentMethod).To(HaveValue(Equal("VISA")))
		})

		It("should be idempotent", func() {
			Expect(extractor.Extract(text)).To(Equal(fields))
		})
	})

	When("the text is empty", func() {
		BeforeEach(func() {
			text = ""
		})

		It("should leave every field absent", func() {
			Expect(fields).To(Equal(Fields{}))
		})

		It("should still serialize all six keys as null", func() {
			data, err := json.Marshal(fields)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(MatchJSON(`{
				"Vendor Name": null,
				"Receipt Number": null,
				"Date": null,
				"Payment Amount": null,
				"Tax": null,
				"Payment Method": null
			}`))
		})
	})

	Describe("Vendor Name", func() {
		When("leading lines contain digits", func() {
			BeforeEach(func() {
				text = "1234 Main St\n  Fresh Mart  \nTotal 5.00"
			})

			It("should take the first digit-free line, trimmed", func() {
				Expect(fields.VendorName).To(HaveValue(Equal("Fresh Mart")))
			})
		})

		When("every line contains digits", func() {
			BeforeEach(func() {
				text = "12/31/2023\nTotal 5.00\nNo 1"
			})

			It("should be absent", func() {
				Expect(fields.VendorName).To(BeNil())
			})
		})
	})

	Describe("Receipt Number", func() {
		DescribeTable("captures only the digit run",
			func(input, expected string) {
				Expect(extractor.Extract(input).ReceiptNumber).To(HaveValue(Equal(expected)))
			},
			Entry("receipt label", "Receipt No: 4821", "4821"),
			Entry("invoice label with hash", "INVOICE #00912", "00912"),
			Entry("order label without colon", "order no 77", "77"),
			Entry("no label", "# 5512", "5512"),
		)

		When("no number follows the marker", func() {
			BeforeEach(func() {
				text = "Receipt No: ABC"
			})

			It("should be absent", func() {
				Expect(fields.ReceiptNumber).To(BeNil())
			})
		})
	})

	Describe("Date", func() {
		When("a slash date is present", func() {
			BeforeEach(func() {
				text = "Date: 3/7/2024 14:02"
			})

			It("should capture it", func() {
				Expect(fields.Date).To(HaveValue(Equal("3/7/2024")))
			})
		})

		When("the date is not a real calendar date", func() {
			BeforeEach(func() {
				text = "99/99/2024"
			})

			It("should capture it anyway", func() {
				Expect(fields.Date).To(HaveValue(Equal("99/99/2024")))
			})
		})

		When("the year has two digits", func() {
			BeforeEach(func() {
				text = "12/31/23"
			})

			It("should be absent", func() {
				Expect(fields.Date).To(BeNil())
			})
		})
	})

	Describe("Payment Amount", func() {
		DescribeTable("captures the amount after a payment label",
			func(input, expected string) {
				Expect(extractor.Extract(input).PaymentAmount).To(HaveValue(Equal(expected)))
			},
			Entry("total with dollar sign", "Total: $123.45", "123.45"),
			Entry("thousands separators are kept", "GRAND TOTAL € 1,234.50", "1,234.50"),
			Entry("rupee symbol", "Amount Paid: ₹450.00", "450.00"),
			Entry("payment label", "payment 12.00", "12.00"),
		)

		When("the amount has one fraction digit", func() {
			BeforeEach(func() {
				text = "Total: 12.5"
			})

			It("should be absent", func() {
				Expect(fields.PaymentAmount).To(BeNil())
			})
		})
	})

	Describe("Tax", func() {
		When("a tax line has an amount", func() {
			BeforeEach(func() {
				text = "GST ₹18.00"
			})

			It("should capture the label as written", func() {
				Expect(fields.Tax).To(HaveValue(Equal("GST")))
			})

			When("the extractor captures amounts", func() {
				BeforeEach(func() {
					extractor = Extractor{TaxAmount: true}
				})

				It("should capture the amount", func() {
					Expect(fields.Tax).To(HaveValue(Equal("18.00")))
				})
			})
		})

		When("the label is followed by a colon", func() {
			BeforeEach(func() {
				text = "Tax: 0.80"
			})

			It("should be absent", func() {
				Expect(fields.Tax).To(BeNil())
			})
		})
	})

	Describe("Payment Method", func() {
		DescribeTable("upper-cases the first method found",
			func(input, expected string) {
				Expect(extractor.Extract(input).PaymentMethod).To(HaveValue(Equal(expected)))
			},
			Entry("lowercase visa", "paid with visa", "VISA"),
			Entry("mixed case online", "Online transfer", "ONLINE"),
			Entry("first of several", "DEBIT card", "DEBIT"),
			Entry("upi", "UPI ref 99812", "UPI"),
		)

		When("no method is mentioned", func() {
			BeforeEach(func() {
				text = "Thank you!"
			})

			It("should be absent", func() {
				Expect(fields.PaymentMethod).To(BeNil())
			})
		})
	})

	Describe("non-ASCII digits and spaces", func() {
		DescribeTable("matches Devanagari digits",
			func(input string, field func(Fields) *string, expected string) {
				Expect(field(extractor.Extract(input))).To(HaveValue(Equal(expected)))
			},
			Entry("date", "दिनांक १२/३१/२०२३", func(f Fields) *string { return f.Date }, "१२/३१/२०२३"),
			Entry("receipt number", "Invoice # ४५६", func(f Fields) *string { return f.ReceiptNumber }, "४५६"),
			Entry("payment amount", "Total: ₹१,२३४.५०", func(f Fields) *string { return f.PaymentAmount }, "१,२३४.५०"),
			Entry("tax with a Devanagari amount", "GST ₹१८.००", func(f Fields) *string { return f.Tax }, "GST"),
		)

		When("the first line starts with Devanagari digits", func() {
			BeforeEach(func() {
				text = "१२३ गली\nराम स्टोर\n"
			})

			It("should skip it for the vendor name", func() {
				Expect(fields.VendorName).To(HaveValue(Equal("राम स्टोर")))
			})
		})

		When("a no-break space separates label and amount", func() {
			BeforeEach(func() {
				text = "Total:\u00a0$5.00"
			})

			It("should still capture the amount", func() {
				Expect(fields.PaymentAmount).To(HaveValue(Equal("5.00")))
			})
		})
	})

	Describe("fields are independent", func() {
		BeforeEach(func() {
			text = "Total: $5.00"
		})

		It("should fill only what matched", func() {
			Expect(fields.PaymentAmount).To(HaveValue(Equal("5.00")))
			Expect(fields.VendorName).To(BeNil())
			Expect(fields.ReceiptNumber).To(BeNil())
			Expect(fields.Date).To(BeNil())
			Expect(fields.Tax).To(BeNil())
			Expect(fields.PaymentMethod).To(BeNil())
		})
	})

	Describe("ExtractFields", func() {
		It("should use the default extractor", func() {
			Expect(ExtractFields("Tax 1.00").Tax).To(HaveValue(Equal("Tax")))
		})
	})
})
