package extract

import "regexp"

// Rule is one candidate expression for locating a field value. The capture
// group holds the value; a rule whose group captures nothing usable yields no
// match and the next rule is tried.
type Rule struct {
	re    *regexp.Regexp
	group int
}

func rule(expr string) Rule {
	return Rule{re: regexp.MustCompile(`(?i)` + expr), group: 1}
}

// FieldRules is the ordered rule set for one logical field. Rules are tried
// in declaration order and the first usable capture wins. Override is a
// last-resort rule consulted only after every primary rule has missed.
type FieldRules struct {
	Name        string
	Rules       []Rule
	Override    *Rule
	StripCommas bool
}

// Registry maps logical fields to their ordered rule sets. Composition is
// fixed at construction; field declaration order drives the export column
// schema. Boundary tokens are the label keywords of the registry itself:
// captured values are cut before the next label so a greedy capture on
// flattened OCR text does not swallow the neighbouring fields.
type Registry struct {
	fields     []FieldRules
	boundaries *regexp.Regexp
}

// Fields returns the field names in declaration order.
func (r *Registry) Fields() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Name
	}
	return out
}

func newRegistry(fields []FieldRules, boundaryExpr string) *Registry {
	return &Registry{
		fields:     fields,
		boundaries: regexp.MustCompile(`(?i)\b(?:` + boundaryExpr + `)\b`),
	}
}

// Broad field names.
const (
	FieldSender        = "Sender"
	FieldReceiver      = "Receiver"
	FieldAmount        = "Amount"
	FieldBankDetails   = "Bank_Details"
	FieldTransactionID = "Transaction_ID"
	FieldReferenceNo   = "Reference_Number"
	FieldStatus        = "Transaction_Status"
)

// Bank-split field names.
const (
	FieldTotalAmount  = "Total_Amount"
	FieldSenderBank   = "Sender_Bank"
	FieldReceiverBank = "Receiver_Bank"
)

// NewBroadRegistry covers receipts from mixed wallets (Easypaisa, NayaPay,
// bank apps) with loose labels. Transaction_ID and Reference_Number rules
// overlap on bare "Ref"/"Reference" on purpose: receipts label the same
// number either way and both columns mirror it.
func NewBroadRegistry() *Registry {
	overrideSender := rule(`\bby\s*[:\-]?\s*(.*)`)
	fields := []FieldRules{
		{
			Name: FieldSender,
			Rules: []Rule{
				rule(`(?:From|Sender|Funding Source|Source Acc\.? Title|Paid by|Payer)\s*[:\-]?\s*(.*)`),
			},
			Override: &overrideSender,
		},
		{
			Name: FieldReceiver,
			Rules: []Rule{
				rule(`(?:To|Receiver|Sent to|Beneficiary|Payee|Destination Acc\.? Title)\s*[:\-]?\s*(.*)`),
			},
		},
		{
			Name: FieldAmount,
			Rules: []Rule{
				rule(`(?:Rs\.?|PKR)\s*[\.:]?\s*([0-9,]+\.?[0-9]*)`),
				rule(`(?:Amount Sent|Total Amount|Amount)\s*[:\-]?\s*(?:Rs\.?|PKR)?\s*([0-9,]+\.?[0-9]*)`),
			},
		},
		{
			Name: FieldBankDetails,
			Rules: []Rule{
				rule(`(Silk Bank|Easypaisa Bank\-?\d*|NayaPay|\S*\*{4,}\d{3,4}|[0-9]{9,14})`),
				rule(`(?:Bank\s*Account|Acct\s*No\.?|Account)\s*[:\-]?\s*([\w\-*]+)`),
			},
		},
		{
			Name: FieldTransactionID,
			Rules: []Rule{
				rule(`(?:Transaction ID|Trans\.? ID|Tx ID|Ref#|Reference|Ref)\s*[:\-]?\s*([\w\-]+)`),
			},
		},
		{
			Name: FieldReferenceNo,
			Rules: []Rule{
				rule(`(?:Ref|Ref#|Reference)\s*[:\-]?\s*([\w\-]+)`),
			},
		},
		{
			Name: FieldStatus,
			Rules: []Rule{
				rule(`(Transaction Successful|Money has been sent|Successfully Sent)`),
			},
		},
	}
	boundary := `From|Sender|Funding|Source|Paid|Payer|by|To|Receiver|Sent|Beneficiary|Payee|Destination|Amount|Rs|PKR|Bank|Acct|Account|Transaction|Trans|Tx|Ref|Reference|Money|Successfully`
	return newRegistry(fields, boundary)
}

// NewBankSplitRegistry is the stricter variant for interbank transfer slips
// that label both legs explicitly. Amounts come out comma-free.
func NewBankSplitRegistry() *Registry {
	fields := []FieldRules{
		{
			Name: FieldSender,
			Rules: []Rule{
				rule(`Source Acc\.?\s*Title\s*[:\-]?\s*([\w &]+)`),
				rule(`Sent by\s*[:\-]?\s*([\w &]+)`),
			},
		},
		{
			Name: FieldReceiver,
			Rules: []Rule{
				rule(`Destination Acc\.?\s*Title\s*[:\-]?\s*([\w &]+)`),
				rule(`To\s*[:\-]?\s*([\w &]+)`),
			},
		},
		{
			Name: FieldTotalAmount,
			Rules: []Rule{
				rule(`(?:Total Amount|Amount)\s*[:\-]?\s*(?:Rs\.?\s*|PKR\s*)?([\d,]+\.\d{2}|[\d,]+)`),
			},
			StripCommas: true,
		},
		{
			Name: FieldSenderBank,
			Rules: []Rule{
				rule(`Source Bank\s*[:\-]?\s*(\w+)`),
			},
		},
		{
			Name: FieldReceiverBank,
			Rules: []Rule{
				rule(`Destination Bank\s*[:\-]?\s*(\w+)`),
			},
		},
	}
	boundary := `Source|Destination|Sent|To|Total|Amount|Bank|Acc|Title|Rs|PKR`
	return newRegistry(fields, boundary)
}
