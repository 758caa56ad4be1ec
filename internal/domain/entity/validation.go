package entity

// ValidationCode identifies why a transfer was rejected.
type ValidationCode string

const (
	CodeEmptyRecipient      ValidationCode = "empty_recipient"
	CodeInvalidAddress      ValidationCode = "invalid_address"
	CodeNonPositiveAmount   ValidationCode = "non_positive_amount"
	CodeInsufficientBalance ValidationCode = "insufficient_balance"
	CodeUnknownNetwork      ValidationCode = "unknown_network"
	CodeAmountPrecision     ValidationCode = "amount_precision"
)

// ValidationError is a single blocking validation failure.
type ValidationError struct {
	Code    ValidationCode `json:"code"`
	Message string         `json:"message"`
}

// ValidationResult is the outcome of validating a transfer.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Has reports whether the result contains the given code.
func (r ValidationResult) Has(code ValidationCode) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}
