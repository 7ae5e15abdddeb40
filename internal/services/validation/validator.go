package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	// ErrFieldEmpty is returned when a required field is empty
	ErrFieldEmpty = errors.New("field cannot be empty")
	// ErrFieldTooLong is returned when a field exceeds max length
	ErrFieldTooLong = errors.New("field exceeds maximum length")
	// ErrInvalidEncoding is returned when a field is not valid UTF-8
	ErrInvalidEncoding = errors.New("field is not valid UTF-8")
	// ErrInvalidEmail is returned when an email does not look like an address
	ErrInvalidEmail = errors.New("email address is not valid")
	// ErrInvalidAmount is returned when the amount is not a positive decimal
	ErrInvalidAmount = errors.New("amount must be a positive number with at most two decimal places")
	// ErrAmountTooLow is returned when the amount is below the configured minimum
	ErrAmountTooLow = errors.New("amount is below the minimum")
	// ErrAmountTooHigh is returned when the amount exceeds MaxAmount
	ErrAmountTooHigh = errors.New("amount is above the maximum")
)

const (
	// MaxUserNameLength is the maximum length for customer names, in characters
	MaxUserNameLength = 100
	// MaxEmailLength is the practical upper bound for an address (RFC 5321 path limit)
	MaxEmailLength = 254
)

// MaxAmount caps a single checkout.
var MaxAmount = decimal.NewFromInt(1_000_000)

var emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// amountRegex accepts plain decimals: digits, optional dot and up to two decimals.
var amountRegex = regexp.MustCompile(`^\d{1,10}(\.\d{1,2})?$`)

// Error is a user-correctable input problem. Message is safe to show the customer.
type Error struct {
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(field, message string, err error) *Error {
	return &Error{Field: field, Message: message, Err: err}
}

// ValidateUserName validates a trimmed customer name
func ValidateUserName(name string) error {
	if name == "" {
		return newError("userName", "Please enter your name.", ErrFieldEmpty)
	}
	if !utf8.ValidString(name) {
		return newError("userName", "Name contains characters that could not be read.", ErrInvalidEncoding)
	}
	if utf8.RuneCountInString(name) > MaxUserNameLength {
		return newError("userName",
			fmt.Sprintf("Name must be at most %d characters.", MaxUserNameLength),
			fmt.Errorf("%w: max %d characters", ErrFieldTooLong, MaxUserNameLength))
	}
	return nil
}

// ValidateUserEmail validates a trimmed customer email
func ValidateUserEmail(email string) error {
	if email == "" {
		return newError("userEmail", "Please enter your email address.", ErrFieldEmpty)
	}
	if !utf8.ValidString(email) {
		return newError("userEmail", "Email address contains characters that could not be read.", ErrInvalidEncoding)
	}
	if len(email) > MaxEmailLength {
		return newError("userEmail", "Email address is too long.",
			fmt.Errorf("%w: max %d characters", ErrFieldTooLong, MaxEmailLength))
	}
	if !emailRegex.MatchString(email) {
		return newError("userEmail", "Please enter a valid email address.", ErrInvalidEmail)
	}
	return nil
}

// ParseAmount parses a form amount and checks it against the inclusive minimum.
func ParseAmount(raw string, minAmount decimal.Decimal) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, newError("amount", "Please enter an amount.", ErrFieldEmpty)
	}
	if !amountRegex.MatchString(raw) {
		return decimal.Zero, newError("amount", "Please enter a valid amount, e.g. 10.00.", ErrInvalidAmount)
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, newError("amount", "Please enter a valid amount, e.g. 10.00.", ErrInvalidAmount)
	}
	if amount.LessThan(minAmount) {
		return decimal.Zero, newError("amount",
			fmt.Sprintf("The minimum amount is %s.", minAmount.StringFixed(2)),
			fmt.Errorf("%w: %s < %s", ErrAmountTooLow, amount.StringFixed(2), minAmount.StringFixed(2)))
	}
	if amount.GreaterThan(MaxAmount) {
		return decimal.Zero, newError("amount",
			fmt.Sprintf("The maximum amount is %s.", MaxAmount.StringFixed(2)),
			fmt.Errorf("%w: %s", ErrAmountTooHigh, amount.StringFixed(2)))
	}
	return amount, nil
}

// CheckoutInput holds the sanitized form fields.
type CheckoutInput struct {
	UserName  string
	UserEmail string
	Amount    decimal.Decimal
}

// ValidateCheckout trims and validates raw form values, returning the first
// problem found in field order.
func ValidateCheckout(userName, userEmail, amount string, minAmount decimal.Decimal) (CheckoutInput, error) {
	userName = strings.TrimSpace(userName)
	userEmail = strings.TrimSpace(userEmail)

	if err := ValidateUserName(userName); err != nil {
		return CheckoutInput{}, err
	}
	if err := ValidateUserEmail(userEmail); err != nil {
		return CheckoutInput{}, err
	}

	parsed, err := ParseAmount(amount, minAmount)
	if err != nil {
		return CheckoutInput{}, err
	}

	return CheckoutInput{UserName: userName, UserEmail: userEmail, Amount: parsed}, nil
}
