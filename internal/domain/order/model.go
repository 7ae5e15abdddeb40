package order

import "time"

// Payload is the order record sent to the processor. The cipher scheme
// encrypts it whole; the signature scheme sends it in clear with Identity set
// and Signature computed over every other field.
type Payload struct {
	OrderID     string `json:"orderID"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Timestamp   int64  `json:"timestamp"`
	UserName    string `json:"userName"`
	UserEmail   string `json:"userEmail"`
	SiteName    string `json:"siteName"`
	RedirectURL string `json:"redirectUrl"`
	WebsiteURL  string `json:"websiteUrl"`
	CancelURL   string `json:"cancelUrl"`
	WebhookURL  string `json:"webhookUrl"`

	*Identity

	Signature string `json:"signature,omitempty"`
}

// Identity carries the merchant and customer identifiers required by the
// signature scheme. A nil Identity leaves these fields out of the JSON.
type Identity struct {
	PublicKey    string `json:"publicKey"`
	UniqueUserID string `json:"uniqueUserId"`
	ProductID    string `json:"productId"`
}

// Unsigned returns a copy of p with Signature cleared.
func (p Payload) Unsigned() Payload {
	p.Signature = ""
	return p
}

// Merchant is the fixed, per-deployment part of every order.
type Merchant struct {
	SiteName    string
	Currency    string
	RedirectURL string
	WebsiteURL  string
	CancelURL   string
	WebhookURL  string
	PublicKey   string
	ProductID   string
}

// Clock supplies the construction time.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)
