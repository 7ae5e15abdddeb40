package order

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/VladKovDev/checkout-bridge/internal/config"
	domainOrder "github.com/VladKovDev/checkout-bridge/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNonPositiveAmount = errors.New("amount must be positive")

// Input is validated customer input.
type Input struct {
	UserName  string
	UserEmail string
	Amount    decimal.Decimal
}

// IDGenerator produces order identifiers. Tests replace it to get stable ids.
type IDGenerator func() string

// NewOrderID returns a random (version 4) UUID.
func NewOrderID() string {
	return uuid.New().String()
}

// Build assembles a fresh order for in. Every call gets a new order id and
// the current timestamp, so two calls with the same input never produce the
// same payload. When m.PublicKey is set the signature-scheme identity fields
// are attached as well.
func Build(in Input, m domainOrder.Merchant, clock domainOrder.Clock) (*domainOrder.Payload, error) {
	return build(in, m, clock, NewOrderID)
}

func build(in Input, m domainOrder.Merchant, clock domainOrder.Clock, newID IDGenerator) (*domainOrder.Payload, error) {
	if !in.Amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	p := &domainOrder.Payload{
		OrderID:     newID(),
		Amount:      in.Amount.StringFixed(2),
		Currency:    m.Currency,
		Timestamp:   clock.Now().Unix(),
		UserName:    in.UserName,
		UserEmail:   in.UserEmail,
		SiteName:    m.SiteName,
		RedirectURL: m.RedirectURL,
		WebsiteURL:  m.WebsiteURL,
		CancelURL:   m.CancelURL,
		WebhookURL:  m.WebhookURL,
	}

	if m.PublicKey != "" {
		p.Identity = &domainOrder.Identity{
			PublicKey:    m.PublicKey,
			UniqueUserID: UniqueUserID(in.UserEmail),
			ProductID:    m.ProductID,
		}
	}

	return p, nil
}

// UniqueUserID derives a stable customer identifier from an email address.
func UniqueUserID(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:16])
}

// MerchantFromConfig extracts the fixed order fields from cfg. The public key
// is only carried for the signature scheme.
func MerchantFromConfig(cfg *config.Config) domainOrder.Merchant {
	m := domainOrder.Merchant{
		SiteName:    cfg.Merchant.SiteName,
		Currency:    cfg.Merchant.Currency,
		RedirectURL: cfg.Merchant.RedirectURL,
		WebsiteURL:  cfg.Merchant.WebsiteURL,
		CancelURL:   cfg.Merchant.CancelURL,
		WebhookURL:  cfg.Merchant.WebhookURL,
	}
	if cfg.Processor.AuthScheme == config.AuthSchemeSignature {
		m.PublicKey = cfg.Processor.APIKey
		m.ProductID = cfg.Merchant.ProductID
	}
	return m
}
