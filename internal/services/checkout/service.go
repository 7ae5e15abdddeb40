package checkout

import (
	"context"
	"fmt"
	"net/http"

	"github.com/VladKovDev/checkout-bridge/internal/config"
	domainOrder "github.com/VladKovDev/checkout-bridge/internal/domain/order"
	"github.com/VladKovDev/checkout-bridge/internal/services/auth"
	"github.com/VladKovDev/checkout-bridge/internal/services/order"
	"github.com/VladKovDev/checkout-bridge/internal/services/validation"
	"github.com/VladKovDev/checkout-bridge/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Request holds the raw form values, untrimmed.
type Request struct {
	UserName  string
	UserEmail string
	Amount    string
}

type Submitter interface {
	Submit(ctx context.Context, endpointURL string, headers http.Header, body []byte) (*Result, error)
}

// Service runs one checkout: validate, build, authenticate, submit. It holds
// no mutable state and is safe for concurrent use.
type Service struct {
	endpointURL   string
	merchant      domainOrder.Merchant
	minAmount     decimal.Decimal
	authenticator auth.Authenticator
	client        Submitter
	clock         domainOrder.Clock
	logger        logger.Logger
}

func NewService(cfg *config.Config, authenticator auth.Authenticator, client Submitter, clock domainOrder.Clock, log logger.Logger) (*Service, error) {
	minAmount, err := decimal.NewFromString(cfg.Merchant.MinAmount)
	if err != nil {
		return nil, &config.ConfigurationError{Key: "MIN_AMOUNT", Reason: fmt.Sprintf("not a decimal: %v", err)}
	}

	return &Service{
		endpointURL:   cfg.CheckoutURL(),
		merchant:      order.MerchantFromConfig(cfg),
		minAmount:     minAmount,
		authenticator: authenticator,
		client:        client,
		clock:         clock,
		logger:        log,
	}, nil
}

// MinAmount is the smallest accepted checkout amount.
func (s *Service) MinAmount() decimal.Decimal {
	return s.minAmount
}

// Initiate validates req and, only if it is valid, sends exactly one order to
// the processor. Validation failures are returned as *validation.Error before
// any network activity. A retry by the caller creates a new order id.
func (s *Service) Initiate(ctx context.Context, req Request) (*Result, error) {
	input, err := validation.ValidateCheckout(req.UserName, req.UserEmail, req.Amount, s.minAmount)
	if err != nil {
		return nil, err
	}

	payload, err := order.Build(order.Input{
		UserName:  input.UserName,
		UserEmail: input.UserEmail,
		Amount:    input.Amount,
	}, s.merchant, s.clock)
	if err != nil {
		return nil, fmt.Errorf("failed to build order: %w", err)
	}

	log := s.logger.With(
		zap.String("order_id", payload.OrderID),
		zap.String("scheme", s.authenticator.Scheme()),
	)

	authReq, err := s.authenticator.Authenticate(payload)
	if err != nil {
		log.Error("failed to authenticate order", zap.Error(err))
		return nil, fmt.Errorf("failed to authenticate order %s: %w", payload.OrderID, err)
	}

	log.Info("submitting order",
		zap.String("amount", payload.Amount),
		zap.String("currency", payload.Currency))

	result, err := s.client.Submit(ctx, s.endpointURL, authReq.Header, authReq.Body)
	if err != nil {
		log.Error("checkout failed", zap.Error(err))
		return nil, fmt.Errorf("checkout for order %s: %w", payload.OrderID, err)
	}

	result.OrderID = payload.OrderID
	switch result.Kind {
	case KindRedirect:
		log.Info("checkout created", zap.String("checkout_url", result.URL))
	default:
		log.Warn("processor declined checkout", zap.String("message", result.Message))
	}

	return result, nil
}
