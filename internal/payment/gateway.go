package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/seatledger/config"
	"github.com/Domenick1991/seatledger/internal/domain"
	circuit "github.com/rubyist/circuitbreaker"
	"github.com/sirupsen/logrus"
)

type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
}

// GatewayError carries whether the failed call may be retried with the same order code.
type GatewayError struct {
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("payment gateway responded %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("payment gateway unreachable: %v", e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a transient gateway failure.
func IsRetryable(err error) bool {
	var gwErr *GatewayError
	return errors.As(err, &gwErr) && gwErr.Retryable
}

var errServerSide = errors.New("server error")

type HTTPGateway struct {
	baseURL string
	authKey string
	timeout time.Duration
	hc      *http.Client
	breaker *circuit.Breaker
	logger  *logrus.Logger
}

func NewHTTPGateway(cfg config.PaymentConfig, logger *logrus.Logger, hc *http.Client) *HTTPGateway {
	if hc == nil {
		hc = &http.Client{}
	}
	threshold := cfg.BreakerThreshold
	if threshold <= 0 {
		threshold = 5
	}
	return &HTTPGateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		authKey: base64.StdEncoding.EncodeToString([]byte(cfg.ServerKey + ":")),
		timeout: cfg.Timeout(),
		hc:      hc,
		breaker: circuit.NewConsecutiveBreaker(threshold),
		logger:  logger,
	}
}

// CreateSession opens a hosted payment session. The order code doubles as the
// idempotency key, so a retried call never charges twice.
func (g *HTTPGateway) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	payload, err := json.Marshal(snapRequest{
		TransactionDetails: transactionDetails{OrderID: req.OrderCode, GrossAmount: req.GrossAmount},
		CustomerDetails:    customerDetails{FirstName: req.CustomerID, Email: req.CustomerEmail},
		ItemDetails:        []itemDetails{{ID: req.ItemID, Price: req.GrossAmount, Quantity: 1, Name: req.ItemName}},
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var (
		session   Session
		statusErr *GatewayError
	)
	callErr := g.breaker.Call(func() error {
		resp, err := g.do(ctx, req.OrderCode, payload)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode >= 500:
			statusErr = &GatewayError{StatusCode: resp.StatusCode, Retryable: true, Err: errors.New(errorMessage(body))}
			return errServerSide
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			// Our request was rejected; the gateway itself is healthy.
			statusErr = &GatewayError{StatusCode: resp.StatusCode, Err: errors.New(errorMessage(body))}
			return nil
		}

		return json.Unmarshal(body, &session)
	}, 0)

	switch {
	case statusErr != nil:
		g.logger.WithContext(ctx).WithError(statusErr).WithField("order_code", req.OrderCode).Error("payment session rejected")
		return nil, domain.Wrap(domain.KindGateway, "payment gateway rejected the session", statusErr)
	case callErr != nil:
		gwErr := &GatewayError{Retryable: true, Err: callErr}
		g.logger.WithContext(ctx).WithError(callErr).WithField("order_code", req.OrderCode).Error("payment gateway call failed")
		return nil, domain.Wrap(domain.KindGateway, "payment gateway unavailable", gwErr)
	case session.Token == "" || session.RedirectURL == "":
		return nil, domain.Wrap(domain.KindGateway, "payment gateway returned an empty session", &GatewayError{Err: errors.New("missing token")})
	}

	return &session, nil
}

func (g *HTTPGateway) do(ctx context.Context, orderCode string, payload []byte) (*http.Response, error) {
	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/snap/v1/transactions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	hr.Header.Add("Content-Type", "application/json")
	hr.Header.Add("Accept", "application/json")
	hr.Header.Add("Authorization", "Basic "+g.authKey)
	hr.Header.Add("Idempotency-Key", orderCode)
	return g.hc.Do(hr)
}

func errorMessage(body []byte) string {
	var resp snapErrorResponse
	if err := json.Unmarshal(body, &resp); err == nil && len(resp.ErrorMessages) > 0 {
		return strings.Join(resp.ErrorMessages, "; ")
	}
	return strings.TrimSpace(string(body))
}

var _ Gateway = (*HTTPGateway)(nil)
