package wechatpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/feastline/ordercore/internal/domain/errors"
	"github.com/feastline/ordercore/internal/domain/model"
)

// Gateway exposes the payment and refund operations of the remote pay platform.
// The core treats both as fallible remote calls; it owns none of their logic.
type Gateway interface {
	Pay(ctx context.Context, orderNumber string, amount decimal.Decimal, description string) (*model.PaymentIntent, error)
	Refund(ctx context.Context, outTradeNo, outRefundNo string, refund, total decimal.Decimal) error
}

// HTTPClient implements Gateway via the gateway's HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type payRequest struct {
	OutTradeNo  string `json:"out_trade_no"`
	Description string `json:"description"`
	Amount      struct {
		Total string `json:"total"`
	} `json:"amount"`
}

type payResponse struct {
	Code     string `json:"code"`
	PrepayID string `json:"prepay_id"`
	PaySign  string `json:"pay_sign"`
}

type refundRequest struct {
	OutTradeNo  string `json:"out_trade_no"`
	OutRefundNo string `json:"out_refund_no"`
	Amount      struct {
		Refund string `json:"refund"`
		Total  string `json:"total"`
	} `json:"amount"`
}

// NewHTTPClient creates a gateway client with an explicit request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Pay requests a client-presentable payment intent for the order.
func (c *HTTPClient) Pay(ctx context.Context, orderNumber string, amount decimal.Decimal, description string) (*model.PaymentIntent, error) {
	var req payRequest
	req.OutTradeNo = orderNumber
	req.Description = description
	req.Amount.Total = amount.StringFixed(2)

	var resp payResponse
	if err := c.post(ctx, "/api/pay/transactions", req, &resp); err != nil {
		return nil, err
	}
	if resp.Code == "ORDERPAID" {
		return nil, domainErrors.ErrAlreadyPaid
	}
	if resp.PrepayID == "" {
		return nil, fmt.Errorf("%w: empty prepay id", domainErrors.ErrPaymentGateway)
	}

	return &model.PaymentIntent{
		TimeStamp: strconv.FormatInt(time.Now().Unix(), 10),
		NonceStr:  uuid.NewString(),
		Package:   "prepay_id=" + resp.PrepayID,
		SignType:  "RSA",
		PaySign:   resp.PaySign,
	}, nil
}

// Refund asks the gateway to return funds for a paid order.
func (c *HTTPClient) Refund(ctx context.Context, outTradeNo, outRefundNo string, refund, total decimal.Decimal) error {
	var req refundRequest
	req.OutTradeNo = outTradeNo
	req.OutRefundNo = outRefundNo
	req.Amount.Refund = refund.StringFixed(2)
	req.Amount.Total = total.StringFixed(2)

	if err := c.post(ctx, "/api/refund/domestic/refunds", req, &struct{}{}); err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrRefundGateway, err)
	}
	return nil
}

func (c *HTTPClient) post(ctx context.Context, endpointPath string, payload, out any) error {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, endpointPath)

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrPaymentGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		data, _ := io.ReadAll(resp.Body)
		c.logger.Error("gateway request failed",
			slog.String("path", endpointPath),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(data)),
		)
		return fmt.Errorf("%w: %s", domainErrors.ErrPaymentGateway, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrPaymentGateway, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrPaymentGateway, err)
	}
	return nil
}
