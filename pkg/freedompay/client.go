package freedompay

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	initScript          = "init_payment.php"
	defaultBaseURL      = "https://api.freedompay.kz"
	defaultLifetime     = 86400
	defaultRequestMeth  = "POST"
	defaultPaymentRoute = "frame"
	defaultTimeout      = 15 * time.Second

	maxResponseBytes = 1 << 20
)

var (
	ErrGatewayUnavailable       = errors.New("payment gateway unavailable")
	ErrGatewayMalformedResponse = errors.New("malformed payment gateway response")
	ErrGatewayRejected          = errors.New("payment gateway rejected the request")
	ErrGatewayNoRedirect        = errors.New("payment gateway returned no redirect url")
)

type Config struct {
	BaseURL       string
	MerchantID    string
	SecretKey     string
	Currency      string
	CheckURL      string
	ResultURL     string
	SuccessURL    string
	FailureURL    string
	RequestMethod string
	Lifetime      int
	TestingMode   bool
	PaymentRoute  string
	Timeout       time.Duration
}

type InitRequest struct {
	OrderID     string
	Amount      decimal.Decimal
	Description string
	UserPhone   string
	UserEmail   string
	// ResultURL overrides Config.ResultURL, e.g. for wallet top-ups.
	ResultURL string
}

type InitResponse struct {
	PaymentID   string
	RedirectURL string
}

type initResponseXML struct {
	XMLName          xml.Name `xml:"response"`
	Status           string   `xml:"pg_status"`
	PaymentID        string   `xml:"pg_payment_id"`
	RedirectURL      string   `xml:"pg_redirect_url"`
	ErrorCode        string   `xml:"pg_error_code"`
	ErrorDescription string   `xml:"pg_error_description"`
}

// Client talks to the gateway's merchant API.
type Client struct {
	Signer
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = defaultLifetime
	}
	if cfg.RequestMethod == "" {
		cfg.RequestMethod = defaultRequestMeth
	}
	if cfg.PaymentRoute == "" {
		cfg.PaymentRoute = defaultPaymentRoute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		Signer: NewSigner(cfg.SecretKey),
		cfg:    cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// InitParams builds the signed form for an init_payment request.
func (c *Client) InitParams(req InitRequest) map[string]string {
	resultURL := c.cfg.ResultURL
	if req.ResultURL != "" {
		resultURL = req.ResultURL
	}
	testing := "0"
	if c.cfg.TestingMode {
		testing = "1"
	}

	params := map[string]string{
		"pg_merchant_id":    c.cfg.MerchantID,
		"pg_order_id":       req.OrderID,
		"pg_amount":         req.Amount.String(),
		"pg_description":    req.Description,
		"pg_salt":           NewSalt(),
		"pg_currency":       c.cfg.Currency,
		"pg_check_url":      c.cfg.CheckURL,
		"pg_result_url":     resultURL,
		"pg_success_url":    c.cfg.SuccessURL,
		"pg_failure_url":    c.cfg.FailureURL,
		"pg_request_method": c.cfg.RequestMethod,
		"pg_lifetime":       strconv.Itoa(c.cfg.Lifetime),
		"pg_testing_mode":   testing,
		"pg_payment_route":  c.cfg.PaymentRoute,
	}
	if req.UserPhone != "" {
		params["pg_user_phone"] = req.UserPhone
	}
	if req.UserEmail != "" {
		params["pg_user_contact_email"] = req.UserEmail
	}
	params[SignatureField] = c.Sign(params, initScript)
	return params
}

// InitPayment registers a payment with the gateway and returns the URL the
// customer must be redirected to.
func (c *Client) InitPayment(ctx context.Context, req InitRequest) (*InitResponse, error) {
	form := url.Values{}
	for k, v := range c.InitParams(req) {
		form.Set(k, v)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + initScript
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build init request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrGatewayUnavailable, err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrGatewayMalformedResponse, maxResponseBytes)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var parsed initResponseXML
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayMalformedResponse, err)
	}

	if strings.EqualFold(parsed.Status, string(StatusError)) || strings.EqualFold(parsed.Status, string(StatusRejected)) {
		return nil, fmt.Errorf("%w: %s %s", ErrGatewayRejected, parsed.ErrorCode, parsed.ErrorDescription)
	}
	if parsed.RedirectURL == "" {
		return nil, ErrGatewayNoRedirect
	}

	return &InitResponse{
		PaymentID:   parsed.PaymentID,
		RedirectURL: parsed.RedirectURL,
	}, nil
}
