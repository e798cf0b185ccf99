package freedompay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:    baseURL,
		MerchantID: "552170",
		SecretKey:  "secret",
		Currency:   "KZT",
		CheckURL:   "https://shop.example.com/payments/check",
		ResultURL:  "https://shop.example.com/payments/result",
		SuccessURL: "https://shop.example.com/payments/success",
		FailureURL: "https://shop.example.com/payments/failure",
	})
}

func TestInitPayment_Success(t *testing.T) {
	var got map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/init_payment.php", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		got = map[string]string{}
		for k := range r.PostForm {
			got[k] = r.PostForm.Get(k)
		}

		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="utf-8"?>
<response>
  <pg_status>ok</pg_status>
  <pg_payment_id>4567788</pg_payment_id>
  <pg_redirect_url>https://customer.freedompay.kz/pay.html?customer=abc</pg_redirect_url>
  <pg_redirect_url_type>need data</pg_redirect_url_type>
  <pg_salt>xyz</pg_salt>
  <pg_sig>ignored</pg_sig>
</response>`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	resp, err := client.InitPayment(context.Background(), InitRequest{
		OrderID:     "12345678",
		Amount:      decimal.NewFromInt(3000),
		Description: "Order #12345678",
		UserPhone:   "77001234567",
		UserEmail:   "reader@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://customer.freedompay.kz/pay.html?customer=abc", resp.RedirectURL)
	assert.Equal(t, "4567788", resp.PaymentID)

	assert.Equal(t, "12345678", got["pg_order_id"])
	assert.Equal(t, "3000", got["pg_amount"])
	assert.Equal(t, "KZT", got["pg_currency"])
	assert.Equal(t, "77001234567", got["pg_user_phone"])
	assert.Equal(t, "reader@example.com", got["pg_user_contact_email"])
	assert.Equal(t, "https://shop.example.com/payments/result", got["pg_result_url"])
	assert.True(t, Verify(got, "secret", "init_payment.php"))
}

func TestInitPayment_ResultURLOverride(t *testing.T) {
	client := newTestClient("http://unused")

	params := client.InitParams(InitRequest{
		OrderID:   "Wabc",
		Amount:    decimal.NewFromInt(10),
		ResultURL: "https://shop.example.com/wallet/process-top-up",
	})

	assert.Equal(t, "https://shop.example.com/wallet/process-top-up", params["pg_result_url"])
	_, hasPhone := params["pg_user_phone"]
	assert.False(t, hasPhone)
}

func TestInitPayment_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<response><pg_status>error</pg_status><pg_error_code>101</pg_error_code><pg_error_description>Incorrect merchant</pg_error_description></response>`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).InitPayment(context.Background(), InitRequest{OrderID: "1", Amount: decimal.NewFromInt(1)})

	assert.ErrorIs(t, err, ErrGatewayRejected)
	assert.Contains(t, err.Error(), "Incorrect merchant")
}

func TestInitPayment_NoRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<response><pg_status>ok</pg_status></response>`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).InitPayment(context.Background(), InitRequest{OrderID: "1", Amount: decimal.NewFromInt(1)})

	assert.ErrorIs(t, err, ErrGatewayNoRedirect)
}

func TestInitPayment_MalformedXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not xml at all <`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).InitPayment(context.Background(), InitRequest{OrderID: "1", Amount: decimal.NewFromInt(1)})

	assert.ErrorIs(t, err, ErrGatewayMalformedResponse)
}

func TestInitPayment_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).InitPayment(context.Background(), InitRequest{OrderID: "1", Amount: decimal.NewFromInt(1)})

	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestInitPayment_OversizedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<response><pg_status>ok</pg_status><pg_redirect_url>https://pay.example.com</pg_redirect_url><pg_description>`))
		_, _ = w.Write([]byte(strings.Repeat("x", maxResponseBytes)))
		_, _ = w.Write([]byte(`</pg_description></response>`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).InitPayment(context.Background(), InitRequest{OrderID: "1", Amount: decimal.NewFromInt(1)})

	assert.ErrorIs(t, err, ErrGatewayMalformedResponse)
}
