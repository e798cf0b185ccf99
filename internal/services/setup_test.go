package services_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"bookstore/internal/infra"
	"bookstore/internal/mocks"
	"bookstore/internal/services"
	"bookstore/pkg/freedompay"
	mem "bookstore/pkg/memcache"
)

const (
	testSecret     = "merchant-secret"
	checkURL       = "https://api.example.com/payments/check"
	resultURL      = "https://api.example.com/payments/result"
	topUpResultURL = "https://api.example.com/wallet/process-top-up"
	successURL     = "https://shop.example.com/payment/success"
)

type fixture struct {
	store   *store
	gateway *mocks.MockPaymentGateway
	events  *mocks.MockPublisher
	signer  freedompay.Signer

	wallets    services.WalletService
	orders     services.OrderService
	settlement services.SettlementService
	payments   services.PaymentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := zap.NewNop()
	s := newStore()
	txr := fakeTransactor{s: s}
	gateway := new(mocks.MockPaymentGateway)
	events := new(mocks.MockPublisher)
	events.On("Publish", mock.Anything, infra.EventOrderCompleted, mock.Anything).Return(nil).Maybe()
	signer := freedompay.NewSigner(testSecret)

	wallets := services.NewWalletService(fakeWallets{s}, fakeUsers{s}, gateway, txr, services.WalletConfig{
		Currency:        "KZT",
		LoyaltyCurrency: "PTS",
		TopUpResultURL:  topUpResultURL,
	}, log)

	orders := services.NewOrderService(fakeOrders{s}, fakeProducts{s}, fakeVouchers{s}, fakeCarts{s}, fakeDashboard{s}, wallets, "KZT", log)

	settlement := services.NewSettlementService(txr, fakeOrders{s}, fakeProgress{s}, fakeVouchers{s}, fakeCarts{s}, wallets, events, mem.NewLocks(), services.SettlementConfig{
		LockTTL:        time.Second,
		Tolerance:      decimal.RequireFromString("0.01"),
		LoyaltyDivisor: decimal.NewFromInt(100),
	}, log)

	payments := services.NewPaymentService(fakeOrders{s}, fakeUsers{s}, fakeVouchers{s}, wallets, settlement, gateway, signer, services.PaymentConfig{
		CheckURL:       checkURL,
		ResultURL:      resultURL,
		TopUpResultURL: topUpResultURL,
		SuccessURL:     successURL,
	}, log)

	return &fixture{
		store:      s,
		gateway:    gateway,
		events:     events,
		signer:     signer,
		wallets:    wallets,
		orders:     orders,
		settlement: settlement,
		payments:   payments,
	}
}

// signed returns params as the gateway would post them to script.
func (f *fixture) signed(params map[string]string, script string) map[string]string {
	params["pg_salt"] = "salt"
	params[freedompay.SignatureField] = f.signer.Sign(params, script)
	return params
}

// assertSignedReply checks the reply carries a valid signature for script.
func assertSignedReply(t *testing.T, f *fixture, reply *freedompay.Reply, script string) {
	t.Helper()
	if !f.signer.Verify(reply.SignedParams(), script) {
		t.Fatalf("reply %q is not signed for %s", reply.Description, script)
	}
}
