package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bookstore/internal/mocks"
	"bookstore/internal/models/request_models"
	resp "bookstore/internal/models/response_models"
	"bookstore/internal/services"
	"bookstore/pkg/utils"
)

func TestCartService(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	carts := services.NewCartService(fakeCarts{s}, fakeProducts{s})
	userID := uuid.New()
	a := s.addProduct("1000", false)
	b := s.addProduct("250.50", false)

	empty, err := carts.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, empty.Products)
	assert.True(t, empty.Total.IsZero())

	saved, err := carts.ReplaceCart(ctx, userID, []uuid.UUID{a, b, a})
	require.NoError(t, err)
	assert.Len(t, saved.Products, 2)
	assert.True(t, saved.Total.Equal(decimal.RequireFromString("1250.50")))

	got, err := carts.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, got.Products, 2)

	_, err = carts.ReplaceCart(ctx, userID, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, utils.ErrProductNotFound)
}

func TestProductService_ListProducts(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	products := services.NewProductService(fakeProducts{s})
	for i := 0; i < 3; i++ {
		s.addProduct("100", false)
	}

	page, err := products.ListProducts(ctx, request_models.ListQuery{Limit: 2}, "ebook")
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 2)

	_, err = products.ListProducts(ctx, request_models.ListQuery{}, "vinyl")
	assert.ErrorIs(t, err, utils.ErrInvalidFilter)

	_, err = products.ListProducts(ctx, request_models.ListQuery{Page: -1}, "")
	assert.ErrorIs(t, err, utils.ErrInvalidPage)
}

func TestUploadService(t *testing.T) {
	ctx := context.Background()

	t.Run("presign keeps only the extension", func(t *testing.T) {
		storage := new(mocks.MockStorage)
		storage.On("PresignUpload", mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "uploads/samples/") && strings.HasSuffix(key, ".mp3")
		}), "audio/mpeg").Return("https://bucket.example.com/signed", nil).Once()

		out, err := services.NewUploadService(storage).PresignUpload(ctx, request_models.PresignUploadRequest{
			FileName:    "../../Chapter One.MP3",
			ContentType: "audio/mpeg",
			Folder:      "samples",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://bucket.example.com/signed", out.UploadURL)
		assert.NotContains(t, out.Key, "..")
		storage.AssertExpectations(t)
	})

	t.Run("upload defaults to covers", func(t *testing.T) {
		storage := new(mocks.MockStorage)
		storage.On("Upload", mock.Anything, mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "uploads/covers/") && strings.HasSuffix(key, ".png")
		}), "image/png").Return("https://cdn.example.com/cover.png", nil).Once()

		url, err := services.NewUploadService(storage).Upload(ctx, "", "cover.png", "image/png", strings.NewReader("png"))
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/cover.png", url)
	})

	t.Run("storage errors are wrapped", func(t *testing.T) {
		storage := new(mocks.MockStorage)
		storage.On("Delete", mock.Anything, "uploads/covers/a.png").Return(errors.New("access denied")).Once()

		err := services.NewUploadService(storage).Delete(ctx, "uploads/covers/a.png")
		assert.ErrorIs(t, err, utils.ErrStorageError)
	})

	t.Run("delete refuses keys outside uploads", func(t *testing.T) {
		storage := new(mocks.MockStorage)
		svc := services.NewUploadService(storage)

		assert.ErrorIs(t, svc.Delete(ctx, "private/invoice.pdf"), utils.ErrInvalidKey)
		assert.ErrorIs(t, svc.Delete(ctx, "uploads/../private/invoice.pdf"), utils.ErrInvalidKey)
		storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestDashboardService_BuildDashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := f.store.addUser("reader@example.com")
	paid := placeOrder(t, f, userID, "1000")
	placeOrder(t, f, userID, "500")
	failed := placeOrder(t, f, userID, "700")

	_, err := f.settlement.Settle(ctx, paid, services.SettlementInput{TransactionID: "pg-1", PaymentMethod: "bankcard", PaymentAmount: paid.TotalAmount})
	require.NoError(t, err)
	_, err = fakeOrders{f.store}.MarkFailed(ctx, failed.ID, nil)
	require.NoError(t, err)

	dashboard := services.NewDashboardService(fakeDashboard{f.store}, "KZT", "PTS")
	report, err := dashboard.BuildDashboard(ctx, resp.TimeRange{Interval: "year"})
	require.NoError(t, err)

	assert.Equal(t, "day", report.Range.Interval)
	assert.WithinDuration(t, time.Now(), report.Range.End, time.Minute)
	assert.Equal(t, int64(3), report.KPIs.TotalOrders)
	assert.Equal(t, int64(1), report.KPIs.CompletedOrders)
	assert.Equal(t, int64(1), report.KPIs.PendingOrders)
	assert.Equal(t, int64(1), report.KPIs.FailedOrders)
	assert.InDelta(t, 50.0, report.KPIs.SuccessRatePct, 0.001)
	assert.Equal(t, int64(1), report.KPIs.TotalUsers)
	assert.Len(t, report.StatusMix, 3)
}
