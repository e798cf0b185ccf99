package repositories_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	dbm "bookstore/internal/models/db_models"
	"bookstore/internal/models/request_models"
	"bookstore/internal/repositories"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestBuildQuery_MultilingualSearch(t *testing.T) {
	f := repositories.BuildQuery(
		request_models.ListQuery{Description: "abai"},
		repositories.ProductSearchFields,
		repositories.ProductSortColumns,
	)

	assert.Equal(t, []string{
		"title->>'en' ILIKE ?",
		"title->>'ru' ILIKE ?",
		"title->>'kk' ILIKE ?",
		"author ILIKE ?",
	}, f.Conditions)
	assert.Len(t, f.Args, 4)
	assert.Equal(t, "%abai%", f.Args[0])
	assert.Equal(t, "(title->>'en' ILIKE ? OR title->>'ru' ILIKE ? OR title->>'kk' ILIKE ? OR author ILIKE ?)", f.Where())
	assert.Empty(t, f.Sort)
}

func TestBuildQuery_EscapesWildcards(t *testing.T) {
	f := repositories.BuildQuery(
		request_models.ListQuery{Description: " 50%_off "},
		[]repositories.SearchField{{Column: "identifier"}},
		nil,
	)
	assert.Equal(t, []interface{}{`%50\%\_off%`}, f.Args)
}

func TestBuildQuery_Sort(t *testing.T) {
	cases := []struct {
		name   string
		params request_models.ListQuery
		want   string
	}{
		{"default direction is desc", request_models.ListQuery{OrderColumn: "price"}, "price DESC"},
		{"asc", request_models.ListQuery{OrderColumn: "price", Order: "ASC"}, "price ASC"},
		{"public name is mapped", request_models.ListQuery{OrderColumn: "createdAt", Order: "asc"}, "created_at ASC"},
		{"unknown column is ignored", request_models.ListQuery{OrderColumn: "price; DROP TABLE products", Order: "asc"}, ""},
		{"no column", request_models.ListQuery{Order: "asc"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := repositories.BuildQuery(tc.params, nil, repositories.ProductSortColumns)
			assert.Equal(t, tc.want, f.Sort)
			assert.Empty(t, f.Where())
		})
	}
}

func TestOrderFindByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewOrderRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	o, err := repo.FindByID(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, o)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderMarkCompleted(t *testing.T) {
	rec := repositories.PaymentRecord{
		TransactionID: "987654",
		PaymentMethod: "bankcard",
		PaymentAmount: decimal.NewFromInt(3000),
		CompletedAt:   1700000000,
		Payload:       datatypes.JSON(`{"pg_result":"1"}`),
	}

	t.Run("pending order transitions", func(t *testing.T) {
		gormDB, mock := setupMockDB(t)
		repo := repositories.NewOrderRepository(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		ok, err := repo.MarkCompleted(context.Background(), uuid.New(), rec)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already settled order is untouched", func(t *testing.T) {
		gormDB, mock := setupMockDB(t)
		repo := repositories.NewOrderRepository(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		ok, err := repo.MarkCompleted(context.Background(), uuid.New(), rec)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestOrderList_CountsThenPages(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewOrderRepository(gormDB)

	filter := repositories.BuildQuery(
		request_models.ListQuery{Description: "1234"},
		repositories.OrderSearchFields,
		repositories.OrderSortColumns,
	)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	orders, total, err := repo.List(context.Background(), filter, string(dbm.OrderStatusPending), 1, 20)
	assert.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, int64(0), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoucherIncrementActivation(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewVoucherRepository(gormDB)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "discount_vouchers" SET "activation_count"=activation_count \+ \$1 WHERE .*id = \$2 AND \(activation_limit = 0 OR activation_count < activation_limit\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	counted, err := repo.IncrementActivation(context.Background(), id)
	assert.NoError(t, err)
	assert.True(t, counted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoucherIncrementActivation_LimitReached(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewVoucherRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`activation_count < activation_limit`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	counted, err := repo.IncrementActivation(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.False(t, counted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletAdjustBalance(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewWalletRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "wallets" SET "balance"=balance + $1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.AdjustBalance(context.Background(), uuid.New(), decimal.NewFromInt(-250)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletFindTransactionByReference_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewWalletRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "wallet_transactions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	txn, err := repo.FindTransactionByReference(context.Background(), "WABCDEFGHIJKLMNO")
	assert.NoError(t, err)
	assert.Nil(t, txn)
}

func TestWalletUpdateTransactionStatus_NotPending(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewWalletRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "wallet_transactions" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ok, err := repo.UpdateTransactionStatus(context.Background(), uuid.New(),
		dbm.WalletTxnPending, dbm.WalletTxnCompleted, "555")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestReadProgressCreateMissing_NoProducts(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewReadProgressRepository(gormDB)

	assert.NoError(t, repo.CreateMissing(context.Background(), uuid.New(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardCountTotalUsers(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewDashboardRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := repo.CountTotalUsers(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
