package services_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	dbm "bookstore/internal/models/db_models"
	"bookstore/internal/repositories"
)

// store is an in-memory stand-in for Postgres and Redis. The fake
// transactor snapshots it so a failed transaction leaves no trace.
type store struct {
	mu sync.Mutex

	orders   map[uuid.UUID]dbm.Order
	products map[uuid.UUID]dbm.Product
	vouchers map[uuid.UUID]dbm.DiscountVoucher
	progress map[[2]uuid.UUID]bool
	wallets  map[uuid.UUID]dbm.Wallet
	txns     map[uuid.UUID]dbm.WalletTransaction
	users    map[uuid.UUID]dbm.User
	carts    map[string]dbm.Cart
}

func newStore() *store {
	return &store{
		orders:   map[uuid.UUID]dbm.Order{},
		products: map[uuid.UUID]dbm.Product{},
		vouchers: map[uuid.UUID]dbm.DiscountVoucher{},
		progress: map[[2]uuid.UUID]bool{},
		wallets:  map[uuid.UUID]dbm.Wallet{},
		txns:     map[uuid.UUID]dbm.WalletTransaction{},
		users:    map[uuid.UUID]dbm.User{},
		carts:    map[string]dbm.Cart{},
	}
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *store) snapshot() *store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &store{
		orders:   cloneMap(s.orders),
		products: cloneMap(s.products),
		vouchers: cloneMap(s.vouchers),
		progress: cloneMap(s.progress),
		wallets:  cloneMap(s.wallets),
		txns:     cloneMap(s.txns),
		users:    cloneMap(s.users),
		carts:    cloneMap(s.carts),
	}
}

func (s *store) restore(from *store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = from.orders
	s.products = from.products
	s.vouchers = from.vouchers
	s.progress = from.progress
	s.wallets = from.wallets
	s.txns = from.txns
	s.users = from.users
	s.carts = from.carts
}

// ---------- seed helpers ----------

func (s *store) addUser(email string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.users[id] = dbm.User{BaseModel: dbm.BaseModel{ID: id}, Email: email, Phone: "+77010000000"}
	return id
}

func (s *store) addProduct(price string, discounted bool) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.products[id] = dbm.Product{
		BaseModel:    dbm.BaseModel{ID: id, CreatedAt: time.Now().Unix()},
		Title:        datatypes.JSON(`{"en":"Book"}`),
		Author:       "Author",
		Kind:         dbm.ProductEbook,
		Price:        decimal.RequireFromString(price),
		IsDiscounted: discounted,
		IsPublished:  true,
	}
	return id
}

func (s *store) addVoucher(percent, limit, count int) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.vouchers[id] = dbm.DiscountVoucher{
		BaseModel:       dbm.BaseModel{ID: id},
		Code:            "CODE" + id.String()[:4],
		DiscountPercent: percent,
		ActivationLimit: limit,
		ActivationCount: count,
		IsActive:        true,
	}
	return id
}

func (s *store) addWallet(userID uuid.UUID, currency, balance string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.wallets[id] = dbm.Wallet{
		BaseModel: dbm.BaseModel{ID: id},
		UserID:    userID,
		Currency:  currency,
		Balance:   decimal.RequireFromString(balance),
		IsActive:  true,
	}
	return id
}

func (s *store) balance(userID uuid.UUID, currency string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.wallets {
		if w.UserID == userID && w.Currency == currency {
			return w.Balance
		}
	}
	return decimal.Zero
}

func (s *store) order(id uuid.UUID) dbm.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id]
}

func (s *store) voucher(id uuid.UUID) dbm.DiscountVoucher {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vouchers[id]
}

func (s *store) transactionsOf(userID uuid.UUID) []dbm.WalletTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []dbm.WalletTransaction
	for _, t := range s.txns {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

func (s *store) granted(userID, productID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress[[2]uuid.UUID{userID, productID}]
}

// ---------- transactor ----------

type fakeTransactor struct{ s *store }

func (t fakeTransactor) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	snap := t.s.snapshot()
	if err := fn(nil); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

// ---------- orders ----------

type fakeOrders struct{ s *store }

func (r fakeOrders) WithTx(*gorm.DB) repositories.OrderRepository { return r }

func (r fakeOrders) Create(_ context.Context, o *dbm.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.orders {
		if existing.Identifier == o.Identifier {
			return errors.New("duplicate identifier")
		}
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = time.Now().Unix()
	r.s.orders[o.ID] = *o
	return nil
}

func (r fakeOrders) FindByID(_ context.Context, id uuid.UUID) (*dbm.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r fakeOrders) FindByIdentifier(_ context.Context, identifier string) (*dbm.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.Identifier == identifier {
			return &o, nil
		}
	}
	return nil, nil
}

func (r fakeOrders) ExistsIdentifier(ctx context.Context, identifier string) (bool, error) {
	o, _ := r.FindByIdentifier(ctx, identifier)
	return o != nil, nil
}

func (r fakeOrders) Update(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "payment_method":
			o.PaymentMethod = v.(string)
		case "transaction_id":
			o.TransactionID = v.(string)
		case "total_amount":
			o.TotalAmount = v.(decimal.Decimal)
		case "redeem_points":
			o.RedeemPoints = v.(int64)
		}
	}
	r.s.orders[id] = o
	return nil
}

func (r fakeOrders) MarkCompleted(_ context.Context, id uuid.UUID, rec repositories.PaymentRecord) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok || o.Status != dbm.OrderStatusPending {
		return false, nil
	}
	o.Status = dbm.OrderStatusCompleted
	o.TransactionID = rec.TransactionID
	o.PaymentMethod = rec.PaymentMethod
	o.PaymentAmount = decimal.NewNullDecimal(rec.PaymentAmount)
	o.PaymentCompletedAt = &rec.CompletedAt
	o.SettledAt = &rec.CompletedAt
	o.PaymentGatewayResponse = rec.Payload
	r.s.orders[id] = o
	return true, nil
}

func (r fakeOrders) MarkFailed(_ context.Context, id uuid.UUID, payload datatypes.JSON) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok || o.Status != dbm.OrderStatusPending {
		return false, nil
	}
	o.Status = dbm.OrderStatusFailed
	o.PaymentGatewayResponse = payload
	r.s.orders[id] = o
	return true, nil
}

func (r fakeOrders) List(_ context.Context, _ repositories.QueryFilter, status string, page, limit int) ([]dbm.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []dbm.Order
	for _, o := range r.s.orders {
		if status == "" || string(o.Status) == status {
			all = append(all, o)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Identifier < all[j].Identifier })
	return paginate(all, page, limit), int64(len(all)), nil
}

func paginate[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// ---------- products ----------

type fakeProducts struct{ s *store }

func (r fakeProducts) FindByIDs(_ context.Context, ids []uuid.UUID) ([]dbm.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []dbm.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok && p.IsPublished {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r fakeProducts) List(_ context.Context, _ repositories.QueryFilter, kind string, page, limit int) ([]dbm.Product, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []dbm.Product
	for _, p := range r.s.products {
		if p.IsPublished && (kind == "" || string(p.Kind) == kind) {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	return paginate(all, page, limit), int64(len(all)), nil
}

// ---------- vouchers ----------

type fakeVouchers struct{ s *store }

func (r fakeVouchers) WithTx(*gorm.DB) repositories.VoucherRepository { return r }

func (r fakeVouchers) FindByID(_ context.Context, id uuid.UUID) (*dbm.DiscountVoucher, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vouchers[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r fakeVouchers) IncrementActivation(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vouchers[id]
	if !ok || v.LimitReached() {
		return false, nil
	}
	v.ActivationCount++
	r.s.vouchers[id] = v
	return true, nil
}

// ---------- read progress ----------

type fakeProgress struct{ s *store }

func (r fakeProgress) WithTx(*gorm.DB) repositories.ReadProgressRepository { return r }

func (r fakeProgress) CreateMissing(_ context.Context, userID uuid.UUID, productIDs []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range productIDs {
		r.s.progress[[2]uuid.UUID{userID, id}] = true
	}
	return nil
}

// ---------- users ----------

type fakeUsers struct{ s *store }

func (r fakeUsers) FindById(_ context.Context, id uuid.UUID) (*dbm.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// ---------- carts ----------

type fakeCarts struct{ s *store }

func (r fakeCarts) GetCart(_ context.Context, userID string) (*dbm.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.carts[userID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r fakeCarts) SaveCart(_ context.Context, cart *dbm.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.carts[cart.UserID] = *cart
	return nil
}

func (r fakeCarts) DeleteCart(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.carts, userID)
	return nil
}

// ---------- wallets ----------

type fakeWallets struct{ s *store }

func (r fakeWallets) WithTx(*gorm.DB) repositories.WalletRepository { return r }

func (r fakeWallets) FindByUser(_ context.Context, userID uuid.UUID, currency string) (*dbm.Wallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.wallets {
		if w.UserID == userID && w.Currency == currency {
			return &w, nil
		}
	}
	return nil, nil
}

func (r fakeWallets) FindByUserForUpdate(ctx context.Context, userID uuid.UUID, currency string) (*dbm.Wallet, error) {
	return r.FindByUser(ctx, userID, currency)
}

func (r fakeWallets) Create(ctx context.Context, w *dbm.Wallet) error {
	if existing, _ := r.FindByUser(ctx, w.UserID, w.Currency); existing != nil {
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	r.s.wallets[w.ID] = *w
	return nil
}

var errBalanceCheck = errors.New(`violates check constraint "chk_wallet_balance_non_negative"`)

func (r fakeWallets) AdjustBalance(_ context.Context, walletID uuid.UUID, delta decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wallets[walletID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	next := w.Balance.Add(delta)
	if next.IsNegative() {
		return errBalanceCheck
	}
	w.Balance = next
	r.s.wallets[walletID] = w
	return nil
}

func (r fakeWallets) CreateTransaction(_ context.Context, txn *dbm.WalletTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.txns {
		if t.Reference == txn.Reference {
			return errors.New("duplicate reference")
		}
	}
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	txn.CreatedAt = time.Now().Unix()
	r.s.txns[txn.ID] = *txn
	return nil
}

func (r fakeWallets) FindTransactionByReference(_ context.Context, reference string) (*dbm.WalletTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.txns {
		if t.Reference == reference {
			return &t, nil
		}
	}
	return nil, nil
}

func (r fakeWallets) UpdateTransactionStatus(_ context.Context, id uuid.UUID, from, to dbm.WalletTxnStatus, externalID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.txns[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	if externalID != "" {
		t.TransactionID = externalID
	}
	r.s.txns[id] = t
	return true, nil
}

func (r fakeWallets) UpdateTransactionMetadata(_ context.Context, id uuid.UUID, metadata datatypes.JSON) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.txns[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Metadata = metadata
	r.s.txns[id] = t
	return nil
}

func (r fakeWallets) ListTransactions(_ context.Context, userID uuid.UUID, page, limit int) ([]dbm.WalletTransaction, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []dbm.WalletTransaction
	for _, t := range r.s.txns {
		if t.UserID == userID {
			all = append(all, t)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Reference < all[j].Reference })
	return paginate(all, page, limit), int64(len(all)), nil
}

// ---------- dashboard ----------

// fakeDashboard answers StatusMix from the order map; the other
// aggregates are covered by the sqlmock repository tests.
type fakeDashboard struct{ s *store }

func (r fakeDashboard) CountTotalUsers(context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

func (r fakeDashboard) CountBuyers(context.Context, time.Time, time.Time) (int64, error) {
	return 0, nil
}

func (r fakeDashboard) StatusMix(context.Context, time.Time, time.Time) ([]repositories.StatusRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byStatus := map[string]*repositories.StatusRow{}
	for _, o := range r.s.orders {
		row, ok := byStatus[string(o.Status)]
		if !ok {
			row = &repositories.StatusRow{Status: string(o.Status), Amount: decimal.Zero}
			byStatus[string(o.Status)] = row
		}
		row.Count++
		row.Amount = row.Amount.Add(o.TotalAmount)
	}
	out := make([]repositories.StatusRow, 0, len(byStatus))
	for _, row := range byStatus {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

func (r fakeDashboard) WalletFloat(context.Context, string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (r fakeDashboard) RevenueSeries(context.Context, time.Time, time.Time, string, string) ([]repositories.BucketSum, error) {
	return nil, nil
}

func (r fakeDashboard) OrdersSeries(context.Context, time.Time, time.Time, string, string) ([]repositories.BucketCount, error) {
	return nil, nil
}

func (r fakeDashboard) TopProducts(context.Context, time.Time, time.Time, int) ([]repositories.TopProductRow, error) {
	return nil, nil
}

func (r fakeDashboard) RecentPayments(context.Context, int) ([]repositories.RecentPaymentRow, error) {
	return nil, nil
}
