package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/storefront/commerce-system/internal/core/domain"
	"github.com/storefront/commerce-system/internal/core/ports"
)

// stubOrderRepo commits against the backing user/product stubs the same way
// the real repository does: re-assert inventory and deposit, all-or-nothing.
type stubOrderRepo struct {
	mu       sync.Mutex
	nextID   int64
	orders   []domain.Order
	users    *stubUserRepo
	products *stubProductRepo

	forceStale int   // next N commits fail with ErrStaleState regardless of state
	placeErr   error // forced infrastructure failure
	commits    int
}

func newStubOrderRepo(users *stubUserRepo, products *stubProductRepo) *stubOrderRepo {
	return &stubOrderRepo{users: users, products: products}
}

func (r *stubOrderRepo) PlacePurchase(ctx context.Context, userID, productID int64, quantity int, totalCost decimal.Decimal) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.forceStale > 0 {
		r.forceStale--
		return 0, domain.ErrStaleState
	}
	if r.placeErr != nil {
		return 0, r.placeErr
	}

	if n, _ := r.products.AdjustInventory(ctx, productID, -quantity); n == 0 {
		return 0, domain.ErrStaleState
	}
	if n, _ := r.users.AdjustDeposit(ctx, userID, totalCost.Neg()); n == 0 {
		// Roll the inventory decrement back: the commit is all-or-nothing.
		_, _ = r.products.AdjustInventory(ctx, productID, quantity)
		return 0, domain.ErrStaleState
	}

	r.nextID++
	r.orders = append(r.orders, domain.Order{
		ID:        r.nextID,
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	})
	r.commits++
	return r.nextID, nil
}

func (r *stubOrderRepo) ListAll(_ context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Order(nil), r.orders...), nil
}

func (r *stubOrderRepo) ListByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == id {
			clone := o
			return &clone, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *stubOrderRepo) Delete(_ context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, o := range r.orders {
		if o.ID == id {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

type orderFixture struct {
	users    *stubUserRepo
	products *stubProductRepo
	orders   *stubOrderRepo
	cache    *stubCatalogCache
	svc      *OrderService
}

func newOrderFixture() *orderFixture {
	users := newStubUserRepo()
	products := newStubProductRepo()
	orders := newStubOrderRepo(users, products)
	cache := &stubCatalogCache{}
	return &orderFixture{
		users:    users,
		products: products,
		orders:   orders,
		cache:    cache,
		svc:      NewOrderService(users, products, orders, cache, zerolog.Nop()),
	}
}

func TestOrderService_Purchase_Success(t *testing.T) {
	f := newOrderFixture()
	buyer := f.users.seed(domain.User{Username: "alice", Role: domain.RoleUser, Deposit: decimal.NewFromInt(100)})
	widget := f.products.seed(domain.Product{Name: "widget", Price: decimal.RequireFromString("12.50"), Inventory: 5})

	result, err := f.svc.Purchase(context.Background(), ports.PurchaseInput{
		UserID:    buyer.ID,
		ProductID: widget.ID,
		Quantity:  2,
	})
	if err != nil {
		t.Fatalf("Purchase returned error: %v", err)
	}
	if result.OrderID == 0 {
		t.Fatalf("expected order id, got 0")
	}
	if !result.TotalCost.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected total 25, got %s", result.TotalCost)
	}

	freshUser, _ := f.users.FindByID(context.Background(), buyer.ID)
	if !freshUser.Deposit.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("expected deposit 75, got %s", freshUser.Deposit)
	}
	freshProduct, _ := f.products.FindByID(context.Background(), widget.ID)
	if freshProduct.Inventory != 3 {
		t.Fatalf("expected inventory 3, got %d", freshProduct.Inventory)
	}
	if f.orders.commits != 1 {
		t.Fatalf("expected exactly one order row, got %d", f.orders.commits)
	}
	if f.cache.invalidated != 1 {
		t.Fatalf("expected catalog cache invalidation, got %d", f.cache.invalidated)
	}
}

func TestOrderService_Purchase_InvalidQuantity(t *testing.T) {
	f := newOrderFixture()

	for _, qty := range []int{0, -1} {
		_, err := f.svc.Purchase(context.Background(), ports.PurchaseInput{UserID: 1, ProductID: 1, Quantity: qty})
		if !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Fatalf("quantity %d: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
}

func TestOrderService_Purchase_UserNotFound(t *testing.T) {
	f := newOrderFixture()
	widget := f.products.seed(domain.Product{Name: "widget", Price: decimal.NewFromInt(1), Inventory: 1})

	_, err := f.svc.Purchase(context.Background(), ports.PurchaseInput{UserID: 42, ProductID: widget.ID, Quantity: 1})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestOrderService_Purchase_ProductNotFound(t *testing.T) {
	f := newOrderFixture()
	buyer := f.users.seed(domain.User{Username: "alice", Deposit: decimal.NewFromInt(10)})

	_, err := f.svc.Purchase(context.Background(), ports.PurchaseInput{UserID: buyer.ID, ProductID: 42, Quantity: 1})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestOrderService_Purchase_InsufficientInventory(t *testing.T) {
	f := newOrderFixture()
	buyer := f.users.seed(domain.User{Username: "alice", Deposit: decimal.NewFromInt(100)})
	widget := f.products.seed(domain.Product{Name: "widget", Price: decimal.NewFromInt(1), Inventory: 2})

	_, err := f.svc.Purchase(context.Background(), ports.PurchaseInput{UserID: buyer.ID, ProductID: widget.ID, Quantity: 3})
	var inv *domain.InsufficientInventoryError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InsufficientInventoryError, got %v", err)
	}
	if inv.Available != 2 {
		t.Fatalf("expected available 2, got %d", inv.Available)
	}
}

func TestOrderService_Purchase_InsufficientDeposit(t *testing.T) {
	f := newOrderFixture()
	buyer := f.users.seed(domain.User{Username: "alice", Deposit: decimal.NewFromInt(5)})
	widget := f.products.seed(domain.Product{Name: "widget", Price: decimal.NewFromInt(3), Inventory: 10})

	_, err := f.svc.Purchase(context.Background(), ports.PurchaseInput{UserID: buyer.ID, ProductID: widget.ID, Quantity: 2})
	if !errors.Is(err, domain.ErrInsufficientDeposit) {
		t.Fatalf("expected ErrInsufficientDeposit, got %v", err)
	}
	if f.orders.commits != 0 {
		t.Fatalf("expected no order rows, got %d", f.orders.commits)
	}
}

func TestOrderService_Purchase_RetriesAfterConflict(t *testing.T) {
	f := newOrderFixture()
	buyer := f.users.seed(domain.User{Username: "alice", Deposit: decimal.NewFromInt(100)})
	widget := f.products.seed(domain.Product{Name: "widget", Price: decimal.NewFromInt(1), Inventory: 5})
	f.orders.forceStale = 1

	result, err := f.svc.Purchase(context.Background(), ports.PurchaseInput{UserID: buyer.ID, ProductID: widget.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if result.OrderID == 0 || f.orders.commits != 1 {
		t.Fatalf("expected one committed order after retry, got %d", f.orders.commits)
	}
}

func TestOrderService_Purchase_GivesUpAfterRepeatedConflicts(t *testing.T) {
	f := newOrderFixture()
	buyer := f.users.seed(domain.User{Username: "alice", Deposit: decimal.NewFromInt(100)})
	widget := f.products.seed(domain.Product{Name: "widget", Price: decimal.NewFromInt(1), Inventory: 5})
	f.orders.forceStale = purchaseAttempts

	_, err := f.svc.Purchase(context.Background(), ports.PurchaseInput{UserID: buyer.ID, ProductID: widget.ID, Quantity: 1})
	if !errors.Is(err, domain.ErrTransactionFailed) {
		t.Fatalf("expected ErrTransactionFailed, got %v", err)
	}
	if f.orders.commits != 0 {
		t.Fatalf("expected no committed orders, got %d", f.orders.commits)
	}
}

func TestOrderService_Purchase_InfrastructureFailure(t *testing.T) {
	f := newOrderFixture()
	buyer := f.users.seed(domain.User{Username: "alice", Deposit: decimal.NewFromInt(100)})
	widget := f.products.seed(domain.Product{Name: "widget", Price: decimal.NewFromInt(1), Inventory: 5})
	f.orders.placeErr = errors.New("connection reset")

	_, err := f.svc.Purchase(context.Background(), ports.PurchaseInput{UserID: buyer.ID, ProductID: widget.ID, Quantity: 1})
	if !errors.Is(err, domain.ErrTransactionFailed) {
		t.Fatalf("expected ErrTransactionFailed, got %v", err)
	}
}

// Two buyers race for the last unit: exactly one commit, and the loser is
// told the product ran out rather than getting a generic failure.
func TestOrderService_Purchase_ConcurrentLastUnit(t *testing.T) {
	f := newOrderFixture()
	alice := f.users.seed(domain.User{Username: "alice", Deposit: decimal.NewFromInt(100)})
	bob := f.users.seed(domain.User{Username: "bob", Deposit: decimal.NewFromInt(100)})
	widget := f.products.seed(domain.Product{Name: "widget", Price: decimal.NewFromInt(10), Inventory: 1})

	results := make(chan error, 2)
	for _, userID := range []int64{alice.ID, bob.ID} {
		go func(id int64) {
			_, err := f.svc.Purchase(context.Background(), ports.PurchaseInput{
				UserID:    id,
				ProductID: widget.ID,
				Quantity:  1,
			})
			results <- err
		}(userID)
	}

	var committed, rejected int
	for i := 0; i < 2; i++ {
		err := <-results
		switch {
		case err == nil:
			committed++
		default:
			var inv *domain.InsufficientInventoryError
			if !errors.As(err, &inv) {
				t.Fatalf("expected InsufficientInventoryError for the loser, got %v", err)
			}
			if inv.Available != 0 {
				t.Fatalf("expected available 0, got %d", inv.Available)
			}
			rejected++
		}
	}

	if committed != 1 || rejected != 1 {
		t.Fatalf("expected one commit and one rejection, got %d/%d", committed, rejected)
	}
	if f.orders.commits != 1 {
		t.Fatalf("expected exactly one order row, got %d", f.orders.commits)
	}
	freshProduct, _ := f.products.FindByID(context.Background(), widget.ID)
	if freshProduct.Inventory != 0 {
		t.Fatalf("expected inventory drained to 0, got %d", freshProduct.Inventory)
	}
}

func TestOrderService_Listings_EnrichProductName(t *testing.T) {
	f := newOrderFixture()
	buyer := f.users.seed(domain.User{Username: "alice", Deposit: decimal.NewFromInt(100)})
	widget := f.products.seed(domain.Product{Name: "widget", Price: decimal.NewFromInt(5), Inventory: 10})
	gadget := f.products.seed(domain.Product{Name: "gadget", Price: decimal.NewFromInt(5), Inventory: 10})

	for _, productID := range []int64{widget.ID, gadget.ID} {
		if _, err := f.svc.Purchase(context.Background(), ports.PurchaseInput{
			UserID: buyer.ID, ProductID: productID, Quantity: 1,
		}); err != nil {
			t.Fatalf("seed purchase failed: %v", err)
		}
	}

	// Deleting a product must not hide its historical orders.
	if _, err := f.products.Delete(context.Background(), gadget.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	details, err := f.svc.ListForUser(context.Background(), buyer.ID)
	if err != nil {
		t.Fatalf("ListForUser returned error: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(details))
	}
	names := map[int64]string{}
	for _, d := range details {
		names[d.ProductID] = d.ProductName
	}
	if names[widget.ID] != "widget" {
		t.Fatalf("expected live product name, got %q", names[widget.ID])
	}
	if names[gadget.ID] != "Unknown" {
		t.Fatalf("expected Unknown for deleted product, got %q", names[gadget.ID])
	}
}

func TestOrderService_Delete(t *testing.T) {
	f := newOrderFixture()
	buyer := f.users.seed(domain.User{Username: "alice", Deposit: decimal.NewFromInt(100)})
	widget := f.products.seed(domain.Product{Name: "widget", Price: decimal.NewFromInt(5), Inventory: 10})

	result, err := f.svc.Purchase(context.Background(), ports.PurchaseInput{UserID: buyer.ID, ProductID: widget.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("seed purchase failed: %v", err)
	}

	if err := f.svc.Delete(context.Background(), result.OrderID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := f.svc.Delete(context.Background(), result.OrderID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
