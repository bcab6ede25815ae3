package store

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/storefront/internal/db/dbtest"
	"github.com/vaughan-dsouza/storefront/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func seedUser(t *testing.T, db *sqlx.DB, email string) *models.User {
	t.Helper()
	ctx := context.Background()
	role, err := GetOrCreateRole(ctx, db, models.DefaultRole)
	if err != nil {
		t.Fatalf("role: %v", err)
	}
	u, err := CreateUser(ctx, db, email, "", role.ID)
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	return u
}

func seedProduct(t *testing.T, db *sqlx.DB, name string, price float64) *models.Product {
	t.Helper()
	ctx := context.Background()
	cat, err := FindCategoryByName(ctx, db, "tops")
	if errors.Is(err, ErrNotFound) {
		cat, err = CreateCategory(ctx, db, "tops")
	}
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	p, err := CreateProduct(ctx, db, NewProduct{
		Name: name, Price: price, Description: name + " description", Image: name, CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	return p
}

func TestGetOrCreateRoleIsIdempotent(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	first, err := GetOrCreateRole(ctx, db, models.DefaultRole)
	if err != nil {
		t.Fatal(err)
	}
	second, err := GetOrCreateRole(ctx, db, models.DefaultRole)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Fatalf("got two roles: %s and %s", first.ID, second.ID)
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM roles`); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("roles = %d, want 1", n)
	}
}

func TestCreateUserDuplicateEmailConflicts(t *testing.T) {
	db := dbtest.New(t)
	u := seedUser(t, db, "ada@example.com")

	_, err := CreateUser(context.Background(), db, "ada@example.com", "", u.RoleID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestAccountProviderIDIsUnique(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	ada := seedUser(t, db, "ada@example.com")
	bob := seedUser(t, db, "bob@example.com")

	if _, err := CreateAccount(ctx, db, "gh-1", models.ProviderGithub, ada.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateAccount(ctx, db, "gh-1", models.ProviderGithub, bob.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	a, err := FindAccountByProviderID(ctx, db, "gh-1")
	if err != nil {
		t.Fatal(err)
	}
	if a.UserID != ada.ID {
		t.Fatalf("account user = %s, want %s", a.UserID, ada.ID)
	}
}

func TestCreateProductValidatesCategoryAndName(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	seedProduct(t, db, "shirt", 20)

	_, err := CreateProduct(ctx, db, NewProduct{Name: "hat", Price: 5, Description: "d", Image: "i", CategoryID: "missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown category: err = %v, want ErrNotFound", err)
	}

	cat, err := FindCategoryByName(ctx, db, "tops")
	if err != nil {
		t.Fatal(err)
	}
	_, err = CreateProduct(ctx, db, NewProduct{Name: "shirt", Price: 5, Description: "d", Image: "i", CategoryID: cat.ID})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate name: err = %v, want ErrConflict", err)
	}

	products, err := ListProductsByCategory(ctx, db, cat.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 || products[0].Name != "shirt" {
		t.Fatalf("products = %+v", products)
	}
}

func TestAddToCartTwiceKeepsOneLine(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	u := seedUser(t, db, "ada@example.com")
	p := seedProduct(t, db, "shirt", 19.5)

	if _, err := AddToCart(ctx, db, u.ID, p.ID); err != nil {
		t.Fatal(err)
	}
	item, err := AddToCart(ctx, db, u.ID, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if item.Quantity != 2 {
		t.Fatalf("quantity = %d, want 2", item.Quantity)
	}
	if !almostEqual(item.Price, 39) {
		t.Fatalf("price = %v, want line total 39", item.Price)
	}

	items, err := ListCartItems(ctx, db, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}

	third, err := AddToCart(ctx, db, u.ID, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if third.Quantity != 3 || !almostEqual(third.Price, 58.5) {
		t.Fatalf("after third add: qty=%d price=%v", third.Quantity, third.Price)
	}
	if !almostEqual(third.UnitPrice(), 19.5) {
		t.Fatalf("unit price = %v", third.UnitPrice())
	}
}

func TestAddToCartUnknownProduct(t *testing.T) {
	db := dbtest.New(t)
	u := seedUser(t, db, "ada@example.com")

	_, err := AddToCart(context.Background(), db, u.ID, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := FindCart(context.Background(), db, u.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cart should not exist after rolled back add, err = %v", err)
	}
}

func TestAdjustCartItem(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	u := seedUser(t, db, "ada@example.com")
	p := seedProduct(t, db, "shirt", 10)

	item, err := AddToCart(ctx, db, u.ID, p.ID)
	if err != nil {
		t.Fatal(err)
	}

	got, err := AdjustCartItem(ctx, db, u.ID, item.ID, false, true)
	if err != nil {
		t.Fatal(err)
	}
	if got.Quantity != 1 || !almostEqual(got.Price, 10) {
		t.Fatalf("minus at 1: qty=%d price=%v, want 1/10", got.Quantity, got.Price)
	}

	got, err = AdjustCartItem(ctx, db, u.ID, item.ID, true, false)
	if err != nil {
		t.Fatal(err)
	}
	got, err = AdjustCartItem(ctx, db, u.ID, item.ID, true, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Quantity != 3 || !almostEqual(got.Price, 30) {
		t.Fatalf("after two adds: qty=%d price=%v, want 3/30", got.Quantity, got.Price)
	}

	got, err = AdjustCartItem(ctx, db, u.ID, item.ID, false, true)
	if err != nil {
		t.Fatal(err)
	}
	if got.Quantity != 2 || !almostEqual(got.Price, 20) {
		t.Fatalf("after minus: qty=%d price=%v, want 2/20", got.Quantity, got.Price)
	}

	other := seedUser(t, db, "bob@example.com")
	if _, err := AdjustCartItem(ctx, db, other.ID, item.ID, true, false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign item: err = %v, want ErrNotFound", err)
	}
	got, err = GetCartItem(ctx, db, u.ID, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Quantity != 2 {
		t.Fatalf("foreign adjust changed quantity to %d", got.Quantity)
	}
}

func TestCartLineTotalsStayInCents(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	u := seedUser(t, db, "ada@example.com")
	p := seedProduct(t, db, "button", 0.1)

	var item *models.CartItem
	for i := 0; i < 3; i++ {
		var err error
		if item, err = AddToCart(ctx, db, u.ID, p.ID); err != nil {
			t.Fatal(err)
		}
	}
	if item.Quantity != 3 || item.Price != 0.3 {
		t.Fatalf("after three adds: qty=%d price=%v, want 3/0.3", item.Quantity, item.Price)
	}

	steps := []struct {
		add, minus bool
		qty        int
		price      float64
	}{
		{add: true, qty: 4, price: 0.4},
		{add: true, qty: 5, price: 0.5},
		{minus: true, qty: 4, price: 0.4},
		{minus: true, qty: 3, price: 0.3},
		{add: true, qty: 4, price: 0.4},
		{add: true, qty: 5, price: 0.5},
		{add: true, qty: 6, price: 0.6},
		{add: true, qty: 7, price: 0.7},
	}
	for _, s := range steps {
		got, err := AdjustCartItem(ctx, db, u.ID, item.ID, s.add, s.minus)
		if err != nil {
			t.Fatal(err)
		}
		if got.Quantity != s.qty || got.Price != s.price {
			t.Fatalf("qty=%d price=%v, want %d/%v", got.Quantity, got.Price, s.qty, s.price)
		}
	}

	thread, err := CreateProduct(ctx, db, NewProduct{
		Name: "thread", Price: 1.005 + 1e-9, Description: "d", Image: "i", CategoryID: p.CategoryID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if thread.Price != 1.01 {
		t.Fatalf("product price = %v, want 1.01", thread.Price)
	}
}

func TestDeleteCartItem(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	u := seedUser(t, db, "ada@example.com")
	shirt := seedProduct(t, db, "shirt", 10)
	hat := seedProduct(t, db, "hat", 5)

	item, err := AddToCart(ctx, db, u.ID, shirt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := AddToCart(ctx, db, u.ID, hat.ID); err != nil {
		t.Fatal(err)
	}

	if err := DeleteCartItem(ctx, db, u.ID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	items, _ := ListCartItems(ctx, db, u.ID)
	if len(items) != 2 {
		t.Fatalf("missing delete changed cart: %d items", len(items))
	}

	if err := DeleteCartItem(ctx, db, u.ID, item.ID); err != nil {
		t.Fatal(err)
	}
	items, _ = ListCartItems(ctx, db, u.ID)
	if len(items) != 1 || items[0].Name != "hat" {
		t.Fatalf("items = %+v", items)
	}

	if _, err := FindCart(ctx, db, u.ID); err != nil {
		t.Fatalf("cart should survive: %v", err)
	}
}

func TestListCartItemsWithoutCart(t *testing.T) {
	db := dbtest.New(t)
	u := seedUser(t, db, "ada@example.com")

	items, err := ListCartItems(context.Background(), db, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("items = %#v, want empty slice", items)
	}
}
