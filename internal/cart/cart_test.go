package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func productRef(name string, price string) ProductRef {
	return ProductRef{
		ProductID: uuid.New(),
		Name:      name,
		UnitPrice: decimal.RequireFromString(price),
	}
}

func TestAddItemAggregatesQuantity(t *testing.T) {
	store := NewStore()
	panela := productRef("Panela de Pressão", "89.90")

	store.AddItem(panela)
	store.AddItem(panela)

	snap := store.Snapshot()
	if len(snap.Items) != 1 {
		t.Fatalf("expected one line item, got %d", len(snap.Items))
	}
	if snap.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", snap.Items[0].Quantity)
	}
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	store := NewStore()
	jogo := productRef("Jogo de Toalhas", "59.90")
	store.AddItem(jogo)

	store.SetQuantity(jogo.ProductID, 0)

	snap := store.Snapshot()
	for _, item := range snap.Items {
		if item.ProductID == jogo.ProductID {
			t.Fatalf("line item should have been removed")
		}
	}
	if !store.IsEmpty() {
		t.Fatal("expected empty store")
	}
}

func TestSetQuantityNegativeRemovesLine(t *testing.T) {
	store := NewStore()
	item := productRef("Faqueiro Inox", "120.00")
	store.AddItem(item)

	store.SetQuantity(item.ProductID, -3)

	if !store.IsEmpty() {
		t.Fatal("negative quantity should remove the line item")
	}
}

func TestRemoveItemAbsentIsNoop(t *testing.T) {
	store := NewStore()
	store.AddItem(productRef("Escorredor de Louça", "35.00"))

	store.RemoveItem(uuid.New())

	if len(store.Snapshot().Items) != 1 {
		t.Fatal("removing an absent id must not change the cart")
	}
}

func TestSnapshotTotalsConsistency(t *testing.T) {
	store := NewStore()
	a := productRef("Caneca Esmaltada", "12.50")
	b := productRef("Tábua de Corte", "24.00")

	store.AddItem(a)
	store.AddItem(a)
	store.AddItem(b)
	store.SetQuantity(b.ProductID, 4)

	snap := store.Snapshot()

	wantItems := 0
	wantPrice := decimal.Zero
	for _, item := range snap.Items {
		wantItems += item.Quantity
		wantPrice = wantPrice.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if snap.TotalItems != wantItems {
		t.Fatalf("total items %d does not match sum %d", snap.TotalItems, wantItems)
	}
	if !snap.TotalPrice.Equal(wantPrice) {
		t.Fatalf("total price %s does not match sum %s", snap.TotalPrice, wantPrice)
	}
	if snap.TotalItems != 6 {
		t.Fatalf("expected 6 total items, got %d", snap.TotalItems)
	}
	if !snap.TotalPrice.Equal(decimal.RequireFromString("121.00")) {
		t.Fatalf("expected total 121.00, got %s", snap.TotalPrice)
	}
}

func TestSnapshotPreservesInsertionOrder(t *testing.T) {
	store := NewStore()
	first := productRef("Produto A", "1.00")
	second := productRef("Produto B", "2.00")
	third := productRef("Produto C", "3.00")

	store.AddItem(first)
	store.AddItem(second)
	store.AddItem(third)
	store.AddItem(first)

	snap := store.Snapshot()
	want := []uuid.UUID{first.ProductID, second.ProductID, third.ProductID}
	for i, id := range want {
		if snap.Items[i].ProductID != id {
			t.Fatalf("expected item %d to be %s, got %s", i, id, snap.Items[i].ProductID)
		}
	}
}

func TestSerializeRestoreRoundTrip(t *testing.T) {
	store := NewStore()
	a := productRef("Panela de Pressão", "89.90")
	b := productRef("Jogo de Toalhas", "59.90")
	store.AddItem(a)
	store.AddItem(a)
	store.AddItem(b)

	data, err := store.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	restored := Restore(data)
	before := store.Snapshot()
	after := restored.Snapshot()

	if len(before.Items) != len(after.Items) {
		t.Fatalf("expected %d items, got %d", len(before.Items), len(after.Items))
	}
	for i := range before.Items {
		if before.Items[i].ProductID != after.Items[i].ProductID {
			t.Fatalf("item %d id mismatch", i)
		}
		if before.Items[i].Quantity != after.Items[i].Quantity {
			t.Fatalf("item %d quantity mismatch", i)
		}
		if !before.Items[i].UnitPrice.Equal(after.Items[i].UnitPrice) {
			t.Fatalf("item %d unit price mismatch", i)
		}
	}
	if !before.TotalPrice.Equal(after.TotalPrice) {
		t.Fatalf("total price drifted across round trip")
	}
}

func TestRestoreMalformedDataYieldsEmptyCart(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte(""),
		[]byte("not-json"),
		[]byte(`{"items":`),
		[]byte(`[{"product_id":"not-a-uuid"}]`),
	}
	for _, data := range cases {
		store := Restore(data)
		if !store.IsEmpty() {
			t.Fatalf("expected empty cart for data %q", data)
		}
	}
}

func TestRestoreDropsInvalidLines(t *testing.T) {
	valid := uuid.New()
	data := []byte(`[
		{"product_id":"` + valid.String() + `","name":"Caneca","unit_price":"12.50","quantity":2},
		{"product_id":"` + valid.String() + `","name":"Duplicada","unit_price":"12.50","quantity":1},
		{"product_id":"` + uuid.New().String() + `","name":"Zerada","unit_price":"5.00","quantity":0},
		{"product_id":"` + uuid.New().String() + `","name":"Negativa","unit_price":"-1.00","quantity":1}
	]`)

	store := Restore(data)
	snap := store.Snapshot()
	if len(snap.Items) != 1 {
		t.Fatalf("expected one valid line, got %d", len(snap.Items))
	}
	if snap.Items[0].ProductID != valid || snap.Items[0].Quantity != 2 {
		t.Fatalf("unexpected surviving line: %+v", snap.Items[0])
	}
}

func TestClearEmptiesCart(t *testing.T) {
	store := NewStore()
	store.AddItem(productRef("Panela", "10.00"))
	store.AddItem(productRef("Toalha", "20.00"))

	store.Clear()

	snap := store.Snapshot()
	if len(snap.Items) != 0 || snap.TotalItems != 0 || !snap.TotalPrice.IsZero() {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}
