package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sharpstore/pos-backend/internal/models"
)

func commitSale(t *testing.T, svc *InvoiceService, lines []CartLine) *CommitResult {
	t.Helper()
	res, err := svc.Commit(context.Background(), CommitRequest{Lines: lines})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return res
}

func TestCreateReturnRestocks(t *testing.T) {
	db := setupServiceTestDB(t)
	p := seedProduct(t, db, "Returnable", "40.00", 10)
	invSvc := NewInvoiceService(db)
	retSvc := NewReturnService(db)

	sale := commitSale(t, invSvc, []CartLine{{ProductID: p.ID, Quantity: 3}})

	res, err := retSvc.CreateReturn(context.Background(), ReturnRequest{
		InvoiceID:    sale.InvoiceID,
		CustomerName: "Walk-in",
		Lines:        []ReturnLine{{ProductID: p.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create return: %v", err)
	}
	if !strings.HasPrefix(res.ReturnCode, "RET-") {
		t.Fatalf("return code = %q", res.ReturnCode)
	}
	if !res.TotalAmount.Equal(dec(t, "80.00")) {
		t.Fatalf("refund = %s, want 80.00", res.TotalAmount)
	}

	got := reloadProduct(t, db, p.ID)
	if got.QuantityOnHand != 9 || got.QuantitySold != 1 {
		t.Fatalf("on_hand=%d sold=%d, want 9/1", got.QuantityOnHand, got.QuantitySold)
	}

	ret, err := retSvc.GetReturn(context.Background(), res.ReturnID)
	if err != nil {
		t.Fatalf("get return: %v", err)
	}
	if len(ret.Items) != 1 || ret.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", ret.Items)
	}
}

func TestCreateReturnRefundsSnapshotPrice(t *testing.T) {
	db := setupServiceTestDB(t)
	p := seedProduct(t, db, "Repriced", "15.00", 10)
	invSvc := NewInvoiceService(db)
	retSvc := NewReturnService(db)

	sale := commitSale(t, invSvc, []CartLine{{ProductID: p.ID, Quantity: 1}})

	// Raising the catalog price must not inflate the refund.
	if err := db.Model(&models.Product{}).Where("id = ?", p.ID).
		Update("unit_price", dec(t, "99.00")).Error; err != nil {
		t.Fatalf("reprice: %v", err)
	}
	res, err := retSvc.CreateReturn(context.Background(), ReturnRequest{
		InvoiceID: sale.InvoiceID,
		Lines:     []ReturnLine{{ProductID: p.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create return: %v", err)
	}
	if !res.TotalAmount.Equal(dec(t, "15.00")) {
		t.Fatalf("refund = %s, want snapshot price 15.00", res.TotalAmount)
	}
}

func TestCreateReturnCumulativeGuard(t *testing.T) {
	db := setupServiceTestDB(t)
	p := seedProduct(t, db, "Guarded", "10.00", 10)
	invSvc := NewInvoiceService(db)
	retSvc := NewReturnService(db)

	sale := commitSale(t, invSvc, []CartLine{{ProductID: p.ID, Quantity: 3}})

	if _, err := retSvc.CreateReturn(context.Background(), ReturnRequest{
		InvoiceID: sale.InvoiceID,
		Lines:     []ReturnLine{{ProductID: p.ID, Quantity: 2}},
	}); err != nil {
		t.Fatalf("first return: %v", err)
	}
	// 2 already returned of 3 invoiced; asking for 2 more must fail.
	_, err := retSvc.CreateReturn(context.Background(), ReturnRequest{
		InvoiceID: sale.InvoiceID,
		Lines:     []ReturnLine{{ProductID: p.ID, Quantity: 2}},
	})
	var exceeds *ReturnExceedsInvoiceError
	if !errors.As(err, &exceeds) {
		t.Fatalf("got %v, want ReturnExceedsInvoiceError", err)
	}
	if exceeds.Invoiced != 3 || exceeds.AlreadyReturned != 2 || exceeds.Requested != 2 {
		t.Fatalf("unexpected detail: %+v", exceeds)
	}
	// the failed return must not have restocked anything
	got := reloadProduct(t, db, p.ID)
	if got.QuantityOnHand != 9 || got.QuantitySold != 1 {
		t.Fatalf("on_hand=%d sold=%d after failed return, want 9/1", got.QuantityOnHand, got.QuantitySold)
	}
}

func TestCreateReturnDuplicateLinesCountTogether(t *testing.T) {
	db := setupServiceTestDB(t)
	p := seedProduct(t, db, "Split Lines", "10.00", 20)
	invSvc := NewInvoiceService(db)
	retSvc := NewReturnService(db)

	sale := commitSale(t, invSvc, []CartLine{{ProductID: p.ID, Quantity: 3}})
	// A second sale keeps quantity_sold high enough that only the
	// per-invoice cap can reject the oversized return.
	commitSale(t, invSvc, []CartLine{{ProductID: p.ID, Quantity: 5}})

	// 2+2 across two lines exceeds the 3 invoiced units even though each
	// line alone would pass.
	_, err := retSvc.CreateReturn(context.Background(), ReturnRequest{
		InvoiceID: sale.InvoiceID,
		Lines: []ReturnLine{
			{ProductID: p.ID, Quantity: 2},
			{ProductID: p.ID, Quantity: 2},
		},
	})
	var exceeds *ReturnExceedsInvoiceError
	if !errors.As(err, &exceeds) {
		t.Fatalf("got %v, want ReturnExceedsInvoiceError", err)
	}
	if exceeds.Invoiced != 3 || exceeds.AlreadyReturned != 2 || exceeds.Requested != 2 {
		t.Fatalf("unexpected detail: %+v", exceeds)
	}
	got := reloadProduct(t, db, p.ID)
	if got.QuantityOnHand != 12 || got.QuantitySold != 8 {
		t.Fatalf("on_hand=%d sold=%d after rejected return, want 12/8", got.QuantityOnHand, got.QuantitySold)
	}

	// 2+1 split across two lines is exactly the invoiced quantity and
	// must still go through.
	res, err := retSvc.CreateReturn(context.Background(), ReturnRequest{
		InvoiceID: sale.InvoiceID,
		Lines: []ReturnLine{
			{ProductID: p.ID, Quantity: 2},
			{ProductID: p.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("split return: %v", err)
	}
	if !res.TotalAmount.Equal(dec(t, "30.00")) {
		t.Fatalf("refund = %s, want 30.00", res.TotalAmount)
	}
	got = reloadProduct(t, db, p.ID)
	if got.QuantityOnHand != 15 || got.QuantitySold != 5 {
		t.Fatalf("on_hand=%d sold=%d after split return, want 15/5", got.QuantityOnHand, got.QuantitySold)
	}
}

func TestCreateReturnRejections(t *testing.T) {
	db := setupServiceTestDB(t)
	p := seedProduct(t, db, "Sold", "10.00", 10)
	other := seedProduct(t, db, "Never Sold", "10.00", 10)
	invSvc := NewInvoiceService(db)
	retSvc := NewReturnService(db)

	sale := commitSale(t, invSvc, []CartLine{{ProductID: p.ID, Quantity: 1}})

	if _, err := retSvc.CreateReturn(context.Background(), ReturnRequest{
		InvoiceID: 999,
		Lines:     []ReturnLine{{ProductID: p.ID, Quantity: 1}},
	}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown invoice: got %v, want ErrNotFound", err)
	}
	if _, err := retSvc.CreateReturn(context.Background(), ReturnRequest{
		InvoiceID: sale.InvoiceID,
		Lines:     []ReturnLine{{ProductID: other.ID, Quantity: 1}},
	}); !errors.Is(err, &ProductNotFoundError{}) {
		t.Fatalf("product not on invoice: got %v, want ProductNotFoundError", err)
	}
	if _, err := retSvc.CreateReturn(context.Background(), ReturnRequest{
		InvoiceID: sale.InvoiceID,
	}); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("no lines: got %v, want ErrEmptyCart", err)
	}
}

func TestListReturns(t *testing.T) {
	db := setupServiceTestDB(t)
	p := seedProduct(t, db, "Listed", "5.00", 10)
	invSvc := NewInvoiceService(db)
	retSvc := NewReturnService(db)

	sale := commitSale(t, invSvc, []CartLine{{ProductID: p.ID, Quantity: 2}})
	for i := 0; i < 2; i++ {
		if _, err := retSvc.CreateReturn(context.Background(), ReturnRequest{
			InvoiceID: sale.InvoiceID,
			Lines:     []ReturnLine{{ProductID: p.ID, Quantity: 1}},
		}); err != nil {
			t.Fatalf("return %d: %v", i, err)
		}
	}
	rets, total, err := retSvc.ListReturns(context.Background(), 50, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(rets) != 2 {
		t.Fatalf("total=%d len=%d, want 2/2", total, len(rets))
	}
}
