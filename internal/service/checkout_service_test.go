package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mallfront/internal/client"
	"github.com/mallfront/internal/constants"
	"github.com/mallfront/internal/models"
	"github.com/mallfront/internal/repository"
	"github.com/mallfront/internal/store"
)

type fakeOrderSubmitter struct {
	result   *client.OrderCreateResult
	err      error
	requests []client.OrderCreateInput
}

func (f *fakeOrderSubmitter) CreateOrder(_ context.Context, input client.OrderCreateInput) (*client.OrderCreateResult, error) {
	f.requests = append(f.requests, input)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeNotifier struct {
	receiptIDs []uint
}

func (f *fakeNotifier) EnqueueOrderPlacedNotify(_ context.Context, receiptID uint) error {
	f.receiptIDs = append(f.receiptIDs, receiptID)
	return nil
}

func newCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:checkout_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.OrderReceipt{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func newCheckoutFixture(t *testing.T, orders *fakeOrderSubmitter) (*CheckoutService, *CartService, *fakeNotifier, repository.ReceiptRepository) {
	t.Helper()
	cart := NewCartService(store.NewMemStore(), "CNY")
	receipts := repository.NewReceiptRepository(newCheckoutTestDB(t))
	notifier := &fakeNotifier{}
	checkout := NewCheckoutService(cart, orders, receipts, notifier)
	return checkout, cart, notifier, receipts
}

func TestCheckoutBeginRequiresSelectedItems(t *testing.T) {
	checkout, cart, _, _ := newCheckoutFixture(t, &fakeOrderSubmitter{})
	ctx := context.Background()

	if err := checkout.Begin(ctx, 1); !errors.Is(err, ErrNoSelectedItems) {
		t.Fatalf("expected ErrNoSelectedItems for empty cart, got %v", err)
	}

	addTestItem(t, cart, 1, "p1", "10.00", 1)
	if _, err := cart.ToggleSelect(ctx, 1, "p1"); err != nil {
		t.Fatalf("deselect item: %v", err)
	}
	if err := checkout.Begin(ctx, 1); !errors.Is(err, ErrNoSelectedItems) {
		t.Fatalf("expected ErrNoSelectedItems when nothing selected, got %v", err)
	}

	if _, err := cart.ToggleSelect(ctx, 1, "p1"); err != nil {
		t.Fatalf("reselect item: %v", err)
	}
	if err := checkout.Begin(ctx, 1); err != nil {
		t.Fatalf("begin with selected items: %v", err)
	}
	if got := checkout.State(1); got != constants.CheckoutStateConfirmationPending {
		t.Fatalf("expected confirmation_pending, got %s", got)
	}
}

func TestCheckoutCancelOnlyFromPending(t *testing.T) {
	checkout, cart, _, _ := newCheckoutFixture(t, &fakeOrderSubmitter{})
	ctx := context.Background()

	if err := checkout.Cancel(1); !errors.Is(err, ErrCheckoutState) {
		t.Fatalf("expected ErrCheckoutState for idle cancel, got %v", err)
	}

	addTestItem(t, cart, 1, "p1", "10.00", 1)
	if err := checkout.Begin(ctx, 1); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := checkout.Cancel(1); err != nil {
		t.Fatalf("cancel from pending: %v", err)
	}
	if got := checkout.State(1); got != constants.CheckoutStateIdle {
		t.Fatalf("expected idle after cancel, got %s", got)
	}
}

func TestCheckoutConfirmSuccess(t *testing.T) {
	orders := &fakeOrderSubmitter{result: &client.OrderCreateResult{
		Message:    "success",
		OrderNo:    "MF100",
		PaymentURI: "https://pay.example.com/MF100",
	}}
	checkout, cart, notifier, receipts := newCheckoutFixture(t, orders)
	ctx := context.Background()

	addTestItem(t, cart, 1, "p1", "10.00", 2)
	addTestItem(t, cart, 1, "p2", "5.00", 1)
	if _, err := cart.ToggleSelect(ctx, 1, "p2"); err != nil {
		t.Fatalf("deselect p2: %v", err)
	}

	if err := checkout.Begin(ctx, 1); err != nil {
		t.Fatalf("begin: %v", err)
	}
	result, err := checkout.Confirm(ctx, 1)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if result.OrderNo != "MF100" {
		t.Fatalf("unexpected order no: %s", result.OrderNo)
	}
	if result.Total.String() != "20.00" {
		t.Fatalf("expected selected-only total 20.00, got %s", result.Total.String())
	}
	if len(result.Items) != 1 || result.Items[0].ProductID != "p1" {
		t.Fatalf("expected only selected items submitted, got %+v", result.Items)
	}
	if got := checkout.State(1); got != constants.CheckoutStateIdle {
		t.Fatalf("expected idle after confirm, got %s", got)
	}

	// 结算成功后仅移除勾选条目
	view, err := cart.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].ProductID != "p2" {
		t.Fatalf("expected unselected item to remain, got %+v", view.Items)
	}

	receipt, err := receipts.GetByOrderNo(1, "MF100")
	if err != nil || receipt == nil {
		t.Fatalf("expected receipt recorded: receipt=%v err=%v", receipt, err)
	}
	if len(notifier.receiptIDs) != 1 || notifier.receiptIDs[0] != receipt.ID {
		t.Fatalf("expected notify enqueued for receipt %d, got %v", receipt.ID, notifier.receiptIDs)
	}

	if len(orders.requests) != 1 {
		t.Fatalf("expected one upstream call, got %d", len(orders.requests))
	}
	if orders.requests[0].Currency != "CNY" {
		t.Fatalf("expected currency CNY, got %s", orders.requests[0].Currency)
	}
}

func TestCheckoutConfirmBusinessFailure(t *testing.T) {
	orders := &fakeOrderSubmitter{result: &client.OrderCreateResult{Message: "insufficient stock"}}
	checkout, cart, notifier, _ := newCheckoutFixture(t, orders)
	ctx := context.Background()

	addTestItem(t, cart, 1, "p1", "10.00", 1)
	if err := checkout.Begin(ctx, 1); err != nil {
		t.Fatalf("begin: %v", err)
	}
	_, err := checkout.Confirm(ctx, 1)
	if !errors.Is(err, ErrOrderSubmitFailed) {
		t.Fatalf("expected ErrOrderSubmitFailed, got %v", err)
	}
	// 上游给出的拒绝原因要能取出来展示给用户
	var submitErr *OrderSubmitError
	if !errors.As(err, &submitErr) || submitErr.Message != "insufficient stock" {
		t.Fatalf("expected upstream rejection message, got %v", err)
	}
	if got := checkout.State(1); got != constants.CheckoutStateConfirmationPending {
		t.Fatalf("expected confirmation_pending after failure, got %s", got)
	}

	// 失败时购物车保持不变
	view, err := cart.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected cart untouched, got %+v", view.Items)
	}
	if len(notifier.receiptIDs) != 0 {
		t.Fatalf("expected no notify on failure, got %v", notifier.receiptIDs)
	}

	// 失败后仍可取消或重试
	if err := checkout.Cancel(1); err != nil {
		t.Fatalf("cancel after failure: %v", err)
	}
	if got := checkout.State(1); got != constants.CheckoutStateIdle {
		t.Fatalf("expected idle after cancel, got %s", got)
	}
}

func TestCheckoutConfirmTransportFailure(t *testing.T) {
	orders := &fakeOrderSubmitter{err: client.ErrRequestFailed}
	checkout, cart, _, _ := newCheckoutFixture(t, orders)
	ctx := context.Background()

	addTestItem(t, cart, 1, "p1", "10.00", 1)
	if err := checkout.Begin(ctx, 1); err != nil {
		t.Fatalf("begin: %v", err)
	}
	_, err := checkout.Confirm(ctx, 1)
	if !errors.Is(err, ErrOrderSubmitFailed) {
		t.Fatalf("expected ErrOrderSubmitFailed, got %v", err)
	}
	// 传输层哨兵错误不能被包装吞掉，接口层据此返回 502
	if !errors.Is(err, client.ErrRequestFailed) {
		t.Fatalf("expected client.ErrRequestFailed preserved in chain, got %v", err)
	}
	if got := checkout.State(1); got != constants.CheckoutStateConfirmationPending {
		t.Fatalf("expected confirmation_pending after transport failure, got %s", got)
	}
}

func TestCheckoutConfirmRequiresPendingState(t *testing.T) {
	checkout, cart, _, _ := newCheckoutFixture(t, &fakeOrderSubmitter{})
	ctx := context.Background()

	addTestItem(t, cart, 1, "p1", "10.00", 1)
	if _, err := checkout.Confirm(ctx, 1); !errors.Is(err, ErrCheckoutState) {
		t.Fatalf("expected ErrCheckoutState for idle confirm, got %v", err)
	}
}

func TestCheckoutBeginTwiceRejected(t *testing.T) {
	checkout, cart, _, _ := newCheckoutFixture(t, &fakeOrderSubmitter{})
	ctx := context.Background()

	addTestItem(t, cart, 1, "p1", "10.00", 1)
	if err := checkout.Begin(ctx, 1); err != nil {
		t.Fatalf("first begin: %v", err)
	}
	if err := checkout.Begin(ctx, 1); !errors.Is(err, ErrCheckoutState) {
		t.Fatalf("expected ErrCheckoutState on second begin, got %v", err)
	}
}

func TestCheckoutStatesIsolatedBetweenUsers(t *testing.T) {
	checkout, cart, _, _ := newCheckoutFixture(t, &fakeOrderSubmitter{})
	ctx := context.Background()

	addTestItem(t, cart, 1, "p1", "10.00", 1)
	if err := checkout.Begin(ctx, 1); err != nil {
		t.Fatalf("begin user 1: %v", err)
	}
	if got := checkout.State(2); got != constants.CheckoutStateIdle {
		t.Fatalf("expected user 2 idle, got %s", got)
	}
}
