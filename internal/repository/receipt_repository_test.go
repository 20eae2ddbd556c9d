package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mallfront/internal/models"
)

func newRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.OrderReceipt{}, &models.TranscriptArchive{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func TestReceiptRepositoryCreateAndGet(t *testing.T) {
	repo := NewReceiptRepository(newRepoTestDB(t))

	receipt := &models.OrderReceipt{
		OrderNo:     "MF20260901001",
		UserID:      7,
		Currency:    "CNY",
		TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(199.90)),
		ItemsJSON:   `[{"product_id":"p1","quantity":2}]`,
	}
	if err := repo.Create(receipt); err != nil {
		t.Fatalf("create receipt: %v", err)
	}
	if receipt.ID == 0 {
		t.Fatal("expected receipt id to be assigned")
	}

	got, err := repo.GetByOrderNo(7, "MF20260901001")
	if err != nil {
		t.Fatalf("get by order no: %v", err)
	}
	if got == nil {
		t.Fatal("expected receipt to be found")
	}
	if got.TotalAmount.String() != "199.9" && got.TotalAmount.String() != "199.90" {
		t.Fatalf("unexpected total amount: %s", got.TotalAmount.String())
	}

	other, err := repo.GetByOrderNo(8, "MF20260901001")
	if err != nil {
		t.Fatalf("get by order no for other user: %v", err)
	}
	if other != nil {
		t.Fatal("receipt must not be visible to another user")
	}
}

func TestReceiptRepositoryListByUserPaged(t *testing.T) {
	repo := NewReceiptRepository(newRepoTestDB(t))

	for i := 0; i < 5; i++ {
		receipt := &models.OrderReceipt{
			OrderNo:     fmt.Sprintf("MF2026090100%d", i),
			UserID:      3,
			Currency:    "CNY",
			TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(int64(10 + i))),
			CreatedAt:   time.Now().Add(time.Duration(i) * time.Second),
		}
		if err := repo.Create(receipt); err != nil {
			t.Fatalf("create receipt %d: %v", i, err)
		}
	}

	receipts, total, err := repo.ListByUser(3, 1, 2)
	if err != nil {
		t.Fatalf("list receipts: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	if len(receipts) != 2 {
		t.Fatalf("expected page of 2, got %d", len(receipts))
	}
	if receipts[0].OrderNo != "MF20260901004" {
		t.Fatalf("expected newest receipt first, got %s", receipts[0].OrderNo)
	}
}

func TestArchiveRepositoryListByUser(t *testing.T) {
	repo := NewArchiveRepository(newRepoTestDB(t))

	for i := 0; i < 3; i++ {
		archive := &models.TranscriptArchive{
			UserID:         9,
			ConversationID: fmt.Sprintf("conv-%d", i),
			SessionID:      fmt.Sprintf("sess-%d", i),
			MessagesJSON:   "[]",
			MessageCount:   i,
			CreatedAt:      time.Now().Add(time.Duration(i) * time.Second),
		}
		if err := repo.Create(archive); err != nil {
			t.Fatalf("create archive %d: %v", i, err)
		}
	}

	archives, err := repo.ListByUser(9, 10)
	if err != nil {
		t.Fatalf("list archives: %v", err)
	}
	if len(archives) != 3 {
		t.Fatalf("expected 3 archives, got %d", len(archives))
	}
	if archives[0].ConversationID != "conv-2" {
		t.Fatalf("expected newest archive first, got %s", archives[0].ConversationID)
	}
}
