package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mallfront/internal/cache"
	"github.com/mallfront/internal/client"
	"github.com/mallfront/internal/constants"
	"github.com/mallfront/internal/logger"
	"github.com/mallfront/internal/models"
	"github.com/mallfront/internal/repository"
)

// OrderSubmitter 订单中心提交接口
type OrderSubmitter interface {
	CreateOrder(ctx context.Context, input client.OrderCreateInput) (*client.OrderCreateResult, error)
}

// CheckoutNotifier 结算完成后的异步通知接口
type CheckoutNotifier interface {
	EnqueueOrderPlacedNotify(ctx context.Context, receiptID uint) error
}

// CheckoutResult 结算成功结果
type CheckoutResult struct {
	ReceiptID  uint               `json:"receipt_id"`
	OrderNo    string             `json:"order_no"`
	PaymentURI string             `json:"payment_uri,omitempty"`
	Currency   string             `json:"currency"`
	Total      models.Money       `json:"total"`
	Items      []models.OrderItem `json:"items"`
}

// CheckoutService 结算流程服务。每个用户维护一个显式状态机：
// idle -> confirmation_pending -> submitting -> idle
type CheckoutService struct {
	mu     sync.Mutex
	states map[uint]string

	cart     *CartService
	orders   OrderSubmitter
	receipts repository.ReceiptRepository
	notifier CheckoutNotifier
}

// NewCheckoutService 创建结算服务；notifier 可为 nil
func NewCheckoutService(cart *CartService, orders OrderSubmitter, receipts repository.ReceiptRepository, notifier CheckoutNotifier) *CheckoutService {
	return &CheckoutService{
		states:   make(map[uint]string),
		cart:     cart,
		orders:   orders,
		receipts: receipts,
		notifier: notifier,
	}
}

// State 获取用户当前结算状态
func (s *CheckoutService) State(userID uint) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(userID)
}

func (s *CheckoutService) stateLocked(userID uint) string {
	if state, ok := s.states[userID]; ok {
		return state
	}
	return constants.CheckoutStateIdle
}

// Begin 发起结算，进入待确认状态；要求购物车中有勾选条目
func (s *CheckoutService) Begin(ctx context.Context, userID uint) error {
	if userID == 0 {
		return ErrInvalidInput
	}
	selected, err := s.cart.SelectedItems(ctx, userID)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		return ErrNoSelectedItems
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stateLocked(userID) != constants.CheckoutStateIdle {
		return ErrCheckoutState
	}
	s.states[userID] = constants.CheckoutStateConfirmationPending
	return nil
}

// Cancel 取消结算，仅待确认状态可取消
func (s *CheckoutService) Cancel(userID uint) error {
	if userID == 0 {
		return ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stateLocked(userID) != constants.CheckoutStateConfirmationPending {
		return ErrCheckoutState
	}
	s.states[userID] = constants.CheckoutStateIdle
	return nil
}

// Confirm 确认结算并提交订单。提交期间处于 submitting 状态，
// 重复确认会被拒绝；成功回到 idle，失败回到待确认以便重试或取消。
func (s *CheckoutService) Confirm(ctx context.Context, userID uint) (*CheckoutResult, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	s.mu.Lock()
	if s.stateLocked(userID) != constants.CheckoutStateConfirmationPending {
		s.mu.Unlock()
		return nil, ErrCheckoutState
	}
	s.states[userID] = constants.CheckoutStateSubmitting
	s.mu.Unlock()

	result, err := s.submit(ctx, userID)

	s.mu.Lock()
	if err != nil {
		s.states[userID] = constants.CheckoutStateConfirmationPending
	} else {
		s.states[userID] = constants.CheckoutStateIdle
	}
	s.mu.Unlock()

	return result, err
}

func (s *CheckoutService) submit(ctx context.Context, userID uint) (*CheckoutResult, error) {
	selected, err := s.cart.SelectedItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, ErrNoSelectedItems
	}

	currency := s.cart.Currency()
	total := models.ZeroMoney()
	orderItems := make([]models.OrderItem, 0, len(selected))
	for _, item := range selected {
		total = total.AddMoney(item.Subtotal())
		orderItems = append(orderItems, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Currency:  currency,
		})
	}

	resp, err := s.orders.CreateOrder(ctx, client.OrderCreateInput{
		UserID:      userID,
		Currency:    currency,
		TotalAmount: total,
		Items:       orderItems,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOrderSubmitFailed, err)
	}
	if resp.Message != constants.OrderSubmitSuccessMessage {
		return nil, &OrderSubmitError{Message: resp.Message}
	}

	orderNo := strings.TrimSpace(resp.OrderNo)
	if orderNo == "" {
		orderNo = strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	}

	itemsJSON, err := json.Marshal(orderItems)
	if err != nil {
		return nil, err
	}
	receipt := &models.OrderReceipt{
		OrderNo:     orderNo,
		UserID:      userID,
		Currency:    currency,
		TotalAmount: total,
		ItemsJSON:   string(itemsJSON),
		PaymentURI:  resp.PaymentURI,
		CreatedAt:   time.Now(),
	}
	if err := s.receipts.Create(receipt); err != nil {
		return nil, err
	}

	if err := s.cart.RemoveSelected(ctx, userID); err != nil {
		logger.Warnw("remove checked-out items failed", "user_id", userID, "error", err)
	}
	if err := cache.InvalidateUserSummary(ctx, userID); err != nil {
		logger.Warnw("invalidate user summary cache failed", "user_id", userID, "error", err)
	}
	if s.notifier != nil {
		if err := s.notifier.EnqueueOrderPlacedNotify(ctx, receipt.ID); err != nil {
			logger.Warnw("enqueue order placed notify failed", "receipt_id", receipt.ID, "error", err)
		}
	}

	return &CheckoutResult{
		ReceiptID:  receipt.ID,
		OrderNo:    orderNo,
		PaymentURI: resp.PaymentURI,
		Currency:   currency,
		Total:      total,
		Items:      orderItems,
	}, nil
}
