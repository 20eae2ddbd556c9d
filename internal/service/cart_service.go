package service

import (
	"context"
	"strings"
	"time"

	"github.com/mallfront/internal/models"
	"github.com/mallfront/internal/store"
)

// CartView 购物车视图（用于响应）
type CartView struct {
	Items         []models.CartItem `json:"items"`
	Currency      string            `json:"currency"`
	TotalQuantity int64             `json:"total_quantity"`
	Total         models.Money      `json:"total"`
	SelectedCount int               `json:"selected_count"`
	SelectedTotal models.Money      `json:"selected_total"`
	AllSelected   bool              `json:"all_selected"`
}

// AddCartItemInput 添加购物车条目输入
type AddCartItemInput struct {
	ProductID string       `json:"product_id"`
	Name      string       `json:"name"`
	UnitPrice models.Money `json:"unit_price"`
	Quantity  int64        `json:"quantity"`
	Image     string       `json:"image"`
}

// CartService 购物车服务
type CartService struct {
	store    store.Store
	currency string
}

// NewCartService 创建购物车服务
func NewCartService(snapshots store.Store, currency string) *CartService {
	currency = strings.TrimSpace(currency)
	if currency == "" {
		currency = "CNY"
	}
	return &CartService{store: snapshots, currency: currency}
}

// Currency 返回站点结算币种
func (s *CartService) Currency() string {
	return s.currency
}

// Get 获取用户购物车视图
func (s *CartService) Get(ctx context.Context, userID uint) (*CartView, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	snapshot, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildView(snapshot), nil
}

// AddItem 添加条目；已存在同商品时合并数量，新条目默认勾选
func (s *CartService) AddItem(ctx context.Context, userID uint, input AddCartItemInput) (*CartView, error) {
	if userID == 0 || strings.TrimSpace(input.ProductID) == "" {
		return nil, ErrInvalidInput
	}
	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	snapshot, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range snapshot.Items {
		if snapshot.Items[i].ProductID == input.ProductID {
			snapshot.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		snapshot.Items = append(snapshot.Items, models.CartItem{
			ProductID: input.ProductID,
			Name:      input.Name,
			UnitPrice: input.UnitPrice,
			Quantity:  quantity,
			Image:     input.Image,
			Selected:  true,
			AddedAt:   time.Now(),
		})
	}
	if err := s.save(ctx, userID, snapshot); err != nil {
		return nil, err
	}
	return s.buildView(snapshot), nil
}

// RemoveItem 删除条目；商品不在购物车时视为成功
func (s *CartService) RemoveItem(ctx context.Context, userID uint, productID string) (*CartView, error) {
	if userID == 0 || strings.TrimSpace(productID) == "" {
		return nil, ErrInvalidInput
	}
	snapshot, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := snapshot.Items[:0]
	for _, item := range snapshot.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	snapshot.Items = kept

	if err := s.save(ctx, userID, snapshot); err != nil {
		return nil, err
	}
	return s.buildView(snapshot), nil
}

// UpdateQuantity 更新条目数量，数量必须大于 0
func (s *CartService) UpdateQuantity(ctx context.Context, userID uint, productID string, quantity int64) (*CartView, error) {
	if userID == 0 || strings.TrimSpace(productID) == "" {
		return nil, ErrInvalidInput
	}
	if quantity < 1 {
		return nil, ErrQuantityInvalid
	}
	snapshot, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range snapshot.Items {
		if snapshot.Items[i].ProductID == productID {
			snapshot.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil, ErrCartItemNotFound
	}

	if err := s.save(ctx, userID, snapshot); err != nil {
		return nil, err
	}
	return s.buildView(snapshot), nil
}

// ToggleSelect 翻转单个条目的勾选状态
func (s *CartService) ToggleSelect(ctx context.Context, userID uint, productID string) (*CartView, error) {
	if userID == 0 || strings.TrimSpace(productID) == "" {
		return nil, ErrInvalidInput
	}
	snapshot, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range snapshot.Items {
		if snapshot.Items[i].ProductID == productID {
			snapshot.Items[i].Selected = !snapshot.Items[i].Selected
			found = true
			break
		}
	}
	if !found {
		return nil, ErrCartItemNotFound
	}

	if err := s.save(ctx, userID, snapshot); err != nil {
		return nil, err
	}
	return s.buildView(snapshot), nil
}

// ToggleSelectAll 全选或全不选：当前全部勾选时取消全部，否则勾选全部
func (s *CartService) ToggleSelectAll(ctx context.Context, userID uint) (*CartView, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	snapshot, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	target := !allSelected(snapshot.Items)
	for i := range snapshot.Items {
		snapshot.Items[i].Selected = target
	}

	if err := s.save(ctx, userID, snapshot); err != nil {
		return nil, err
	}
	return s.buildView(snapshot), nil
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, userID uint) error {
	if userID == 0 {
		return ErrInvalidInput
	}
	return s.store.Delete(ctx, cartKey(userID))
}

// SelectedItems 获取当前勾选的条目
func (s *CartService) SelectedItems(ctx context.Context, userID uint) ([]models.CartItem, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	snapshot, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	var selected []models.CartItem
	for _, item := range snapshot.Items {
		if item.Selected {
			selected = append(selected, item)
		}
	}
	return selected, nil
}

// RemoveSelected 移除所有勾选条目（订单提交成功后调用）
func (s *CartService) RemoveSelected(ctx context.Context, userID uint) error {
	if userID == 0 {
		return ErrInvalidInput
	}
	snapshot, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	kept := snapshot.Items[:0]
	for _, item := range snapshot.Items {
		if !item.Selected {
			kept = append(kept, item)
		}
	}
	snapshot.Items = kept
	return s.save(ctx, userID, snapshot)
}

func (s *CartService) load(ctx context.Context, userID uint) (*models.CartSnapshot, error) {
	snapshot := &models.CartSnapshot{}
	if _, err := s.store.Load(ctx, cartKey(userID), snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *CartService) save(ctx context.Context, userID uint, snapshot *models.CartSnapshot) error {
	snapshot.UpdatedAt = time.Now()
	return s.store.Save(ctx, cartKey(userID), snapshot)
}

func (s *CartService) buildView(snapshot *models.CartSnapshot) *CartView {
	view := &CartView{
		Items:         snapshot.Items,
		Currency:      s.currency,
		Total:         models.ZeroMoney(),
		SelectedTotal: models.ZeroMoney(),
	}
	if view.Items == nil {
		view.Items = []models.CartItem{}
	}
	for _, item := range snapshot.Items {
		view.TotalQuantity += item.Quantity
		view.Total = view.Total.AddMoney(item.Subtotal())
		if item.Selected {
			view.SelectedCount++
			view.SelectedTotal = view.SelectedTotal.AddMoney(item.Subtotal())
		}
	}
	view.AllSelected = allSelected(snapshot.Items)
	return view
}

func allSelected(items []models.CartItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !item.Selected {
			return false
		}
	}
	return true
}
