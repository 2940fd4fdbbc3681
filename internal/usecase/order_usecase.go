package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/domain/model"
	"marketplace/internal/domain/policy"
	"marketplace/internal/pricing"
	repo "marketplace/internal/repository"
)

type OrderUsecase struct {
	tx        repo.TransactionManager
	addresses repo.AddressRepository
}

func NewOrderUsecase(tx repo.TransactionManager, addresses repo.AddressRepository) *OrderUsecase {
	return &OrderUsecase{tx: tx, addresses: addresses}
}

type OrderLineInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type CreateOrderInput struct {
	AddressID      int64
	Items          []OrderLineInput
	IdempotencyKey string
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type OrderOutput struct {
	ID          int64             `json:"id"`
	UserID      int64             `json:"user_id"`
	AddressID   int64             `json:"address_id"`
	Status      string            `json:"status"`
	Subtotal    string            `json:"subtotal"`
	Tax         string            `json:"tax"`
	DeliveryFee string            `json:"delivery_fee"`
	Total       string            `json:"total"`
	CreatedAt   time.Time         `json:"created_at"`
	Items       []OrderItemOutput `json:"items"`
}

type OrderListOutput struct {
	Items      []OrderOutput `json:"items"`
	Pagination Pagination    `json:"pagination"`
}

// 注文作成。金額は常にサーバー側でカタログの現在価格から計算する。
// 買い手が指定できるのは商品と数量だけ
func (u *OrderUsecase) Create(ctx context.Context, buyerID int64, in CreateOrderInput) (OrderOutput, error) {
	if in.AddressID <= 0 {
		return OrderOutput{}, NewValidationError("order", "invalid address_id")
	}
	if len(in.Items) == 0 {
		return OrderOutput{}, NewValidationError("order", "order must contain at least one item")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return OrderOutput{}, NewValidationError("order", "invalid idempotency_key")
	}

	//address_idの存在確認＋所有チェック
	addr, err := u.addresses.FindByID(ctx, in.AddressID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return OrderOutput{}, NewNotFoundError("address")
		}
		return OrderOutput{}, NewInternalError()
	}
	if addr.UserID != buyerID {
		return OrderOutput{}, NewAuthorizationError("address")
	}

	var out OrderOutput

	//在庫チェック〜注文＋明細の作成までを1トランザクションで行う。
	//途中で失敗したら明細ゼロの注文は残らない
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//同じキーなら既存の注文をそのまま返す
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, buyerID, key)
		if err != nil {
			return NewInternalError()
		}
		if found {
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return NewInternalError()
			}
			out = toOrderOutput(existing, items)
			return nil
		}

		//商品を一括で解決
		ids := make([]int64, 0, len(in.Items))
		for _, it := range in.Items {
			ids = append(ids, it.ProductID)
		}
		products, err := r.Products().FindByIDs(ctx, ids)
		if err != nil {
			return NewInternalError()
		}

		catalog := make(pricing.PriceLookup, len(products))
		names := make(map[int64]string, len(products))
		for _, p := range products {
			catalog[p.ID] = pricing.CatalogEntry{UnitPrice: p.Price, Active: p.IsActive}
			names[p.ID] = p.Name
		}

		//金額計算。存在しない・非アクティブな商品はここで弾かれる
		lines := make([]pricing.Line, 0, len(in.Items))
		for _, it := range in.Items {
			lines = append(lines, pricing.Line{ProductID: it.ProductID, Quantity: it.Quantity})
		}
		quote, err := pricing.ComputeOrder(lines, catalog)
		if err != nil {
			return mapPricingError(err)
		}

		//在庫減算（足りないなら中断、txごと巻き戻る）
		orderItems := make([]model.OrderItem, 0, len(quote.Lines))
		for _, l := range quote.Lines {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, l.ProductID, l.Quantity)
			if err != nil {
				return NewInternalError()
			}
			if !ok {
				return NewValidationError("order", fmt.Sprintf("insufficient stock for product %d", l.ProductID))
			}

			//スナップショット
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           l.ProductID,
				ProductNameSnapshot: names[l.ProductID],
				Quantity:            l.Quantity,
				UnitPrice:           l.UnitPrice,
				LineTotal:           l.LineTotal,
			})
		}

		//注文作成
		now := time.Now()
		order := model.Order{
			UserID:         buyerID,
			AddressID:      in.AddressID,
			Status:         model.OrderStatusPending,
			Subtotal:       quote.Subtotal,
			Tax:            quote.Tax,
			DeliveryFee:    quote.DeliveryFee,
			Total:          quote.Total,
			IdempotencyKey: key,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			//同時に同じキーが入った競合はもう一度検索して同じ結果を返す
			ex2, found2, err2 := r.Orders().FindByIdempotencyKey(ctx, buyerID, key)
			if err2 == nil && found2 {
				items2, err3 := r.OrderItems().ListByOrderID(ctx, ex2.ID)
				if err3 != nil {
					return NewInternalError()
				}
				out = toOrderOutput(ex2, items2)
				return nil
			}
			return NewConflictError("order", "idempotency conflict")
		}

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewInternalError()
		}

		order.ID = orderID
		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 注文詳細。本人かADMINのみ
func (u *OrderUsecase) Get(ctx context.Context, actorID int64, role model.Role, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewValidationError("order", "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("order")
		}
		if err != nil {
			return NewInternalError()
		}

		if !policy.CanAccessOwned(role, actorID, o.UserID) {
			return NewAuthorizationError("order")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewInternalError()
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 自分の注文一覧
func (u *OrderUsecase) ListMine(ctx context.Context, userID int64, page, limit int) (OrderListOutput, error) {
	page, limit, err := normalizePage(page, limit)
	if err != nil {
		return OrderListOutput{}, err
	}

	var out OrderListOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListByUserID(ctx, userID, page, limit)
		if err != nil {
			return NewInternalError()
		}

		outs := make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewInternalError()
			}
			outs = append(outs, toOrderOutput(o, items))
		}

		out = OrderListOutput{Items: outs, Pagination: newPagination(page, limit, total)}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

// 全注文の一覧（ADMINのみ）
func (u *OrderUsecase) ListAll(ctx context.Context, role model.Role, f repo.AdminOrderListFilter) (OrderListOutput, error) {
	if role != model.RoleAdmin {
		return OrderListOutput{}, NewAuthorizationError("order")
	}

	page, limit, err := normalizePage(f.Page, f.Limit)
	if err != nil {
		return OrderListOutput{}, err
	}
	f.Page = page
	f.Limit = limit

	if f.Status != "" {
		if _, ok := model.ParseOrderStatus(f.Status); !ok {
			return OrderListOutput{}, NewValidationError("order", "invalid status")
		}
	}

	var out OrderListOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return NewInternalError()
		}

		outs := make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewInternalError()
			}
			outs = append(outs, toOrderOutput(o, items))
		}

		out = OrderListOutput{Items: outs, Pagination: newPagination(page, limit, total)}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

// ステータス更新。SELLERとADMINのみ。遷移表にない変更は拒否
func (u *OrderUsecase) UpdateStatus(ctx context.Context, actorID int64, role model.Role, orderID int64, newStatus string) (OrderOutput, error) {
	if !policy.CanSetOrderStatus(role) {
		return OrderOutput{}, NewAuthorizationError("order")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewValidationError("order", "invalid id")
	}

	next, ok := model.ParseOrderStatus(strings.TrimSpace(newStatus))
	if !ok {
		return OrderOutput{}, NewValidationError("order", "invalid status")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("order")
		}
		if err != nil {
			return NewInternalError()
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewInternalError()
		}

		//すでに同じなら何もしない
		if o.Status == next {
			out = toOrderOutput(o, items)
			return nil
		}

		if !o.Status.CanTransitionTo(next) {
			return NewConflictError("order", fmt.Sprintf("cannot change %s order to %s", o.Status, next))
		}

		//キャンセルなら押さえていた在庫を戻す
		if next == model.OrderStatusCancelled && o.Status.HoldsStock() {
			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return NewInternalError()
				}
			}
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, next); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewNotFoundError("order")
			}
			return NewInternalError()
		}

		//監査ログ
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   `{"status":"` + string(o.Status) + `"}`,
			AfterJSON:    `{"status":"` + string(next) + `"}`,
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewInternalError()
		}

		o.Status = next
		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// pricingパッケージのエラーをドメインエラーへ変換
func mapPricingError(err error) error {
	if errors.Is(err, pricing.ErrEmptyOrder) {
		return NewValidationError("order", "order must contain at least one item")
	}

	var unavailable *pricing.UnavailableProductError
	if errors.As(err, &unavailable) {
		return NewValidationError("order", unavailable.Error())
	}

	var badQty *pricing.InvalidQuantityError
	if errors.As(err, &badQty) {
		return NewValidationError("order", badQty.Error())
	}

	return NewInternalError()
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
			LineTotal: it.LineTotal.StringFixed(2),
		})
	}

	return OrderOutput{
		ID:          o.ID,
		UserID:      o.UserID,
		AddressID:   o.AddressID,
		Status:      string(o.Status),
		Subtotal:    o.Subtotal.StringFixed(2),
		Tax:         o.Tax.StringFixed(2),
		DeliveryFee: o.DeliveryFee.StringFixed(2),
		Total:       o.Total.StringFixed(2),
		CreatedAt:   o.CreatedAt,
		Items:       outItems,
	}
}
