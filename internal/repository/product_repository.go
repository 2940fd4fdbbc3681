package repository

import (
	"context"
	"errors"

	"marketplace/internal/domain/model"
)

var (
	ErrNotFound = errors.New("not found")

	//一意制約違反（email, slugなど）
	ErrDuplicate = errors.New("duplicate")
)

// 公開一覧の検索条件
type ProductListQuery struct {
	Page         int
	Limit        int
	Q            string
	CategorySlug string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	//公開一覧（is_active=trueのみ）
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)

	//セラー自身の一覧（非アクティブ含む）
	ListBySellerID(ctx context.Context, sellerID int64, page int, limit int) ([]model.Product, int64, error)

	FindByID(ctx context.Context, id int64) (model.Product, error)

	//複数IDをまとめて取得（注文作成用）
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error
}

// 在庫カウンタの増減を約束。
type InventoryRepository interface {
	//在庫が足りる場合だけ減らす（UPDATE .. WHERE stock >= ?）。足りなければfalse
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	//キャンセル時の在庫戻し
	IncreaseStock(ctx context.Context, productID int64, qty int64) error
}
