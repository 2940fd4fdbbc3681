package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/domain/model"
	"marketplace/internal/domain/policy"
	repo "marketplace/internal/repository"

	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	products   repo.ProductRepository
	categories repo.CategoryRepository
}

// DI
func NewProductUsecase(products repo.ProductRepository, categories repo.CategoryRepository) *ProductUsecase {
	return &ProductUsecase{products: products, categories: categories}
}

type ProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	//金額は文字列で受けて固定小数にパースする
	Price      string `json:"price"`
	Unit       string `json:"unit"`
	CategoryID int64  `json:"category_id"`
	Stock      int64  `json:"stock"`
}

type ProductOutput struct {
	ID          int64  `json:"id"`
	SellerID    int64  `json:"seller_id"`
	CategoryID  int64  `json:"category_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Unit        string `json:"unit"`
	Stock       int64  `json:"stock"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type ProductListInput struct {
	Page         int
	Limit        int
	Q            string
	CategorySlug string
}

type ProductListOutput struct {
	Items      []ProductOutput `json:"items"`
	Pagination Pagination      `json:"pagination"`
}

// 公開一覧（アクティブのみ）
func (u *ProductUsecase) ListPublic(ctx context.Context, in ProductListInput) (ProductListOutput, error) {
	page, limit, err := normalizePage(in.Page, in.Limit)
	if err != nil {
		return ProductListOutput{}, err
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewValidationError("product", "q too long")
	}

	items, total, err := u.products.ListPublic(ctx, repo.ProductListQuery{
		Page:         page,
		Limit:        limit,
		Q:            strings.TrimSpace(in.Q),
		CategorySlug: in.CategorySlug,
	})
	if err != nil {
		return ProductListOutput{}, NewInternalError()
	}

	return ProductListOutput{
		Items:      toProductOutputs(items),
		Pagination: newPagination(page, limit, total),
	}, nil
}

// 詳細。ソフトデリート済みでもレコードは返す（過去注文からの参照用）
func (u *ProductUsecase) Get(ctx context.Context, productID int64) (ProductOutput, error) {
	p, err := u.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ProductOutput{}, NewNotFoundError("product")
		}
		return ProductOutput{}, NewInternalError()
	}
	return toProductOutput(p), nil
}

// 出品。SELLERかADMINのみ。出品者は常に操作者自身
func (u *ProductUsecase) Create(ctx context.Context, actorID int64, role model.Role, req ProductRequest) (ProductOutput, error) {
	if !policy.CanManageCatalog(role) {
		return ProductOutput{}, NewAuthorizationError("product")
	}

	price, err := u.validateRequest(ctx, req)
	if err != nil {
		return ProductOutput{}, err
	}

	p := model.Product{
		SellerID:    actorID,
		CategoryID:  req.CategoryID,
		Name:        strings.TrimSpace(req.Name),
		Slug:        fmt.Sprintf("%s-%d", slugify(req.Name), time.Now().UnixMilli()),
		Description: req.Description,
		Price:       price,
		Unit:        req.Unit,
		Stock:       req.Stock,
		IsActive:    true,
	}

	created, err := u.products.Create(ctx, p)
	if err != nil {
		return ProductOutput{}, NewInternalError()
	}
	return toProductOutput(created), nil
}

// 更新。自分の商品のみ（ADMINは全商品）
func (u *ProductUsecase) Update(ctx context.Context, actorID int64, role model.Role, productID int64, req ProductRequest) (ProductOutput, error) {
	if !policy.CanManageCatalog(role) {
		return ProductOutput{}, NewAuthorizationError("product")
	}

	p, err := u.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ProductOutput{}, NewNotFoundError("product")
		}
		return ProductOutput{}, NewInternalError()
	}

	//所有チェック
	if !policy.CanAccessOwned(role, actorID, p.SellerID) {
		return ProductOutput{}, NewAuthorizationError("product")
	}

	price, err := u.validateRequest(ctx, req)
	if err != nil {
		return ProductOutput{}, err
	}

	p.Name = strings.TrimSpace(req.Name)
	p.Description = req.Description
	p.Price = price
	p.Unit = req.Unit
	p.CategoryID = req.CategoryID
	p.Stock = req.Stock
	p.UpdatedAt = time.Now()

	if err := u.products.Update(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ProductOutput{}, NewNotFoundError("product")
		}
		return ProductOutput{}, NewInternalError()
	}
	return toProductOutput(p), nil
}

// 削除＝ソフトデリート。注文明細の履歴は残る
func (u *ProductUsecase) Delete(ctx context.Context, actorID int64, role model.Role, productID int64) error {
	if !policy.CanManageCatalog(role) {
		return NewAuthorizationError("product")
	}

	p, err := u.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("product")
		}
		return NewInternalError()
	}
	if !policy.CanAccessOwned(role, actorID, p.SellerID) {
		return NewAuthorizationError("product")
	}

	if err := u.products.SoftDelete(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("product")
		}
		return NewInternalError()
	}
	return nil
}

// セラー自身の一覧（非アクティブ含む）。他人の一覧はADMINのみ
func (u *ProductUsecase) ListSeller(ctx context.Context, actorID int64, role model.Role, sellerID int64, page, limit int) (ProductListOutput, error) {
	if !policy.CanAccessOwned(role, actorID, sellerID) {
		return ProductListOutput{}, NewAuthorizationError("product")
	}

	page, limit, err := normalizePage(page, limit)
	if err != nil {
		return ProductListOutput{}, err
	}

	items, total, err := u.products.ListBySellerID(ctx, sellerID, page, limit)
	if err != nil {
		return ProductListOutput{}, NewInternalError()
	}

	return ProductListOutput{
		Items:      toProductOutputs(items),
		Pagination: newPagination(page, limit, total),
	}, nil
}

// 入力チェック＋価格のパース。カテゴリの存在も確認する
func (u *ProductUsecase) validateRequest(ctx context.Context, req ProductRequest) (decimal.Decimal, error) {
	if strings.TrimSpace(req.Name) == "" {
		return decimal.Zero, NewValidationError("product", "name is required")
	}
	if req.Unit == "" {
		return decimal.Zero, NewValidationError("product", "unit is required")
	}
	if req.Stock < 0 {
		return decimal.Zero, NewValidationError("product", "stock must be >= 0")
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || !price.IsPositive() {
		return decimal.Zero, NewValidationError("product", "price must be a positive decimal")
	}

	if req.CategoryID <= 0 {
		return decimal.Zero, NewValidationError("product", "category_id is required")
	}
	if _, err := u.categories.FindByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return decimal.Zero, NewValidationError("product", "category does not exist")
		}
		return decimal.Zero, NewInternalError()
	}

	return price.Round(2), nil
}

func toProductOutput(p model.Product) ProductOutput {
	return ProductOutput{
		ID:          p.ID,
		SellerID:    p.SellerID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Unit:        p.Unit,
		Stock:       p.Stock,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

func toProductOutputs(list []model.Product) []ProductOutput {
	out := make([]ProductOutput, 0, len(list))
	for i := range list {
		out = append(out, toProductOutput(list[i]))
	}
	return out
}
