package usecase

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"marketplace/internal/domain/model"
	"marketplace/internal/domain/policy"
	repo "marketplace/internal/repository"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// 名前からslugを作る（小文字化して空白をダッシュに）
func slugify(name string) string {
	return whitespacePattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

type CategoryUsecase struct {
	categories repo.CategoryRepository
}

func NewCategoryUsecase(categories repo.CategoryRepository) *CategoryUsecase {
	return &CategoryUsecase{categories: categories}
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoryOutput struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func (u *CategoryUsecase) List(ctx context.Context) ([]CategoryOutput, error) {
	list, err := u.categories.List(ctx)
	if err != nil {
		return nil, NewInternalError()
	}
	out := make([]CategoryOutput, 0, len(list))
	for i := range list {
		out = append(out, toCategoryOutput(list[i]))
	}
	return out, nil
}

func (u *CategoryUsecase) GetBySlug(ctx context.Context, slug string) (CategoryOutput, error) {
	c, err := u.categories.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CategoryOutput{}, NewNotFoundError("category")
		}
		return CategoryOutput{}, NewInternalError()
	}
	return toCategoryOutput(c), nil
}

// 作成はADMINのみ。slugの重複はCONFLICT
func (u *CategoryUsecase) Create(ctx context.Context, role model.Role, req CategoryRequest) (CategoryOutput, error) {
	if !policy.CanManageCategories(role) {
		return CategoryOutput{}, NewAuthorizationError("category")
	}
	if strings.TrimSpace(req.Name) == "" {
		return CategoryOutput{}, NewValidationError("category", "name is required")
	}

	c := model.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slugify(req.Name),
		Description: req.Description,
	}

	created, err := u.categories.Create(ctx, c)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return CategoryOutput{}, NewConflictError("category", "category with this name already exists")
		}
		return CategoryOutput{}, NewInternalError()
	}
	return toCategoryOutput(created), nil
}

func (u *CategoryUsecase) Update(ctx context.Context, role model.Role, id int64, req CategoryRequest) (CategoryOutput, error) {
	if !policy.CanManageCategories(role) {
		return CategoryOutput{}, NewAuthorizationError("category")
	}
	if strings.TrimSpace(req.Name) == "" {
		return CategoryOutput{}, NewValidationError("category", "name is required")
	}

	c, err := u.categories.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CategoryOutput{}, NewNotFoundError("category")
		}
		return CategoryOutput{}, NewInternalError()
	}

	c.Name = strings.TrimSpace(req.Name)
	c.Slug = slugify(req.Name)
	if req.Description != "" {
		c.Description = req.Description
	}
	c.UpdatedAt = time.Now()

	if err := u.categories.Update(ctx, c); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return CategoryOutput{}, NewConflictError("category", "category with this name already exists")
		}
		if errors.Is(err, repo.ErrNotFound) {
			return CategoryOutput{}, NewNotFoundError("category")
		}
		return CategoryOutput{}, NewInternalError()
	}
	return toCategoryOutput(c), nil
}

func (u *CategoryUsecase) Delete(ctx context.Context, role model.Role, id int64) error {
	if !policy.CanManageCategories(role) {
		return NewAuthorizationError("category")
	}

	if err := u.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("category")
		}
		return NewInternalError()
	}
	return nil
}

func toCategoryOutput(c model.Category) CategoryOutput {
	return CategoryOutput{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
	}
}
