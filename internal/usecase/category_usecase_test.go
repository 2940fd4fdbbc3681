package usecase_test

import (
	"context"
	"testing"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCategoryUsecase_Create_NonAdminForbidden(t *testing.T) {
	categories := new(CategoryRepoMock)
	uc := usecase.NewCategoryUsecase(categories)

	_, err := uc.Create(context.Background(), model.RoleSeller, usecase.CategoryRequest{Name: "Vegetables"})
	assertErrKind(t, err, usecase.KindAuthorization)

	categories.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCategoryUsecase_Create_SlugFromName(t *testing.T) {
	categories := new(CategoryRepoMock)

	categories.On("Create", mock.Anything, mock.MatchedBy(func(c model.Category) bool {
		return c.Name == "Fresh  Vegetables" && c.Slug == "fresh-vegetables"
	})).Return(model.Category{ID: 1, Name: "Fresh  Vegetables", Slug: "fresh-vegetables"}, nil)

	uc := usecase.NewCategoryUsecase(categories)

	out, err := uc.Create(context.Background(), model.RoleAdmin, usecase.CategoryRequest{Name: "Fresh  Vegetables"})
	assert.NoError(t, err)
	assert.Equal(t, "fresh-vegetables", out.Slug)

	categories.AssertExpectations(t)
}

func TestCategoryUsecase_Create_DuplicateSlug(t *testing.T) {
	categories := new(CategoryRepoMock)

	categories.On("Create", mock.Anything, mock.Anything).Return(model.Category{}, repo.ErrDuplicate)

	uc := usecase.NewCategoryUsecase(categories)

	_, err := uc.Create(context.Background(), model.RoleAdmin, usecase.CategoryRequest{Name: "Vegetables"})
	assertErrKind(t, err, usecase.KindConflict)
}

func TestCategoryUsecase_GetBySlug_NotFound(t *testing.T) {
	categories := new(CategoryRepoMock)
	categories.On("FindBySlug", mock.Anything, "none").Return(model.Category{}, repo.ErrNotFound)

	uc := usecase.NewCategoryUsecase(categories)

	_, err := uc.GetBySlug(context.Background(), "none")
	assertErrKind(t, err, usecase.KindNotFound)
}

func TestCategoryUsecase_Update_RebuildsSlug(t *testing.T) {
	categories := new(CategoryRepoMock)

	categories.On("FindByID", mock.Anything, int64(1)).Return(model.Category{ID: 1, Name: "Old", Slug: "old"}, nil)
	categories.On("Update", mock.Anything, mock.MatchedBy(func(c model.Category) bool {
		return c.ID == 1 && c.Slug == "new-name"
	})).Return(nil)

	uc := usecase.NewCategoryUsecase(categories)

	out, err := uc.Update(context.Background(), model.RoleAdmin, 1, usecase.CategoryRequest{Name: "New Name"})
	assert.NoError(t, err)
	assert.Equal(t, "new-name", out.Slug)
}

func TestCategoryUsecase_Delete_NonAdminForbidden(t *testing.T) {
	categories := new(CategoryRepoMock)
	uc := usecase.NewCategoryUsecase(categories)

	err := uc.Delete(context.Background(), model.RoleBuyer, 1)
	assertErrKind(t, err, usecase.KindAuthorization)
}
