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

func validAddressRequest() usecase.AddressRequest {
	return usecase.AddressRequest{
		Label:      "Home",
		Line1:      "1-2-3 Chiyoda",
		City:       "Tokyo",
		State:      "Tokyo",
		PostalCode: "100-0001",
	}
}

func TestAddressUsecase_Create_MissingFields(t *testing.T) {
	tx := new(TxManagerMock)
	addrRepo := new(AddressRepoMock)
	uc := usecase.NewAddressUsecase(tx, addrRepo)

	req := validAddressRequest()
	req.PostalCode = ""

	_, err := uc.Create(context.Background(), 1, req)
	assertErrKind(t, err, usecase.KindValidation)
}

func TestAddressUsecase_Create_Default_ClearsOthersFirst(t *testing.T) {
	tx := new(TxManagerMock)
	addrRepo := new(AddressRepoMock)
	txAddrRepo := new(AddressRepoMock)

	tx.Repos = &TxReposMock{addresses: txAddrRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	txAddrRepo.On("ClearDefaults", mock.Anything, int64(1)).Return(nil)
	txAddrRepo.On("Create", mock.Anything, mock.MatchedBy(func(a model.Address) bool {
		return a.UserID == 1 && a.IsDefault
	})).Return(model.Address{ID: 9, UserID: 1, IsDefault: true}, nil)

	uc := usecase.NewAddressUsecase(tx, addrRepo)

	req := validAddressRequest()
	req.IsDefault = true

	out, err := uc.Create(context.Background(), 1, req)
	assert.NoError(t, err)
	assert.True(t, out.IsDefault)

	txAddrRepo.AssertExpectations(t)
}

func TestAddressUsecase_Create_NonDefault_KeepsOthers(t *testing.T) {
	tx := new(TxManagerMock)
	addrRepo := new(AddressRepoMock)
	txAddrRepo := new(AddressRepoMock)

	tx.Repos = &TxReposMock{addresses: txAddrRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	txAddrRepo.On("Create", mock.Anything, mock.Anything).Return(model.Address{ID: 9, UserID: 1}, nil)

	uc := usecase.NewAddressUsecase(tx, addrRepo)

	_, err := uc.Create(context.Background(), 1, validAddressRequest())
	assert.NoError(t, err)

	txAddrRepo.AssertNotCalled(t, "ClearDefaults", mock.Anything, mock.Anything)
}

func TestAddressUsecase_Get_NotOwner(t *testing.T) {
	tx := new(TxManagerMock)
	addrRepo := new(AddressRepoMock)
	addrRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Address{ID: 5, UserID: 99}, nil)

	uc := usecase.NewAddressUsecase(tx, addrRepo)

	_, err := uc.Get(context.Background(), 1, 5)
	assertErrKind(t, err, usecase.KindAuthorization)
}

func TestAddressUsecase_Get_NotFound(t *testing.T) {
	tx := new(TxManagerMock)
	addrRepo := new(AddressRepoMock)
	addrRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Address{}, repo.ErrNotFound)

	uc := usecase.NewAddressUsecase(tx, addrRepo)

	_, err := uc.Get(context.Background(), 1, 5)
	assertErrKind(t, err, usecase.KindNotFound)
}

func TestAddressUsecase_Update_PromoteToDefault(t *testing.T) {
	tx := new(TxManagerMock)
	addrRepo := new(AddressRepoMock)
	txAddrRepo := new(AddressRepoMock)

	tx.Repos = &TxReposMock{addresses: txAddrRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	txAddrRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Address{ID: 5, UserID: 1, IsDefault: false}, nil)
	txAddrRepo.On("ClearDefaults", mock.Anything, int64(1)).Return(nil)
	txAddrRepo.On("Update", mock.Anything, mock.MatchedBy(func(a model.Address) bool {
		return a.ID == 5 && a.IsDefault
	})).Return(nil)

	uc := usecase.NewAddressUsecase(tx, addrRepo)

	req := validAddressRequest()
	req.IsDefault = true

	out, err := uc.Update(context.Background(), 1, 5, req)
	assert.NoError(t, err)
	assert.True(t, out.IsDefault)

	txAddrRepo.AssertExpectations(t)
}

func TestAddressUsecase_Update_NotOwner(t *testing.T) {
	tx := new(TxManagerMock)
	addrRepo := new(AddressRepoMock)
	txAddrRepo := new(AddressRepoMock)

	tx.Repos = &TxReposMock{addresses: txAddrRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	txAddrRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Address{ID: 5, UserID: 99}, nil)

	uc := usecase.NewAddressUsecase(tx, addrRepo)

	_, err := uc.Update(context.Background(), 1, 5, validAddressRequest())
	assertErrKind(t, err, usecase.KindAuthorization)

	txAddrRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAddressUsecase_Delete_ReferencedByOrder(t *testing.T) {
	tx := new(TxManagerMock)
	addrRepo := new(AddressRepoMock)
	txAddrRepo := new(AddressRepoMock)
	ordersRepo := new(OrderRepoMock)

	tx.Repos = &TxReposMock{addresses: txAddrRepo, orders: ordersRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	txAddrRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Address{ID: 5, UserID: 1}, nil)
	ordersRepo.On("CountByAddressID", mock.Anything, int64(5)).Return(int64(2), nil)

	uc := usecase.NewAddressUsecase(tx, addrRepo)

	err := uc.Delete(context.Background(), 1, 5)
	assertErrKind(t, err, usecase.KindConflict)
	assertErrContains(t, err, "address in use")

	txAddrRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestAddressUsecase_Delete_Success(t *testing.T) {
	tx := new(TxManagerMock)
	addrRepo := new(AddressRepoMock)
	txAddrRepo := new(AddressRepoMock)
	ordersRepo := new(OrderRepoMock)

	tx.Repos = &TxReposMock{addresses: txAddrRepo, orders: ordersRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	txAddrRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Address{ID: 5, UserID: 1}, nil)
	ordersRepo.On("CountByAddressID", mock.Anything, int64(5)).Return(int64(0), nil)
	txAddrRepo.On("Delete", mock.Anything, int64(5)).Return(nil)

	uc := usecase.NewAddressUsecase(tx, addrRepo)

	err := uc.Delete(context.Background(), 1, 5)
	assert.NoError(t, err)

	txAddrRepo.AssertExpectations(t)
}

func TestAddressUsecase_SetDefault_Switches(t *testing.T) {
	tx := new(TxManagerMock)
	addrRepo := new(AddressRepoMock)
	txAddrRepo := new(AddressRepoMock)

	tx.Repos = &TxReposMock{addresses: txAddrRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	txAddrRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Address{ID: 5, UserID: 1}, nil)
	txAddrRepo.On("ClearDefaults", mock.Anything, int64(1)).Return(nil)
	txAddrRepo.On("Update", mock.Anything, mock.MatchedBy(func(a model.Address) bool {
		return a.ID == 5 && a.IsDefault
	})).Return(nil)

	uc := usecase.NewAddressUsecase(tx, addrRepo)

	err := uc.SetDefault(context.Background(), 1, 5)
	assert.NoError(t, err)

	txAddrRepo.AssertExpectations(t)
}

func TestAddressUsecase_SetDefault_NotOwner(t *testing.T) {
	tx := new(TxManagerMock)
	addrRepo := new(AddressRepoMock)
	txAddrRepo := new(AddressRepoMock)

	tx.Repos = &TxReposMock{addresses: txAddrRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	txAddrRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Address{ID: 5, UserID: 99}, nil)

	uc := usecase.NewAddressUsecase(tx, addrRepo)

	err := uc.SetDefault(context.Background(), 1, 5)
	assertErrKind(t, err, usecase.KindAuthorization)

	txAddrRepo.AssertNotCalled(t, "ClearDefaults", mock.Anything, mock.Anything)
}
