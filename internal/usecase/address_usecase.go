package usecase

import (
	"context"
	"errors"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

type AddressUsecase struct {
	tx        repo.TransactionManager
	addresses repo.AddressRepository
}

func NewAddressUsecase(tx repo.TransactionManager, addresses repo.AddressRepository) *AddressUsecase {
	return &AddressUsecase{tx: tx, addresses: addresses}
}

type AddressRequest struct {
	Label      string `json:"label"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	IsDefault  bool   `json:"is_default"`
}

type AddressOutput struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	Label      string `json:"label"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	IsDefault  bool   `json:"is_default"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func validateAddressRequest(req AddressRequest) error {
	if req.Label == "" || req.Line1 == "" || req.City == "" || req.State == "" || req.PostalCode == "" {
		return NewValidationError("address", "label, line1, city, state and postal_code are required")
	}
	return nil
}

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]AddressOutput, error) {
	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, NewInternalError()
	}

	out := make([]AddressOutput, 0, len(list))
	for i := range list {
		out = append(out, toAddressOutput(list[i]))
	}
	return out, nil
}

// 住所は本人しか見えない。ADMINにも見せない
func (u *AddressUsecase) Get(ctx context.Context, userID int64, addressID int64) (AddressOutput, error) {
	a, err := u.addresses.FindByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return AddressOutput{}, NewNotFoundError("address")
		}
		return AddressOutput{}, NewInternalError()
	}
	if a.UserID != userID {
		return AddressOutput{}, NewAuthorizationError("address")
	}
	return toAddressOutput(a), nil
}

// 作成。is_default=trueなら同一トランザクションで他のデフォルトを先に落とす
func (u *AddressUsecase) Create(ctx context.Context, userID int64, req AddressRequest) (AddressOutput, error) {
	if err := validateAddressRequest(req); err != nil {
		return AddressOutput{}, err
	}

	a := model.Address{
		UserID:     userID,
		Label:      req.Label,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		IsDefault:  req.IsDefault,
	}

	var created model.Address
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if req.IsDefault {
			//デフォルトはユーザーごとに1件だけ
			if err := r.Addresses().ClearDefaults(ctx, userID); err != nil {
				return NewInternalError()
			}
		}
		var err error
		created, err = r.Addresses().Create(ctx, a)
		if err != nil {
			return NewInternalError()
		}
		return nil
	})
	if err != nil {
		return AddressOutput{}, err
	}

	return toAddressOutput(created), nil
}

func (u *AddressUsecase) Update(ctx context.Context, userID int64, addressID int64, req AddressRequest) (AddressOutput, error) {
	if err := validateAddressRequest(req); err != nil {
		return AddressOutput{}, err
	}

	var updated model.Address
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//所有チェック（本人のみ）
		a, err := r.Addresses().FindByID(ctx, addressID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("address")
		}
		if err != nil {
			return NewInternalError()
		}
		if a.UserID != userID {
			return NewAuthorizationError("address")
		}

		if req.IsDefault && !a.IsDefault {
			if err := r.Addresses().ClearDefaults(ctx, userID); err != nil {
				return NewInternalError()
			}
		}

		a.Label = req.Label
		a.Line1 = req.Line1
		a.Line2 = req.Line2
		a.City = req.City
		a.State = req.State
		a.PostalCode = req.PostalCode
		a.IsDefault = req.IsDefault
		a.UpdatedAt = time.Now()

		if err := r.Addresses().Update(ctx, a); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewNotFoundError("address")
			}
			return NewInternalError()
		}
		updated = a
		return nil
	})
	if err != nil {
		return AddressOutput{}, err
	}

	return toAddressOutput(updated), nil
}

// 削除。注文が参照している住所は消せない
func (u *AddressUsecase) Delete(ctx context.Context, userID int64, addressID int64) error {
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		a, err := r.Addresses().FindByID(ctx, addressID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("address")
		}
		if err != nil {
			return NewInternalError()
		}
		if a.UserID != userID {
			return NewAuthorizationError("address")
		}

		count, err := r.Orders().CountByAddressID(ctx, addressID)
		if err != nil {
			return NewInternalError()
		}
		if count > 0 {
			return NewConflictError("address", "address in use")
		}

		if err := r.Addresses().Delete(ctx, addressID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewNotFoundError("address")
			}
			return NewInternalError()
		}
		return nil
	})
}

// デフォルト住所の切り替え
func (u *AddressUsecase) SetDefault(ctx context.Context, userID int64, addressID int64) error {
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		a, err := r.Addresses().FindByID(ctx, addressID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("address")
		}
		if err != nil {
			return NewInternalError()
		}
		if a.UserID != userID {
			return NewAuthorizationError("address")
		}

		if err := r.Addresses().ClearDefaults(ctx, userID); err != nil {
			return NewInternalError()
		}

		a.IsDefault = true
		a.UpdatedAt = time.Now()
		if err := r.Addresses().Update(ctx, a); err != nil {
			return NewInternalError()
		}
		return nil
	})
}

func toAddressOutput(a model.Address) AddressOutput {
	return AddressOutput{
		ID:         a.ID,
		UserID:     a.UserID,
		Label:      a.Label,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		IsDefault:  a.IsDefault,
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  a.UpdatedAt.Format(time.RFC3339),
	}
}
