package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

// ユーザーの保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成。emailの一意制約違反はErrDuplicate
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (model.User, error)
	//メールからユーザーを1件取得する。
	FindByEmail(ctx context.Context, email string) (model.User, error)
}
