// Package policy はロールごとの許可判定をまとめる。
// ルートごとにroleチェックを散らさず、ここの真偽表だけを全usecaseが使う。
package policy

import "marketplace/internal/domain/model"

// 他人のリソースに触れるのはADMINだけ。本人は常に可
func CanAccessOwned(role model.Role, actorID, ownerID int64) bool {
	if role == model.RoleAdmin {
		return true
	}
	return actorID == ownerID
}

// 商品の作成・更新・削除
func CanManageCatalog(role model.Role) bool {
	return role == model.RoleSeller || role == model.RoleAdmin
}

// カテゴリの作成・更新・削除はADMINのみ
func CanManageCategories(role model.Role) bool {
	return role == model.RoleAdmin
}

// 注文ステータスの変更。BUYERは閲覧のみ
func CanSetOrderStatus(role model.Role) bool {
	return role == model.RoleSeller || role == model.RoleAdmin
}

// チケットステータスの変更はADMINのみ
func CanSetTicketStatus(role model.Role) bool {
	return role == model.RoleAdmin
}
