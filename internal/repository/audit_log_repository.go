package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

// 監査ログの保存を約束
type AuditLogRepository interface {
	Create(ctx context.Context, l model.AuditLog) error
}
