package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

// サポートチケットの保存・取得を約束
type TicketRepository interface {
	Create(ctx context.Context, t model.SupportTicket) (model.SupportTicket, error)
	FindByID(ctx context.Context, ticketID int64) (model.SupportTicket, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.SupportTicket, int64, error)
	ListAll(ctx context.Context, page int, limit int) ([]model.SupportTicket, int64, error)
	UpdateStatus(ctx context.Context, ticketID int64, status model.TicketStatus) error
}

// メッセージは追記のみ。更新・削除は約束しない
type TicketMessageRepository interface {
	Create(ctx context.Context, m model.SupportMessage) (model.SupportMessage, error)
	//作成時刻の昇順で返す
	ListByTicketID(ctx context.Context, ticketID int64) ([]model.SupportMessage, error)
}
