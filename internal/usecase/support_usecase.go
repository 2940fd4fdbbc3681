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
)

type SupportUsecase struct {
	tx       repo.TransactionManager
	tickets  repo.TicketRepository
	messages repo.TicketMessageRepository
}

func NewSupportUsecase(tx repo.TransactionManager, tickets repo.TicketRepository, messages repo.TicketMessageRepository) *SupportUsecase {
	return &SupportUsecase{tx: tx, tickets: tickets, messages: messages}
}

type TicketCreateRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

type MessageRequest struct {
	Body string `json:"body"`
}

type MessageOutput struct {
	ID         int64  `json:"id"`
	TicketID   int64  `json:"ticket_id"`
	SenderType string `json:"sender_type"`
	Body       string `json:"body"`
	CreatedAt  string `json:"created_at"`
}

type TicketOutput struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Subject     string          `json:"subject"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Messages    []MessageOutput `json:"messages,omitempty"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

type TicketListOutput struct {
	Items      []TicketOutput `json:"items"`
	Pagination Pagination     `json:"pagination"`
}

// チケット作成。誰でも自分のチケットを作れる。初期ステータスはOPEN
func (u *SupportUsecase) CreateTicket(ctx context.Context, userID int64, req TicketCreateRequest) (TicketOutput, error) {
	if strings.TrimSpace(req.Subject) == "" {
		return TicketOutput{}, NewValidationError("ticket", "subject is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		return TicketOutput{}, NewValidationError("ticket", "description is required")
	}

	t := model.SupportTicket{
		UserID:      userID,
		Subject:     strings.TrimSpace(req.Subject),
		Description: req.Description,
		Status:      model.TicketStatusOpen,
	}

	created, err := u.tickets.Create(ctx, t)
	if err != nil {
		return TicketOutput{}, NewInternalError()
	}
	return toTicketOutput(created, nil), nil
}

// 詳細。本人かADMINのみ。メッセージは作成時刻順で含める
func (u *SupportUsecase) GetTicket(ctx context.Context, actorID int64, role model.Role, ticketID int64) (TicketOutput, error) {
	t, err := u.tickets.FindByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return TicketOutput{}, NewNotFoundError("ticket")
		}
		return TicketOutput{}, NewInternalError()
	}

	if !policy.CanAccessOwned(role, actorID, t.UserID) {
		return TicketOutput{}, NewAuthorizationError("ticket")
	}

	msgs, err := u.messages.ListByTicketID(ctx, ticketID)
	if err != nil {
		return TicketOutput{}, NewInternalError()
	}

	return toTicketOutput(t, msgs), nil
}

func (u *SupportUsecase) ListMine(ctx context.Context, userID int64, page, limit int) (TicketListOutput, error) {
	page, limit, err := normalizePage(page, limit)
	if err != nil {
		return TicketListOutput{}, err
	}

	tickets, total, err := u.tickets.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return TicketListOutput{}, NewInternalError()
	}

	return TicketListOutput{
		Items:      toTicketOutputs(tickets),
		Pagination: newPagination(page, limit, total),
	}, nil
}

// 全チケット一覧（ADMINのみ）
func (u *SupportUsecase) ListAll(ctx context.Context, role model.Role, page, limit int) (TicketListOutput, error) {
	if role != model.RoleAdmin {
		return TicketListOutput{}, NewAuthorizationError("ticket")
	}

	page, limit, err := normalizePage(page, limit)
	if err != nil {
		return TicketListOutput{}, err
	}

	tickets, total, err := u.tickets.ListAll(ctx, page, limit)
	if err != nil {
		return TicketListOutput{}, NewInternalError()
	}

	return TicketListOutput{
		Items:      toTicketOutputs(tickets),
		Pagination: newPagination(page, limit, total),
	}, nil
}

// メッセージ追記。本人かADMINのみ。編集・削除は無い
func (u *SupportUsecase) AddMessage(ctx context.Context, actorID int64, role model.Role, ticketID int64, req MessageRequest) (MessageOutput, error) {
	if strings.TrimSpace(req.Body) == "" {
		return MessageOutput{}, NewValidationError("message", "body is required")
	}

	t, err := u.tickets.FindByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return MessageOutput{}, NewNotFoundError("ticket")
		}
		return MessageOutput{}, NewInternalError()
	}

	if !policy.CanAccessOwned(role, actorID, t.UserID) {
		return MessageOutput{}, NewAuthorizationError("ticket")
	}

	senderType := model.SenderTypeUser
	if role == model.RoleAdmin {
		senderType = model.SenderTypeAdmin
	}

	m := model.SupportMessage{
		TicketID:   ticketID,
		SenderType: senderType,
		Body:       req.Body,
	}

	created, err := u.messages.Create(ctx, m)
	if err != nil {
		return MessageOutput{}, NewInternalError()
	}
	return toMessageOutput(created), nil
}

// ステータス変更はADMINのみ。遷移表にない変更は拒否
func (u *SupportUsecase) UpdateStatus(ctx context.Context, actorID int64, role model.Role, ticketID int64, newStatus string) (TicketOutput, error) {
	if !policy.CanSetTicketStatus(role) {
		return TicketOutput{}, NewAuthorizationError("ticket")
	}

	next, ok := model.ParseTicketStatus(strings.TrimSpace(newStatus))
	if !ok {
		return TicketOutput{}, NewValidationError("ticket", "invalid status")
	}

	var out TicketOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		t, err := r.Tickets().FindByID(ctx, ticketID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("ticket")
		}
		if err != nil {
			return NewInternalError()
		}

		//すでに同じなら何もしない
		if t.Status == next {
			out = toTicketOutput(t, nil)
			return nil
		}

		if !t.Status.CanTransitionTo(next) {
			return NewConflictError("ticket", fmt.Sprintf("cannot change %s ticket to %s", t.Status, next))
		}

		if err := r.Tickets().UpdateStatus(ctx, ticketID, next); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewNotFoundError("ticket")
			}
			return NewInternalError()
		}

		//監査ログ
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorID,
			Action:       model.AuditActionUpdateTicketStatus,
			ResourceType: model.AuditResourceTicket,
			ResourceID:   ticketID,
			BeforeJSON:   `{"status":"` + string(t.Status) + `"}`,
			AfterJSON:    `{"status":"` + string(next) + `"}`,
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewInternalError()
		}

		t.Status = next
		out = toTicketOutput(t, nil)
		return nil
	})

	if err != nil {
		return TicketOutput{}, err
	}
	return out, nil
}

func toTicketOutput(t model.SupportTicket, msgs []model.SupportMessage) TicketOutput {
	out := TicketOutput{
		ID:          t.ID,
		UserID:      t.UserID,
		Subject:     t.Subject,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
	for _, m := range msgs {
		out.Messages = append(out.Messages, toMessageOutput(m))
	}
	return out
}

func toTicketOutputs(list []model.SupportTicket) []TicketOutput {
	out := make([]TicketOutput, 0, len(list))
	for i := range list {
		out = append(out, toTicketOutput(list[i], nil))
	}
	return out
}

func toMessageOutput(m model.SupportMessage) MessageOutput {
	return MessageOutput{
		ID:         m.ID,
		TicketID:   m.TicketID,
		SenderType: string(m.SenderType),
		Body:       m.Body,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
	}
}
