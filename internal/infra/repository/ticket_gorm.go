package repository

import (
	"context"
	"errors"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"gorm.io/gorm"
)

type ticketGormRepository struct {
	db *gorm.DB
}

// DI
func NewTicketGormRepository(db *gorm.DB) repo.TicketRepository {
	return &ticketGormRepository{db: db}
}

func (r *ticketGormRepository) Create(ctx context.Context, t model.SupportTicket) (model.SupportTicket, error) {
	if err := r.db.WithContext(ctx).Create(&t).Error; err != nil {
		return model.SupportTicket{}, err
	}
	return t, nil
}

func (r *ticketGormRepository) FindByID(ctx context.Context, ticketID int64) (model.SupportTicket, error) {
	var t model.SupportTicket
	err := r.db.WithContext(ctx).First(&t, ticketID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.SupportTicket{}, repo.ErrNotFound
	}
	if err != nil {
		return model.SupportTicket{}, err
	}
	return t, nil
}

func (r *ticketGormRepository) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.SupportTicket, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.SupportTicket{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return []model.SupportTicket{}, 0, err
	}

	var items []model.SupportTicket
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		return []model.SupportTicket{}, 0, err
	}

	return items, total, nil
}

func (r *ticketGormRepository) ListAll(ctx context.Context, page int, limit int) ([]model.SupportTicket, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.SupportTicket{}).
		Count(&total).Error; err != nil {
		return []model.SupportTicket{}, 0, err
	}

	var items []model.SupportTicket
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		return []model.SupportTicket{}, 0, err
	}

	return items, total, nil
}

func (r *ticketGormRepository) UpdateStatus(ctx context.Context, ticketID int64, status model.TicketStatus) error {
	res := r.db.WithContext(ctx).Model(&model.SupportTicket{}).
		Where("id = ?", ticketID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type ticketMessageGormRepository struct {
	db *gorm.DB
}

// DI
func NewTicketMessageGormRepository(db *gorm.DB) repo.TicketMessageRepository {
	return &ticketMessageGormRepository{db: db}
}

func (r *ticketMessageGormRepository) Create(ctx context.Context, m model.SupportMessage) (model.SupportMessage, error) {
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return model.SupportMessage{}, err
	}
	return m, nil
}

// 作成時刻の昇順
func (r *ticketMessageGormRepository) ListByTicketID(ctx context.Context, ticketID int64) ([]model.SupportMessage, error) {
	var list []model.SupportMessage
	if err := r.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC, id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
