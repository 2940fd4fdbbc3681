package model

import "time"

type SenderType string

const (
	SenderTypeUser  SenderType = "USER"
	SenderTypeAdmin SenderType = "ADMIN"
)

// チケット内のメッセージ。追記専用、作成時刻順
type SupportMessage struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	TicketID   int64      `gorm:"not null;index" json:"ticket_id"`
	SenderType SenderType `gorm:"type:varchar(20);not null" json:"sender_type"`
	Body       string     `gorm:"type:text;not null" json:"body"`
	CreatedAt  time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
}
