package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Addresses() AddressRepository
	Categories() CategoryRepository
	Products() ProductRepository
	Inventory() InventoryRepository
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Tickets() TicketRepository
	TicketMessages() TicketMessageRepository
	AuditLogs() AuditLogRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// 途中でerrorを返せば全て巻き戻る（部分的な状態は残らない）
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
