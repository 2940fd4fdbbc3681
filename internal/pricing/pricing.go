// Package pricing は注文金額の計算だけを行う。状態を持たない。
// 金額は固定小数（numeric(12,2)）で扱い、floatは使わない。
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	//税率5%
	TaxRate = decimal.RequireFromString("0.05")

	//配送料は固定
	DeliveryFee = decimal.RequireFromString("50")
)

// 小数第2位=通貨の最小単位。四捨五入（round half up）で固定
const moneyScale = 2

var ErrEmptyOrder = errors.New("order has no items")

// 不正な数量
type InvalidQuantityError struct {
	ProductID int64
	Quantity  int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for product %d", e.Quantity, e.ProductID)
}

// カタログに無い、または非アクティブな商品
type UnavailableProductError struct {
	ProductID int64
}

func (e *UnavailableProductError) Error() string {
	return fmt.Sprintf("product %d is not available", e.ProductID)
}

// 注文リクエストの1行（買い手が指定できるのは商品と数量だけ）
type Line struct {
	ProductID int64
	Quantity  int64
}

// 計算済みの1行。単価はカタログの現在価格
type PricedLine struct {
	ProductID int64
	Quantity  int64
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

type Quote struct {
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
	Lines       []PricedLine
}

// カタログ側の現在価格
type CatalogEntry struct {
	UnitPrice decimal.Decimal
	Active    bool
}

type PriceLookup map[int64]CatalogEntry

// ComputeOrder は明細から小計・税・配送料・合計を決める。
// 同じカタログ状態なら同じ入力は必ず同じ結果になる。
func ComputeOrder(lines []Line, catalog PriceLookup) (Quote, error) {
	if len(lines) == 0 {
		return Quote{}, ErrEmptyOrder
	}

	priced := make([]PricedLine, 0, len(lines))
	subtotal := decimal.Zero

	for _, l := range lines {
		if l.Quantity <= 0 {
			return Quote{}, &InvalidQuantityError{ProductID: l.ProductID, Quantity: l.Quantity}
		}

		entry, ok := catalog[l.ProductID]
		if !ok || !entry.Active {
			return Quote{}, &UnavailableProductError{ProductID: l.ProductID}
		}

		//単価×数量。数量は整数なので丸めは単価の桁のまま
		lineTotal := entry.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)).Round(moneyScale)
		subtotal = subtotal.Add(lineTotal)

		priced = append(priced, PricedLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: entry.UnitPrice,
			LineTotal: lineTotal,
		})
	}

	//正の金額に対するRound(2)はround half up
	tax := subtotal.Mul(TaxRate).Round(moneyScale)
	total := subtotal.Add(tax).Add(DeliveryFee)

	return Quote{
		Subtotal:    subtotal,
		Tax:         tax,
		DeliveryFee: DeliveryFee,
		Total:       total,
		Lines:       priced,
	}, nil
}
