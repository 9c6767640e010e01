package exchange

import (
	"encoding/json"
	"strconv"

	"MarketViewer/internal/model"

	"github.com/shopspring/decimal"
)

// wireTrade is a raw trade as returned by /trades
type wireTrade struct {
	ID           json.Number `json:"id"`
	Price        string      `json:"price"`
	Qty          string      `json:"qty"`
	QuoteQty     string      `json:"quoteQty"`
	Time         int64       `json:"time"`
	IsBuyerMaker bool        `json:"isBuyerMaker"`
	IsBestMatch  bool        `json:"isBestMatch"`
}

func (t wireTrade) toModel() model.Trade {
	return model.Trade{
		ID:            t.ID.String(),
		Price:         t.Price,
		Quantity:      t.Qty,
		QuoteQuantity: t.QuoteQty,
		Timestamp:     t.Time,
		IsBuyerMaker:  t.IsBuyerMaker,
		IsBestMatch:   t.IsBestMatch,
	}
}

// wireAggTrade is the compact record returned by /aggTrades.
// BestMatch is decoded so that "M" does not fall through to "m" under
// case-insensitive key matching.
type wireAggTrade struct {
	ID        int64  `json:"a"`
	Price     string `json:"p"`
	Qty       string `json:"q"`
	FirstID   int64  `json:"f"`
	LastID    int64  `json:"l"`
	Time      int64  `json:"T"`
	Maker     bool   `json:"m"`
	BestMatch bool   `json:"M"`
}

func (t wireAggTrade) toModel() model.Trade {
	return model.Trade{
		ID:            strconv.FormatInt(t.ID, 10),
		Price:         t.Price,
		Quantity:      t.Qty,
		QuoteQuantity: quoteQuantity(t.Price, t.Qty),
		Timestamp:     t.Time,
		IsBuyerMaker:  !t.Maker,
		IsBestMatch:   true,
	}
}

// quoteQuantity computes price*qty exactly. Unparseable input yields "0".
func quoteQuantity(price, qty string) string {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return "0"
	}
	q, err := decimal.NewFromString(qty)
	if err != nil {
		return "0"
	}
	return p.Mul(q).String()
}
