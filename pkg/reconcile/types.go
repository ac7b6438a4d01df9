package reconcile

import (
	"context"
	"time"
)

// Item mirrors one row of the items table. Price columns are DECIMAL in
// MySQL and travel as strings; comparisons must go through ParsePrice so
// that "10.50" and "10.5" are treated as the same value.
type Item struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	MarketHashName     string    `json:"market_hash_name"`
	SellReferencePrice string    `json:"sell_reference_price"`
	SellMinPrice       string    `json:"sell_min_price"`
	BuyMaxPrice        string    `json:"buy_max_price"`
	SellNum            int64     `json:"sell_num"`
	BuyNum             int64     `json:"buy_num"`
	TransactedNum      int64     `json:"transacted_num"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// PriceSnapshot is the subset of item fields recorded in the price history.
type PriceSnapshot struct {
	SellReferencePrice string
	SellMinPrice       string
	BuyMaxPrice        string
	SellNum            int64
	BuyNum             int64
	TransactedNum      int64
}

// Snapshot extracts the history-relevant fields of an item.
func (i *Item) Snapshot() PriceSnapshot {
	return PriceSnapshot{
		SellReferencePrice: i.SellReferencePrice,
		SellMinPrice:       i.SellMinPrice,
		BuyMaxPrice:        i.BuyMaxPrice,
		SellNum:            i.SellNum,
		BuyNum:             i.BuyNum,
		TransactedNum:      i.TransactedNum,
	}
}

// Target identifies the item to refresh. Exactly one of ID or Name is
// expected; ID wins when both are set.
type Target struct {
	ID   int64
	Name string
}

// ItemStore is the persistence surface the coordinator relies on. Lookups
// return (nil, nil) when no row matches; hard store failures come back as
// errors.
type ItemStore interface {
	FindByID(ctx context.Context, id int64) (*Item, error)
	FindByName(ctx context.Context, name string) (*Item, error)
	// ForceTouch unconditionally stamps updated_at and reports affected rows.
	ForceTouch(ctx context.Context, id int64, ts time.Time) (int64, error)
	// AppendHistory inserts one price history row.
	AppendHistory(ctx context.Context, id int64, snap PriceSnapshot, ts time.Time) error
}

// Invoker triggers the external updater for an item. The coordinator always
// invokes by name: numeric ids are not reliable search keys for the crawler.
type Invoker interface {
	Invoke(ctx context.Context, itemName string) error
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, itemName string) error

func (f InvokerFunc) Invoke(ctx context.Context, itemName string) error {
	return f(ctx, itemName)
}

// PriceChange describes a reference price movement across a refresh.
type PriceChange struct {
	Before float64 `json:"before"`
	After  float64 `json:"after"`
	Diff   float64 `json:"diff"`
}

// Outcome is the result of one refresh reconciliation. It is built fresh per
// call and never persisted.
type Outcome struct {
	ItemBefore       *Item
	ItemAfter        *Item
	UpdaterSucceeded bool
	// Forced reports that the fallback path stamped the row because the
	// updater failed or the timestamp never advanced within the poll budget.
	Forced       bool
	DataUpdated  bool
	PriceChanged bool
	PriceChange  *PriceChange
	Message      string
	RefreshTime  time.Time
}
