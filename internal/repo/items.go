package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"buffotte-api/internal/model"
	"buffotte-api/pkg/reconcile"
)

const defaultSearchLimit = 20

// ItemSummary is the projection returned by catalogue search.
type ItemSummary struct {
	ID                 int64  `db:"id" json:"id"`
	Name               string `db:"name" json:"name"`
	MarketHashName     string `db:"market_hash_name" json:"market_hash_name"`
	SellMinPrice       string `db:"sell_min_price" json:"sell_min_price"`
	SellReferencePrice string `db:"sell_reference_price" json:"sell_reference_price"`
	SteamMarketURL     string `db:"steam_market_url" json:"steam_market_url"`
}

// ItemsRepo resolves and mutates catalogue items. It doubles as the
// reconciler's store: the coordinator talks to this type through the
// reconcile.ItemStore interface.
type ItemsRepo interface {
	reconcile.ItemStore

	// FindByIdentifier dispatches on the identifier shape: all-digits means
	// primary key, anything else matches name or market_hash_name exactly.
	FindByIdentifier(ctx context.Context, identifier string) (*reconcile.Item, error)

	// Search matches names by substring, most valuable items first.
	Search(ctx context.Context, q string, limit int) ([]ItemSummary, error)

	// Stalest returns the items whose data has gone longest without a
	// refresh, oldest first.
	Stalest(ctx context.Context, limit int) ([]reconcile.Item, error)
}

var _ reconcile.ItemStore = (*itemsRepo)(nil)

type itemsRepo struct {
	conn    sqlx.SqlConn
	items   model.ItemsModel
	history model.ItemsPriceHistoryModel
}

func newItemsRepo(deps Dependencies) ItemsRepo {
	return &itemsRepo{
		conn:    deps.DBConn,
		items:   deps.ItemsModel,
		history: deps.HistoryModel,
	}
}

func (r *itemsRepo) FindByID(ctx context.Context, id int64) (*reconcile.Item, error) {
	row, err := r.items.FindOne(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("itemsRepo.FindByID: %w", err)
	}
	return toDomainItem(row), nil
}

func (r *itemsRepo) FindByName(ctx context.Context, name string) (*reconcile.Item, error) {
	row, err := r.items.FindOneByName(ctx, name)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("itemsRepo.FindByName: %w", err)
	}
	return toDomainItem(row), nil
}

func (r *itemsRepo) FindByIdentifier(ctx context.Context, identifier string) (*reconcile.Item, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, nil
	}
	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil && id > 0 {
		return r.FindByID(ctx, id)
	}
	return r.FindByName(ctx, identifier)
}

func (r *itemsRepo) ForceTouch(ctx context.Context, id int64, ts time.Time) (int64, error) {
	affected, err := r.items.Touch(ctx, id, ts)
	if err != nil {
		return 0, fmt.Errorf("itemsRepo.ForceTouch: %w", err)
	}
	return affected, nil
}

func (r *itemsRepo) AppendHistory(ctx context.Context, id int64, snap reconcile.PriceSnapshot, ts time.Time) error {
	_, err := r.history.Insert(ctx, &model.ItemsPriceHistory{
		ItemId:             id,
		SellReferencePrice: nullString(snap.SellReferencePrice),
		SellMinPrice:       nullString(snap.SellMinPrice),
		BuyMaxPrice:        nullString(snap.BuyMaxPrice),
		SellNum:            sql.NullInt64{Int64: snap.SellNum, Valid: true},
		BuyNum:             sql.NullInt64{Int64: snap.BuyNum, Valid: true},
		TransactedNum:      sql.NullInt64{Int64: snap.TransactedNum, Valid: true},
		RecordedAt:         ts,
	})
	if err != nil {
		return fmt.Errorf("itemsRepo.AppendHistory: %w", err)
	}
	return nil
}

func (r *itemsRepo) Search(ctx context.Context, q string, limit int) ([]ItemSummary, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < 2 {
		return nil, nil
	}
	if limit <= 0 || limit > defaultSearchLimit {
		limit = defaultSearchLimit
	}

	query := `
SELECT
    id,
    name,
    market_hash_name,
    COALESCE(sell_min_price, '') AS sell_min_price,
    COALESCE(sell_reference_price, '') AS sell_reference_price,
    COALESCE(steam_market_url, '') AS steam_market_url
FROM items
WHERE name LIKE ? OR market_hash_name LIKE ?
ORDER BY sell_reference_price DESC
LIMIT ?`

	term := "%" + q + "%"
	var rows []ItemSummary
	if err := r.conn.QueryRowsCtx(ctx, &rows, query, term, term, limit); err != nil {
		return nil, fmt.Errorf("itemsRepo.Search: %w", err)
	}
	return rows, nil
}

func (r *itemsRepo) Stalest(ctx context.Context, limit int) ([]reconcile.Item, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	query := `
SELECT id, name, market_hash_name, sell_reference_price, sell_min_price,
    buy_max_price, sell_num, buy_num, transacted_num, updated_at
FROM items
ORDER BY updated_at ASC
LIMIT ?`

	var rows []*model.Items
	if err := r.conn.QueryRowsCtx(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("itemsRepo.Stalest: %w", err)
	}

	items := make([]reconcile.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, *toDomainItem(row))
	}
	return items, nil
}

func toDomainItem(row *model.Items) *reconcile.Item {
	if row == nil {
		return nil
	}
	return &reconcile.Item{
		ID:                 row.Id,
		Name:               row.Name,
		MarketHashName:     row.MarketHashName,
		SellReferencePrice: row.SellReferencePrice.String,
		SellMinPrice:       row.SellMinPrice.String,
		BuyMaxPrice:        row.BuyMaxPrice.String,
		SellNum:            row.SellNum.Int64,
		BuyNum:             row.BuyNum.Int64,
		TransactedNum:      row.TransactedNum.Int64,
		UpdatedAt:          row.UpdatedAt,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: strings.TrimSpace(s) != ""}
}
