package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

const itemsRows = "`id`, `name`, `market_hash_name`, `sell_reference_price`, `sell_min_price`, `buy_max_price`, `sell_num`, `buy_num`, `transacted_num`, `steam_market_url`, `updated_at`"

var _ ItemsModel = (*defaultItemsModel)(nil)

type (
	// ItemsModel exposes row-level access to the items table.
	ItemsModel interface {
		FindOne(ctx context.Context, id int64) (*Items, error)
		// FindOneByName matches on name or market_hash_name; the first row in
		// store order wins when both columns match different items.
		FindOneByName(ctx context.Context, name string) (*Items, error)
		// Touch unconditionally stamps updated_at and reports affected rows.
		Touch(ctx context.Context, id int64, ts time.Time) (int64, error)
	}

	defaultItemsModel struct {
		conn  sqlx.SqlConn
		table string
	}

	// Items mirrors the items table. Price columns are DECIMAL and nullable,
	// so they scan as sql.NullString to keep exact decimal text.
	Items struct {
		Id                 int64          `db:"id"`
		Name               string         `db:"name"`
		MarketHashName     string         `db:"market_hash_name"`
		SellReferencePrice sql.NullString `db:"sell_reference_price"`
		SellMinPrice       sql.NullString `db:"sell_min_price"`
		BuyMaxPrice        sql.NullString `db:"buy_max_price"`
		SellNum            sql.NullInt64  `db:"sell_num"`
		BuyNum             sql.NullInt64  `db:"buy_num"`
		TransactedNum      sql.NullInt64  `db:"transacted_num"`
		SteamMarketUrl     sql.NullString `db:"steam_market_url"`
		UpdatedAt          time.Time      `db:"updated_at"`
	}
)

// NewItemsModel returns a model for the items table.
func NewItemsModel(conn sqlx.SqlConn) ItemsModel {
	return &defaultItemsModel{conn: conn, table: "`items`"}
}

func (m *defaultItemsModel) FindOne(ctx context.Context, id int64) (*Items, error) {
	query := fmt.Sprintf("select %s from %s where `id` = ? limit 1", itemsRows, m.table)
	var resp Items
	err := m.conn.QueryRowCtx(ctx, &resp, query, id)
	switch {
	case err == nil:
		return &resp, nil
	case errors.Is(err, sqlx.ErrNotFound):
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

func (m *defaultItemsModel) FindOneByName(ctx context.Context, name string) (*Items, error) {
	query := fmt.Sprintf("select %s from %s where `name` = ? or `market_hash_name` = ? limit 1", itemsRows, m.table)
	var resp Items
	err := m.conn.QueryRowCtx(ctx, &resp, query, name, name)
	switch {
	case err == nil:
		return &resp, nil
	case errors.Is(err, sqlx.ErrNotFound):
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

func (m *defaultItemsModel) Touch(ctx context.Context, id int64, ts time.Time) (int64, error) {
	query := fmt.Sprintf("update %s set `updated_at` = ? where `id` = ?", m.table)
	res, err := m.conn.ExecCtx(ctx, query, ts, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
