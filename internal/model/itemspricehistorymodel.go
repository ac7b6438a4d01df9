package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// mysqlErrNoSuchTable is ER_NO_SUCH_TABLE; history reads tolerate it so the
// dashboard works before the first refresh ever created the table.
const mysqlErrNoSuchTable = 1146

const itemsPriceHistoryRows = "`id`, `item_id`, `sell_reference_price`, `sell_min_price`, `buy_max_price`, `sell_num`, `buy_num`, `transacted_num`, `recorded_at`"

var _ ItemsPriceHistoryModel = (*defaultItemsPriceHistoryModel)(nil)

type (
	// ItemsPriceHistoryModel exposes the append-only price history table.
	ItemsPriceHistoryModel interface {
		Insert(ctx context.Context, data *ItemsPriceHistory) (sql.Result, error)
		// ListByItem returns rows ordered by recorded_at ascending. A missing
		// table yields an empty result, not an error.
		ListByItem(ctx context.Context, itemId int64, limit int) ([]*ItemsPriceHistory, error)
		// EnsureTable creates the history table and its indexes if absent.
		EnsureTable(ctx context.Context) error
	}

	defaultItemsPriceHistoryModel struct {
		conn  sqlx.SqlConn
		table string
	}

	ItemsPriceHistory struct {
		Id                 int64          `db:"id"`
		ItemId             int64          `db:"item_id"`
		SellReferencePrice sql.NullString `db:"sell_reference_price"`
		SellMinPrice       sql.NullString `db:"sell_min_price"`
		BuyMaxPrice        sql.NullString `db:"buy_max_price"`
		SellNum            sql.NullInt64  `db:"sell_num"`
		BuyNum             sql.NullInt64  `db:"buy_num"`
		TransactedNum      sql.NullInt64  `db:"transacted_num"`
		RecordedAt         time.Time      `db:"recorded_at"`
	}
)

// NewItemsPriceHistoryModel returns a model for the items_price_history table.
func NewItemsPriceHistoryModel(conn sqlx.SqlConn) ItemsPriceHistoryModel {
	return &defaultItemsPriceHistoryModel{conn: conn, table: "`items_price_history`"}
}

func (m *defaultItemsPriceHistoryModel) Insert(ctx context.Context, data *ItemsPriceHistory) (sql.Result, error) {
	query := fmt.Sprintf("insert into %s (`item_id`, `sell_reference_price`, `sell_min_price`, `buy_max_price`, `sell_num`, `buy_num`, `transacted_num`, `recorded_at`) values (?, ?, ?, ?, ?, ?, ?, ?)", m.table)
	return m.conn.ExecCtx(ctx, query,
		data.ItemId,
		data.SellReferencePrice,
		data.SellMinPrice,
		data.BuyMaxPrice,
		data.SellNum,
		data.BuyNum,
		data.TransactedNum,
		data.RecordedAt,
	)
}

func (m *defaultItemsPriceHistoryModel) ListByItem(ctx context.Context, itemId int64, limit int) ([]*ItemsPriceHistory, error) {
	if limit <= 0 {
		limit = 500
	}
	query := fmt.Sprintf("select %s from %s where `item_id` = ? order by `recorded_at` asc limit ?", itemsPriceHistoryRows, m.table)
	var rows []*ItemsPriceHistory
	err := m.conn.QueryRowsCtx(ctx, &rows, query, itemId, limit)
	if err != nil {
		if isNoSuchTable(err) {
			return nil, nil
		}
		return nil, err
	}
	return rows, nil
}

func (m *defaultItemsPriceHistoryModel) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  `+"`id`"+` BIGINT AUTO_INCREMENT PRIMARY KEY,
  `+"`item_id`"+` BIGINT NOT NULL,
  `+"`sell_reference_price`"+` DECIMAL(16,6),
  `+"`sell_min_price`"+` DECIMAL(16,6),
  `+"`buy_max_price`"+` DECIMAL(16,6),
  `+"`sell_num`"+` INT,
  `+"`buy_num`"+` INT,
  `+"`transacted_num`"+` INT,
  `+"`recorded_at`"+` TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
  INDEX `+"`idx_item_time`"+` (`+"`item_id`"+`, `+"`recorded_at`"+`),
  INDEX `+"`idx_recorded_at`"+` (`+"`recorded_at`"+`)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, m.table)
	_, err := m.conn.ExecCtx(ctx, query)
	return err
}

func isNoSuchTable(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrNoSuchTable
}
