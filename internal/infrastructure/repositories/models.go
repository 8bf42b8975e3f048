package repositories

// tableMeta describes how an entity kind maps onto its Postgres table.
// Columns are the db-tag names in insert order; versioned tables carry an
// optimistic concurrency column checked on every update.
type tableMeta struct {
	table     string
	columns   []string
	versioned bool
}

var (
	assetMeta = tableMeta{
		table: "assets",
		columns: []string{
			"id", "symbol", "name", "asset_type", "exchange", "currency",
			"is_active", "created_at", "updated_at",
		},
	}

	portfolioMeta = tableMeta{
		table: "portfolios",
		columns: []string{
			"id", "user_id", "name", "description", "base_currency",
			"is_default", "created_at", "updated_at",
		},
	}

	positionMeta = tableMeta{
		table: "portfolio_positions",
		columns: []string{
			"id", "portfolio_id", "asset_id", "quantity",
			"average_purchase_price", "current_price", "last_price_update",
			"version", "created_at", "updated_at",
		},
		versioned: true,
	}

	transactionMeta = tableMeta{
		table: "transactions",
		columns: []string{
			"id", "portfolio_id", "asset_id", "transaction_type", "quantity",
			"price_per_unit", "commission", "transaction_date", "notes",
			"created_at",
		},
	}

	priceAlertMeta = tableMeta{
		table: "price_alerts",
		columns: []string{
			"id", "user_id", "asset_id", "target_price", "direction",
			"notify_email", "is_active", "is_triggered", "triggered_at",
			"created_at", "updated_at",
		},
	}

	marketDataMeta = tableMeta{
		table: "market_data_snapshots",
		columns: []string{
			"id", "asset_id", "price", "open_price", "high_price",
			"low_price", "volume", "change", "change_percent", "data_source",
			"last_updated",
		},
	}

	watchlistMeta = tableMeta{
		table: "watchlists",
		columns: []string{
			"id", "user_id", "name", "description", "is_default",
			"created_at", "updated_at",
		},
	}

	watchlistItemMeta = tableMeta{
		table: "watchlist_items",
		columns: []string{
			"id", "watchlist_id", "asset_id", "notes", "added_at",
		},
	}

	auditLogMeta = tableMeta{
		table: "audit_logs",
		columns: []string{
			"id", "user_id", "action", "resource", "resource_id", "metadata",
			"created_at",
		},
	}
)
