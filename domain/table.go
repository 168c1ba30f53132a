package domain

// Table is a mongo collection name
type Table string

const (
	TableAuctions       Table = "auctions"
	TablePendingEntries Table = "pending_entries"
	TableAccounts       Table = "accounts"
	TableAssets         Table = "assets"
	TableEvents         Table = "events"
	TableSplitters      Table = "splitters"
)
