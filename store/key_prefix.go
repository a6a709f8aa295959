package store

// Declare database key prefix for objects
const (
	PrefixAccount = "account:"
	PrefixMeta    = "meta:"

	MetaKeyLedger = PrefixMeta + "ledger"
)
