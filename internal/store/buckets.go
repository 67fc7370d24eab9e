package store

// The closed bucket catalog (spec.md §4.2). Unknown is reserved for
// forward compatibility and must never be written.
const (
	Transactions    Bucket = "transactions"
	Coinbases       Bucket = "coinbases"
	Data            Bucket = "data"
	UTXO            Bucket = "utxo"
	Wallets         Bucket = "wallets"
	PeersByAddress  Bucket = "peers_by_address"
	PeersByLastSeen Bucket = "peers_by_last_seen"
	Keys            Bucket = "keys"
	Unknown         Bucket = "unknown"
)
