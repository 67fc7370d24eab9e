package model

import (
	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/yerrors"
)

// CoinKind tags which ledger object a Coin references.
type CoinKind byte

const (
	CoinKindCoinbase CoinKind = iota
	CoinKindTransaction
)

func (k CoinKind) Valid() bool { return k == CoinKindCoinbase || k == CoinKindTransaction }

func (k CoinKind) String() string {
	switch k {
	case CoinKindCoinbase:
		return "Coinbase"
	case CoinKindTransaction:
		return "Transaction"
	default:
		return "Unknown"
	}
}

// Coin is a wallet-local view of one output the wallet can spend (in
// UCoins) or has spent (in SCoins).
type Coin struct {
	Date    codec.Time
	Secret  codec.SecretKey
	Kind    CoinKind
	ID      codec.Digest
	Idx     uint32
	Height  uint32
	HasData bool
	Tag     *codec.MAC
	Amount  codec.Amount
}

// Validate enforces the invariant that a coin with data carries a tag.
func (c *Coin) Validate() error {
	if !c.Kind.Valid() {
		return yerrors.New(yerrors.InvalidCoinKind, "Coin.Validate", c.Kind.String())
	}
	if c.HasData && c.Tag == nil {
		return yerrors.New(yerrors.InvalidCoin, "Coin.Validate", "has_data is set but no tag is present")
	}
	return nil
}

func (c *Coin) marshalInto(w *writer) error {
	if err := w.marshal(c.Date); err != nil {
		return err
	}
	w.bytes(c.Secret[:])
	w.byte(byte(c.Kind))
	w.bytes(c.ID[:])
	w.uint32(c.Idx)
	w.uint32(c.Height)
	if c.HasData {
		w.byte(1)
		w.bytes(c.Tag[:])
	} else {
		w.byte(0)
	}
	if err := w.marshal(c.Amount); err != nil {
		return err
	}
	return nil
}

func readCoin(r *reader) (Coin, error) {
	var c Coin
	date, err := r.time()
	if err != nil {
		return c, err
	}
	secret, err := r.secretKey()
	if err != nil {
		return c, err
	}
	kindByte, err := r.byte()
	if err != nil {
		return c, err
	}
	id, err := r.digest()
	if err != nil {
		return c, err
	}
	idx, err := r.uint32()
	if err != nil {
		return c, err
	}
	height, err := r.uint32()
	if err != nil {
		return c, err
	}
	hasData, err := r.byte()
	if err != nil {
		return c, err
	}
	c = Coin{Date: date, Secret: secret, Kind: CoinKind(kindByte), ID: id, Idx: idx, Height: height}
	if hasData != 0 {
		tag, err := r.mac()
		if err != nil {
			return c, err
		}
		c.HasData = true
		c.Tag = &tag
	}
	amount, err := r.amount()
	if err != nil {
		return c, err
	}
	c.Amount = amount
	if !c.Kind.Valid() {
		return c, yerrors.New(yerrors.InvalidCoinKind, "readCoin", c.Kind.String())
	}
	return c, nil
}

// MatchKey is the tuple create_raw matches incoming inputs against:
// (date, kind, id, idx, height) per spec.md §4.11.
type MatchKey struct {
	Date   codec.Time
	Kind   CoinKind
	ID     codec.Digest
	Idx    uint32
	Height uint32
}

func (c Coin) MatchKey() MatchKey {
	return MatchKey{Date: c.Date, Kind: c.Kind, ID: c.ID, Idx: c.Idx, Height: c.Height}
}
