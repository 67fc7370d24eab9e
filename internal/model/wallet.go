package model

import (
	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/yerrors"
)

// Wallet is a named collection of spent and unspent coins, with a
// balance kept equal to the sum of unspent amounts. It is stored only
// through internal/walletengine, encrypted at rest.
type Wallet struct {
	Name    string
	Balance codec.Amount
	SCoins  []Coin
	UCoins  []Coin
}

func (w *Wallet) MarshalBinary() ([]byte, error) {
	wr := &writer{}
	nameBytes := []byte(w.Name)
	wr.uint32(uint32(len(nameBytes)))
	wr.bytes(nameBytes)
	if err := wr.marshal(w.Balance); err != nil {
		return nil, err
	}
	wr.uint32(uint32(len(w.SCoins)))
	for i := range w.SCoins {
		if err := w.SCoins[i].marshalInto(wr); err != nil {
			return nil, err
		}
	}
	wr.uint32(uint32(len(w.UCoins)))
	for i := range w.UCoins {
		if err := w.UCoins[i].marshalInto(wr); err != nil {
			return nil, err
		}
	}
	return wr.Bytes(), nil
}

func (w *Wallet) UnmarshalBinary(b []byte) error {
	r := newReader("Wallet.UnmarshalBinary", b)
	nameLen, err := r.uint32()
	if err != nil {
		return err
	}
	nameBytes, err := r.take(int(nameLen))
	if err != nil {
		return err
	}
	balance, err := r.amount()
	if err != nil {
		return err
	}
	nSCoins, err := r.uint32()
	if err != nil {
		return err
	}
	scoins := make([]Coin, 0, nSCoins)
	for i := uint32(0); i < nSCoins; i++ {
		c, err := readCoin(r)
		if err != nil {
			return err
		}
		scoins = append(scoins, c)
	}
	nUCoins, err := r.uint32()
	if err != nil {
		return err
	}
	ucoins := make([]Coin, 0, nUCoins)
	for i := uint32(0); i < nUCoins; i++ {
		c, err := readCoin(r)
		if err != nil {
			return err
		}
		ucoins = append(ucoins, c)
	}
	if err := r.finish(); err != nil {
		return err
	}
	w.Name = string(nameBytes)
	w.Balance = balance
	w.SCoins = scoins
	w.UCoins = ucoins
	return nil
}

// Check verifies every coin's own invariant and that the wallet
// balance equals the sum of unspent amounts (spec.md §4.10 / universal
// invariant 1).
func (w *Wallet) Check() error {
	for i := range w.SCoins {
		if err := w.SCoins[i].Validate(); err != nil {
			return err
		}
	}
	sum := codec.ZeroAmount()
	for i := range w.UCoins {
		if err := w.UCoins[i].Validate(); err != nil {
			return err
		}
		sum = sum.Add(w.UCoins[i].Amount)
	}
	if sum.Cmp(w.Balance) != 0 {
		return yerrors.New(yerrors.InvalidValue, "Wallet.Check", "balance does not equal sum of unspent coin amounts")
	}
	return nil
}

// Recompute sets Balance to the sum of UCoins' amounts.
func (w *Wallet) Recompute() {
	sum := codec.ZeroAmount()
	for i := range w.UCoins {
		sum = sum.Add(w.UCoins[i].Amount)
	}
	w.Balance = sum
}
