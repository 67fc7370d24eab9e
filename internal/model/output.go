package model

import (
	"github.com/yobicash/yobinode/internal/codec"
)

// Input references a prior output by (id, idx). Height carries the
// referenced output's own height: zero means the reference resolves to
// a Coinbase, non-zero means it resolves to a Transaction (spec.md
// §4.4's ancestor walk branches on exactly this field). Date and Kind
// mirror the matching ucoin's own fields, so create_raw can locate it
// by (date, kind, id, idx, height) equality (spec.md §4.11, §9 Open
// Question 2) without a side lookup.
type Input struct {
	Date   codec.Time
	Kind   CoinKind
	ID     codec.Digest
	Idx    uint32
	Height uint32
}

func (in Input) marshalInto(w *writer) error {
	if err := w.marshal(in.Date); err != nil {
		return err
	}
	w.byte(byte(in.Kind))
	w.bytes(in.ID[:])
	w.uint32(in.Idx)
	w.uint32(in.Height)
	return nil
}

func readInput(r *reader) (Input, error) {
	var in Input
	date, err := r.time()
	if err != nil {
		return in, err
	}
	kindByte, err := r.byte()
	if err != nil {
		return in, err
	}
	id, err := r.digest()
	if err != nil {
		return in, err
	}
	idx, err := r.uint32()
	if err != nil {
		return in, err
	}
	height, err := r.uint32()
	if err != nil {
		return in, err
	}
	return Input{Date: date, Kind: CoinKind(kindByte), ID: id, Idx: idx, Height: height}, nil
}

// MatchKey returns the tuple create_raw matches against a wallet's
// ucoins.
func (in Input) MatchKey() MatchKey {
	return MatchKey{Date: in.Date, Kind: in.Kind, ID: in.ID, Idx: in.Idx, Height: in.Height}
}

// OutputData is the optional data-reference carried by an Output,
// pointing at a Data record by its (checksum, tag) key.
type OutputData struct {
	Checksum codec.Digest
	Tag      codec.MAC
}

// Output is one destination of a Transaction or Coinbase: a height (used
// by ancestor enumeration and difficulty), a recipient, an amount, and
// an optional data reference.
type Output struct {
	Height    uint32
	Recipient codec.PublicKey
	Amount    codec.Amount
	Data      *OutputData
}

func (o Output) marshalInto(w *writer) error {
	w.uint32(o.Height)
	w.bytes(o.Recipient[:])
	if err := w.marshal(o.Amount); err != nil {
		return err
	}
	if o.Data != nil {
		w.byte(1)
		w.bytes(o.Data.Checksum[:])
		w.bytes(o.Data.Tag[:])
	} else {
		w.byte(0)
	}
	return nil
}

func readOutput(r *reader) (Output, error) {
	var o Output
	height, err := r.uint32()
	if err != nil {
		return o, err
	}
	recipient, err := r.publicKey()
	if err != nil {
		return o, err
	}
	amount, err := r.amount()
	if err != nil {
		return o, err
	}
	hasData, err := r.byte()
	if err != nil {
		return o, err
	}
	o = Output{Height: height, Recipient: recipient, Amount: amount}
	if hasData != 0 {
		checksum, err := r.digest()
		if err != nil {
			return o, err
		}
		tag, err := r.mac()
		if err != nil {
			return o, err
		}
		o.Data = &OutputData{Checksum: checksum, Tag: tag}
	}
	return o, nil
}
