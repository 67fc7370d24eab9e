package model

import (
	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/store"
	"github.com/yobicash/yobinode/internal/ycrypto"
	"github.com/yobicash/yobinode/internal/yerrors"
)

// CurrentVersion is the protocol version new transactions, coinbases
// and RPC envelopes are stamped with.
var CurrentVersion = codec.Version{Major: 1, Minor: 0, Patch: 0}

// Transaction is a ledger entry: a set of inputs spending prior
// outputs and a set of new outputs. Identity is the 64-byte digest of
// its canonical encoding without the id field itself.
type Transaction struct {
	Version codec.Version
	Time    codec.Time
	Inputs  []Input
	Outputs []Output
	ID      codec.Digest
}

// NewTransaction builds a Transaction and derives its id from the
// other fields. Outputs must be non-empty (ancestor enumeration reads
// outputs[0].height).
func NewTransaction(version codec.Version, t codec.Time, inputs []Input, outputs []Output) (*Transaction, error) {
	if len(outputs) == 0 {
		return nil, yerrors.New(yerrors.InvalidValue, "NewTransaction", "transaction must have at least one output")
	}
	tx := &Transaction{Version: version, Time: t, Inputs: inputs, Outputs: outputs}
	id, err := tx.computeID()
	if err != nil {
		return nil, err
	}
	tx.ID = id
	return tx, nil
}

func (tx *Transaction) bytesWithoutID() ([]byte, error) {
	w := &writer{}
	if err := w.marshal(tx.Version); err != nil {
		return nil, err
	}
	if err := w.marshal(tx.Time); err != nil {
		return nil, err
	}
	w.uint32(uint32(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		if err := in.marshalInto(w); err != nil {
			return nil, err
		}
	}
	w.uint32(uint32(len(tx.Outputs)))
	for _, o := range tx.Outputs {
		if err := o.marshalInto(w); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func (tx *Transaction) computeID() (codec.Digest, error) {
	b, err := tx.bytesWithoutID()
	if err != nil {
		return codec.Digest{}, err
	}
	return ycrypto.Hash(b), nil
}

// MarshalBinary returns the canonical stored byte form (body || id).
func (tx *Transaction) MarshalBinary() ([]byte, error) {
	body, err := tx.bytesWithoutID()
	if err != nil {
		return nil, err
	}
	return append(body, tx.ID[:]...), nil
}

// UnmarshalBinary parses a stored Transaction. It does not recompute
// the id; callers that need the invariant checked call Validate.
func (tx *Transaction) UnmarshalBinary(b []byte) error {
	r := newReader("Transaction.UnmarshalBinary", b)
	version, err := r.version()
	if err != nil {
		return err
	}
	t, err := r.time()
	if err != nil {
		return err
	}
	nIn, err := r.uint32()
	if err != nil {
		return err
	}
	inputs := make([]Input, 0, nIn)
	for i := uint32(0); i < nIn; i++ {
		in, err := readInput(r)
		if err != nil {
			return err
		}
		inputs = append(inputs, in)
	}
	nOut, err := r.uint32()
	if err != nil {
		return err
	}
	outputs := make([]Output, 0, nOut)
	for i := uint32(0); i < nOut; i++ {
		o, err := readOutput(r)
		if err != nil {
			return err
		}
		outputs = append(outputs, o)
	}
	id, err := r.digest()
	if err != nil {
		return err
	}
	if err := r.finish(); err != nil {
		return err
	}
	tx.Version, tx.Time, tx.Inputs, tx.Outputs, tx.ID = version, t, inputs, outputs, id
	return nil
}

// Validate reports InvalidValue if the stored id does not match the
// hash of the rest of the transaction (universal invariant 2's sibling
// for transactions).
func (tx *Transaction) Validate() error {
	id, err := tx.computeID()
	if err != nil {
		return err
	}
	if id != tx.ID {
		return yerrors.New(yerrors.InvalidValue, "Transaction.Validate", "id does not match canonical bytes")
	}
	return nil
}

// CreateTransaction stores tx, failing AlreadyFound if its id is
// already present.
func CreateTransaction(s *store.Store, tx *Transaction) error {
	found, err := s.Lookup(store.Transactions, tx.ID[:])
	if err != nil {
		return err
	}
	if found {
		return yerrors.New(yerrors.AlreadyFound, "CreateTransaction", tx.ID.String())
	}
	b, err := tx.MarshalBinary()
	if err != nil {
		return err
	}
	return s.Put(store.Transactions, tx.ID[:], b)
}

// GetTransaction reads and decodes the transaction stored under id.
func GetTransaction(s *store.Store, id codec.Digest) (*Transaction, error) {
	b, err := s.Get(store.Transactions, id[:])
	if err != nil {
		return nil, err
	}
	tx := &Transaction{}
	if err := tx.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return tx, nil
}

// LookupTransaction reports whether id is present.
func LookupTransaction(s *store.Store, id codec.Digest) (bool, error) {
	return s.Lookup(store.Transactions, id[:])
}

// CountTransactions returns the number of stored transactions.
func CountTransactions(s *store.Store) (uint32, error) {
	return s.Count(store.Transactions)
}

// ListTransactions decodes up to count transactions in ascending id
// order, skipping the first skip.
func ListTransactions(s *store.Store, skip, count uint32) ([]*Transaction, error) {
	keys, err := s.List(store.Transactions, skip, count)
	if err != nil {
		return nil, err
	}
	out := make([]*Transaction, 0, len(keys))
	for _, k := range keys {
		var id codec.Digest
		copy(id[:], k)
		tx, err := GetTransaction(s, id)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// DeleteTransaction removes a stored transaction, failing NotFound if
// absent.
func DeleteTransaction(s *store.Store, id codec.Digest) error {
	return s.Delete(store.Transactions, id[:])
}

// ListAncestors walks the ancestry of tx to the depth given by its
// first output's height, de-duplicating by id, and returns the
// ancestor transactions and coinbases it reached (spec.md §4.4).
func ListAncestors(s *store.Store, tx *Transaction) ([]*Transaction, []*Coinbase, error) {
	if len(tx.Outputs) == 0 {
		return nil, nil, yerrors.New(yerrors.InvalidValue, "ListAncestors", "transaction has no outputs")
	}
	h := tx.Outputs[0].Height

	var txs []*Transaction
	var coinbases []*Coinbase
	seenTx := map[codec.Digest]bool{}
	seenCb := map[codec.Digest]bool{}

	frontier := tx.Inputs
	for i := uint32(0); i < h; i++ {
		var next []Input
		for _, in := range frontier {
			if in.Height != 0 {
				if seenTx[in.ID] {
					continue
				}
				anc, err := GetTransaction(s, in.ID)
				if err != nil {
					return nil, nil, err
				}
				seenTx[in.ID] = true
				txs = append(txs, anc)
				next = append(next, anc.Inputs...)
			} else {
				if seenCb[in.ID] {
					continue
				}
				cb, err := GetCoinbase(s, in.ID)
				if err != nil {
					return nil, nil, err
				}
				seenCb[in.ID] = true
				coinbases = append(coinbases, cb)
			}
		}
		frontier = next
	}
	return txs, coinbases, nil
}

// CountAncestors returns only the cardinalities ListAncestors would
// compute.
func CountAncestors(s *store.Store, tx *Transaction) (int, int, error) {
	txs, coinbases, err := ListAncestors(s, tx)
	if err != nil {
		return 0, 0, err
	}
	return len(txs), len(coinbases), nil
}
