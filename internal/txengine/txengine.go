// Package txengine implements spec.md §4.11's three transaction entry
// points (create_raw, create_coins, create_data) and confirmation, each
// atomically updating the ledger store and the spending wallet.
package txengine

import (
	"encoding/hex"
	"time"

	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/model"
	"github.com/yobicash/yobinode/internal/store"
	"github.com/yobicash/yobinode/internal/walletengine"
	"github.com/yobicash/yobinode/internal/ycrypto"
	"github.com/yobicash/yobinode/internal/yerrors"
)

func now() codec.Time { return codec.Time(time.Now().Unix()) }

// nextHeight returns one plus the greatest height among the given
// inputs, the height new outputs are stamped with so ancestor
// enumeration can walk back through every consumed coin's own history.
func nextHeight(inputs []model.Input) uint32 {
	var max uint32
	for _, in := range inputs {
		if in.Height > max {
			max = in.Height
		}
	}
	return max + 1
}

// moveConsumedCoins removes from w.UCoins every coin matching one of
// the transaction's inputs, appending it to w.SCoins. It fails NotFound
// if an input has no matching ucoin (spec.md §4.11).
func moveConsumedCoins(w *model.Wallet, inputs []model.Input) error {
	for _, in := range inputs {
		idx := -1
		for i, c := range w.UCoins {
			if c.MatchKey() == in.MatchKey() {
				idx = i
				break
			}
		}
		if idx < 0 {
			return yerrors.New(yerrors.NotFound, "txengine.moveConsumedCoins", "no matching ucoin for input")
		}
		w.SCoins = append(w.SCoins, w.UCoins[idx])
		w.UCoins = append(w.UCoins[:idx], w.UCoins[idx+1:]...)
	}
	return nil
}

func commit(s *store.Store, w *model.Wallet, K []byte, tx *model.Transaction, data []*model.Data) error {
	if err := model.CreateTransaction(s, tx); err != nil {
		return err
	}
	for _, in := range tx.Inputs {
		if err := model.DeleteUTXO(s, in.ID, in.Idx); err != nil {
			return err
		}
	}
	for i, o := range tx.Outputs {
		u := &model.UTXO{ID: tx.ID, Idx: uint32(i), Height: o.Height, Recipient: o.Recipient, Amount: o.Amount}
		if err := model.CreateUTXO(s, u); err != nil {
			return err
		}
	}
	for _, d := range data {
		if err := model.CreateData(s, d); err != nil {
			return err
		}
	}
	w.Recompute()
	return walletengine.Update(s, w, K)
}

// CreateRaw decodes a pre-built hex-encoded transaction, matches each
// input against the wallet's ucoins by (date, kind, id, idx, height),
// and credits one new ucoin per output using the caller-supplied
// secret keys.
func CreateRaw(s *store.Store, walletName string, K []byte, rawHex string, secretKeys []codec.SecretKey) (*model.Transaction, error) {
	raw, err := hex.DecodeString(rawHex)
	if err != nil {
		return nil, yerrors.Wrap(yerrors.ParsingFailure, "txengine.CreateRaw", err)
	}
	tx := &model.Transaction{}
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, err
	}
	if len(secretKeys) != len(tx.Outputs) {
		return nil, yerrors.New(yerrors.InvalidValue, "txengine.CreateRaw", "secret key count must equal output count")
	}

	w, err := walletengine.Get(s, walletName, K)
	if err != nil {
		return nil, err
	}
	if err := moveConsumedCoins(w, tx.Inputs); err != nil {
		return nil, err
	}
	for i, o := range tx.Outputs {
		w.UCoins = append(w.UCoins, model.Coin{
			Date:    tx.Time,
			Secret:  secretKeys[i],
			Kind:    model.CoinKindTransaction,
			ID:      tx.ID,
			Idx:     uint32(i),
			Height:  o.Height,
			HasData: o.Data != nil,
			Tag:     outputTag(o),
			Amount:  o.Amount,
		})
	}
	if err := commit(s, w, K, tx, nil); err != nil {
		return nil, err
	}
	return tx, nil
}

func outputTag(o model.Output) *codec.MAC {
	if o.Data == nil {
		return nil
	}
	tag := o.Data.Tag
	return &tag
}

// selectCoinsFor chooses select_coins vs select_coins_no_data: keepData
// true allows spending coins that themselves carry data (the result's
// own payload commitments stay intact either way); keepData false
// preserves any data-bearing ucoins for a future data-focused spend.
func selectCoinsFor(w *model.Wallet, amount codec.Amount, keepData bool) ([]model.Coin, error) {
	if keepData {
		return walletengine.SelectCoins(w, amount)
	}
	return walletengine.SelectCoinsNoData(w, amount)
}

// buildSpend is the shared bookkeeping for create_coins / create_data:
// select ucoins covering amount, build the transaction inputs from
// them, and (if there's leftover) a change output under a freshly
// generated keypair added to the wallet's ucoins.
func buildSpend(s *store.Store, w *model.Wallet, amount codec.Amount, keepData bool, extraOutputs []model.Output) (*model.Transaction, error) {
	selected, err := selectCoinsFor(w, amount, keepData)
	if err != nil {
		return nil, err
	}

	inputs := make([]model.Input, 0, len(selected))
	total := codec.ZeroAmount()
	for _, c := range selected {
		inputs = append(inputs, model.Input{Date: c.Date, Kind: c.Kind, ID: c.ID, Idx: c.Idx, Height: c.Height})
		total = total.Add(c.Amount)
	}
	height := nextHeight(inputs)

	outputs := make([]model.Output, len(extraOutputs))
	copy(outputs, extraOutputs)
	for i := range outputs {
		outputs[i].Height = height
	}

	change := total.Sub(amount)
	var changeKeys *model.Keys
	if !change.IsZero() {
		changeSK, changePK, err := ycrypto.GenerateKeypair()
		if err != nil {
			return nil, err
		}
		changeKeys = &model.Keys{Secret: changeSK, Public: changePK}
		outputs = append(outputs, model.Output{Height: height, Recipient: changePK, Amount: change})
	}

	tx, err := model.NewTransaction(model.CurrentVersion, now(), inputs, outputs)
	if err != nil {
		return nil, err
	}

	if err := moveConsumedCoins(w, inputs); err != nil {
		return nil, err
	}

	if changeKeys != nil {
		if err := model.CreateKeys(s, changeKeys); err != nil {
			return nil, err
		}
		changeIdx := uint32(len(outputs) - 1)
		w.UCoins = append(w.UCoins, model.Coin{
			Date:   tx.Time,
			Secret: changeKeys.Secret,
			Kind:   model.CoinKindTransaction,
			ID:     tx.ID,
			Idx:    changeIdx,
			Height: height,
			Amount: change,
		})
	}

	return tx, nil
}

// CreateCoins builds and commits a plain value transfer to toPK for
// amount, generating a change output back to this wallet when needed.
func CreateCoins(s *store.Store, walletName string, K []byte, toPK codec.PublicKey, amount codec.Amount, keepData bool) (*model.Transaction, error) {
	w, err := walletengine.Get(s, walletName, K)
	if err != nil {
		return nil, err
	}
	tx, err := buildSpend(s, w, amount, keepData, []model.Output{{Recipient: toPK, Amount: amount}})
	if err != nil {
		return nil, err
	}
	if err := commit(s, w, K, tx, nil); err != nil {
		return nil, err
	}
	return tx, nil
}

// CreateData builds and commits a transaction carrying payload to toPK,
// priced at 2*len(payload), alongside a Data record.
func CreateData(s *store.Store, walletName string, K []byte, toPK codec.PublicKey, payload []byte, keepData bool) (*model.Transaction, *model.Data, error) {
	w, err := walletengine.Get(s, walletName, K)
	if err != nil {
		return nil, nil, err
	}
	amount := codec.AmountFromUint64(uint64(2 * len(payload)))
	checksum := ycrypto.Hash(payload)
	tag := ycrypto.MAC(toPK[:], payload)

	output := model.Output{Recipient: toPK, Amount: amount, Data: &model.OutputData{Checksum: checksum, Tag: tag}}
	tx, err := buildSpend(s, w, amount, keepData, []model.Output{output})
	if err != nil {
		return nil, nil, err
	}
	data := &model.Data{Checksum: checksum, Tag: tag, Ciphertext: payload}
	if err := commit(s, w, K, tx, []*model.Data{data}); err != nil {
		return nil, nil, err
	}
	return tx, data, nil
}

// Confirmer mines a coinbase confirming the ancestry of a stored
// transaction. It is satisfied by internal/mining.Engine, kept as an
// interface here to avoid a txengine<->mining import cycle (mining
// itself never needs to call back into txengine).
type Confirmer interface {
	Mine(s *store.Store, txID codec.Digest, walletName string, K []byte, increment uint32, feePK codec.PublicKey) (*model.Coinbase, uint64, error)
}

// Confirm runs proof-of-work over the ancestry of id if it names a
// stored transaction. Returns (false, nil, nil) if id is not found,
// and propagates any other error.
func Confirm(s *store.Store, miner Confirmer, id codec.Digest, walletName string, K []byte, increment uint32, feePK codec.PublicKey) (bool, *model.Coinbase, error) {
	found, err := model.LookupTransaction(s, id)
	if err != nil {
		return false, nil, err
	}
	if !found {
		return false, nil, nil
	}
	cb, _, err := miner.Mine(s, id, walletName, K, increment, feePK)
	if err != nil {
		return false, nil, err
	}
	return true, cb, nil
}
