// Package mining implements spec.md §4.12: ancestor-sample chunk
// derivation and the proof-of-work driver that produces coinbases.
package mining

import (
	"encoding/binary"
	"time"

	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/model"
	"github.com/yobicash/yobinode/internal/store"
	"github.com/yobicash/yobinode/internal/walletengine"
	"github.com/yobicash/yobinode/internal/ycrypto"
	"github.com/yobicash/yobinode/internal/yerrors"
)

// DifficultyStepBlocks and MinDifficulty parameterize Difficulty's
// step curve; not mandated by spec.md (which treats difficulty as
// opaque, delegated to the primitive library — see DESIGN.md).
const (
	DifficultyStepBlocks = 100
	MinDifficulty        = 1
)

// BlockReward is the fixed miner-reward amount credited by every
// successful Mine/MineGenesys call. Fee-market policy is an explicit
// spec.md Non-goal, so the fee output itself is always zero.
var BlockReward = codec.AmountFromUint64(50)

// Difficulty mirrors the original collaborator's difficulty-by-height
// curve informally: it grows by one every DifficultyStepBlocks height
// units, floored at MinDifficulty.
func Difficulty(height uint32) uint32 {
	return MinDifficulty + height/DifficultyStepBlocks
}

func now() codec.Time { return codec.Time(time.Now().Unix()) }

// deriveChunks implements spec.md §4.12's chunk derivation: sample
// without replacement up to d ancestors of each kind, and for each
// sampled ancestor pick one uniformly random byte of its canonical
// encoding.
func deriveChunks(txs []*model.Transaction, cbs []*model.Coinbase, d uint32) ([]byte, error) {
	var chunks []byte

	kt := uint32(len(txs))
	if d < kt {
		kt = d
	}
	for _, idx := range ycrypto.RandomU32Sample(0, uint32(len(txs)), kt) {
		b, err := txs[idx].MarshalBinary()
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, b[ycrypto.RandomU32Range(0, uint32(len(b)))])
	}

	kc := uint32(len(cbs))
	if d < kc {
		kc = d
	}
	for _, idx := range ycrypto.RandomU32Sample(0, uint32(len(cbs)), kc) {
		b, err := cbs[idx].MarshalBinary()
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, b[ycrypto.RandomU32Range(0, uint32(len(b)))])
	}

	return chunks, nil
}

func leadingZeroBits(b []byte) int {
	n := 0
	for _, v := range b {
		if v == 0 {
			n += 8
			continue
		}
		for v&0x80 == 0 {
			n++
			v <<= 1
		}
		break
	}
	return n
}

// drivePOW repeatedly hashes base||nonce, incrementing nonce by
// increment (or 1 if increment is zero) until the digest has at least
// d leading zero bits, returning the number of tries taken.
func drivePOW(base []byte, d uint32, increment uint32) uint64 {
	if increment == 0 {
		increment = 1
	}
	var nonce uint32
	var tries uint64
	for {
		tries++
		var nb [4]byte
		binary.BigEndian.PutUint32(nb[:], nonce)
		h := ycrypto.Hash(append(append([]byte(nil), base...), nb[:]...))
		if leadingZeroBits(h[:]) >= int(d) {
			return tries
		}
		nonce += increment
	}
}

// Engine drives proof-of-work confirmation for the transaction engine;
// it has no state of its own (the store and wallet are passed through
// each call).
type Engine struct{}

// Mine confirms txID: it enumerates its ancestors, derives the PoW
// chunk buffer, runs the proof-of-work loop, stores the resulting
// coinbase, and credits the miner's wallet with the reward ucoin.
func (Engine) Mine(s *store.Store, txID codec.Digest, walletName string, K []byte, increment uint32, feePK codec.PublicKey) (*model.Coinbase, uint64, error) {
	tx, err := model.GetTransaction(s, txID)
	if err != nil {
		return nil, 0, err
	}
	if len(tx.Outputs) == 0 {
		return nil, 0, yerrors.New(yerrors.InvalidValue, "mining.Mine", "transaction has no outputs")
	}
	d := Difficulty(tx.Outputs[0].Height)

	ancestorTxs, ancestorCbs, err := model.ListAncestors(s, tx)
	if err != nil {
		return nil, 0, err
	}
	chunks, err := deriveChunks(ancestorTxs, ancestorCbs, d)
	if err != nil {
		return nil, 0, err
	}

	w, err := walletengine.Get(s, walletName, K)
	if err != nil {
		return nil, 0, err
	}

	rewardSK, rewardPK, err := ycrypto.GenerateKeypair()
	if err != nil {
		return nil, 0, err
	}

	base := append(append([]byte(nil), txID[:]...), chunks...)
	tries := drivePOW(base, d, increment)

	cb, err := model.NewCoinbase(now(), []model.Output{
		{Height: 0, Recipient: rewardPK, Amount: BlockReward},
		{Height: 0, Recipient: feePK, Amount: codec.ZeroAmount()},
	})
	if err != nil {
		return nil, 0, err
	}
	if err := model.CreateCoinbase(s, cb); err != nil {
		return nil, 0, err
	}
	for i, o := range cb.Outputs {
		if err := model.CreateUTXO(s, &model.UTXO{ID: cb.ID, Idx: uint32(i), Height: o.Height, Recipient: o.Recipient, Amount: o.Amount}); err != nil {
			return nil, 0, err
		}
	}
	if err := model.CreateKeys(s, &model.Keys{Secret: rewardSK, Public: rewardPK}); err != nil {
		return nil, 0, err
	}

	w.UCoins = append(w.UCoins, model.Coin{
		Date:   cb.Time,
		Secret: rewardSK,
		Kind:   model.CoinKindCoinbase,
		ID:     cb.ID,
		Idx:    0,
		Height: 0,
		Amount: cb.Outputs[0].Amount,
	})
	w.Recompute()
	if err := walletengine.Update(s, w, K); err != nil {
		return nil, 0, err
	}

	return cb, tries, nil
}

// MineGenesys produces the chain's first coinbase and an anchoring
// genesis transaction that immediately redirects the coinbase's fee
// output to feePK, with no ancestors to sample from. Fixed d=3 per
// spec.md §4.12.
func (Engine) MineGenesys(s *store.Store, walletName string, K []byte, increment uint32, feePK codec.PublicKey) (*model.Coinbase, *model.Transaction, uint64, error) {
	const genesisDifficulty = 3
	chunks := ycrypto.RandomBytes(genesisDifficulty)

	w, err := walletengine.Get(s, walletName, K)
	if err != nil {
		return nil, nil, 0, err
	}

	rewardSK, rewardPK, err := ycrypto.GenerateKeypair()
	if err != nil {
		return nil, nil, 0, err
	}

	tries := drivePOW(chunks, genesisDifficulty, increment)

	cb, err := model.NewCoinbase(now(), []model.Output{
		{Height: 0, Recipient: rewardPK, Amount: BlockReward},
		{Height: 0, Recipient: feePK, Amount: codec.ZeroAmount()},
	})
	if err != nil {
		return nil, nil, 0, err
	}
	if err := model.CreateCoinbase(s, cb); err != nil {
		return nil, nil, 0, err
	}
	for i, o := range cb.Outputs {
		if err := model.CreateUTXO(s, &model.UTXO{ID: cb.ID, Idx: uint32(i), Height: o.Height, Recipient: o.Recipient, Amount: o.Amount}); err != nil {
			return nil, nil, 0, err
		}
	}
	if err := model.CreateKeys(s, &model.Keys{Secret: rewardSK, Public: rewardPK}); err != nil {
		return nil, nil, 0, err
	}

	// The sole input's Height is 0 (it resolves to the Coinbase above, per
	// model.Input's own convention); the output's Height is one past
	// that, the same "1 + max(input heights)" rule txengine.nextHeight
	// applies, so ListAncestors' walk-back depth finds this coinbase.
	genesisTx, err := model.NewTransaction(model.CurrentVersion, cb.Time,
		[]model.Input{{Date: cb.Time, Kind: model.CoinKindCoinbase, ID: cb.ID, Idx: 1, Height: 0}},
		[]model.Output{{Height: 1, Recipient: feePK, Amount: codec.ZeroAmount()}})
	if err != nil {
		return nil, nil, 0, err
	}
	if err := model.CreateTransaction(s, genesisTx); err != nil {
		return nil, nil, 0, err
	}
	if err := model.DeleteUTXO(s, cb.ID, 1); err != nil {
		return nil, nil, 0, err
	}
	if err := model.CreateUTXO(s, &model.UTXO{ID: genesisTx.ID, Idx: 0, Height: genesisTx.Outputs[0].Height, Recipient: feePK, Amount: codec.ZeroAmount()}); err != nil {
		return nil, nil, 0, err
	}

	w.UCoins = append(w.UCoins, model.Coin{
		Date:   cb.Time,
		Secret: rewardSK,
		Kind:   model.CoinKindCoinbase,
		ID:     cb.ID,
		Idx:    0,
		Height: 0,
		Amount: cb.Outputs[0].Amount,
	})
	w.Recompute()
	if err := walletengine.Update(s, w, K); err != nil {
		return nil, nil, 0, err
	}

	return cb, genesisTx, tries, nil
}
