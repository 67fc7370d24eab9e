package node

import (
	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/model"
	"github.com/yobicash/yobinode/internal/walletengine"
)

// GetCoinbase fetches a single coinbase by id, populating the
// read-through cache on a miss (see GetTransaction).
func (n *Node) GetCoinbase(id codec.Digest) (*model.Coinbase, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cache != nil {
		if cb, err := model.GetCoinbase(n.cache, id); err == nil {
			return cb, nil
		}
	}
	cb, err := model.GetCoinbase(n.store, id)
	if err != nil {
		return nil, err
	}
	if n.cache != nil {
		model.CreateCoinbase(n.cache, cb)
	}
	return cb, nil
}

// ConfirmCoinbase mines a coinbase directly confirming a (wallet-owned)
// transaction id — kept as a distinct binding since spec.md §4.14 lists
// confirm_coinbase alongside mine/mine_genesys under the Coinbases
// operation group. Unlike ConfirmTransaction it calls the miner without
// a prior lookup, so an unknown id surfaces as the miner's error rather
// than a not-found result.
func (n *Node) ConfirmCoinbase(wallet string, id codec.Digest, incr uint32, feePK codec.PublicKey) (*model.Coinbase, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	cb, _, err := n.miner.Mine(n.store, id, wallet, n.k, incr, feePK)
	return cb, err
}

// ListCoinbases returns up to count coinbases, skipping the first skip.
func (n *Node) ListCoinbases(skip, count uint32) ([]*model.Coinbase, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return model.ListCoinbases(n.store, skip, count)
}

// ListCoinbasesByWallet returns every coinbase that credited one of
// wallet's own coins, deduplicated by id.
func (n *Node) ListCoinbasesByWallet(name string) ([]*model.Coinbase, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	w, err := walletengine.Get(n.store, name, n.k)
	if err != nil {
		return nil, err
	}
	seen := map[codec.Digest]bool{}
	var out []*model.Coinbase
	for _, coins := range [][]model.Coin{w.UCoins, w.SCoins} {
		for _, c := range coins {
			if c.Kind != model.CoinKindCoinbase || seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			cb, err := model.GetCoinbase(n.store, c.ID)
			if err != nil {
				continue
			}
			out = append(out, cb)
		}
	}
	return out, nil
}

// Mine confirms txID by mining a coinbase over its ancestry.
func (n *Node) Mine(txID codec.Digest, walletName string, increment uint32, feePK codec.PublicKey) (*model.Coinbase, uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.miner.Mine(n.store, txID, walletName, n.k, increment, feePK)
}

// MineGenesys mines the chain's first coinbase and anchoring
// transaction.
func (n *Node) MineGenesys(walletName string, increment uint32, feePK codec.PublicKey) (*model.Coinbase, *model.Transaction, uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.miner.MineGenesys(n.store, walletName, n.k, increment, feePK)
}
