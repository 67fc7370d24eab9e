package node

import (
	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/model"
	"github.com/yobicash/yobinode/internal/txengine"
	"github.com/yobicash/yobinode/internal/walletengine"
)

// CreateRawTransaction decodes and commits a pre-built transaction.
func (n *Node) CreateRawTransaction(walletName, rawHex string, secretKeys []codec.SecretKey) (*model.Transaction, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return txengine.CreateRaw(n.store, walletName, n.k, rawHex, secretKeys)
}

// CreateCoinTransaction builds and commits a plain value transfer.
func (n *Node) CreateCoinTransaction(walletName string, toPK codec.PublicKey, amount codec.Amount, keepData bool) (*model.Transaction, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return txengine.CreateCoins(n.store, walletName, n.k, toPK, amount, keepData)
}

// CreateDataTransaction builds and commits a data-carrying transaction.
func (n *Node) CreateDataTransaction(walletName string, toPK codec.PublicKey, payload []byte, keepData bool) (*model.Transaction, *model.Data, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return txengine.CreateData(n.store, walletName, n.k, toPK, payload, keepData)
}

// ListTransactions returns up to count transactions, skipping the
// first skip.
func (n *Node) ListTransactions(skip, count uint32) ([]*model.Transaction, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return model.ListTransactions(n.store, skip, count)
}

// ListTransactionsByWallet returns every transaction that created one
// of wallet's own coins, deduplicated by id.
func (n *Node) ListTransactionsByWallet(name string) ([]*model.Transaction, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	w, err := walletengine.Get(n.store, name, n.k)
	if err != nil {
		return nil, err
	}
	seen := map[codec.Digest]bool{}
	var out []*model.Transaction
	for _, coins := range [][]model.Coin{w.UCoins, w.SCoins} {
		for _, c := range coins {
			if c.Kind != model.CoinKindTransaction || seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			tx, err := model.GetTransaction(n.store, c.ID)
			if err != nil {
				continue
			}
			out = append(out, tx)
		}
	}
	return out, nil
}

// ListTransactionAncestors enumerates the ancestor transactions and
// coinbases of id.
func (n *Node) ListTransactionAncestors(id codec.Digest) ([]*model.Transaction, []*model.Coinbase, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	tx, err := model.GetTransaction(n.store, id)
	if err != nil {
		return nil, nil, err
	}
	return model.ListAncestors(n.store, tx)
}

// GetTransaction fetches a single transaction by id, populating the
// read-through cache on a miss (spec.md §4.14's optional in-memory
// store, SPEC_FULL.md §4.1).
func (n *Node) GetTransaction(id codec.Digest) (*model.Transaction, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cache != nil {
		if tx, err := model.GetTransaction(n.cache, id); err == nil {
			return tx, nil
		}
	}
	tx, err := model.GetTransaction(n.store, id)
	if err != nil {
		return nil, err
	}
	if n.cache != nil {
		model.CreateTransaction(n.cache, tx)
	}
	return tx, nil
}

// ConfirmTransaction mines a coinbase over id's ancestry.
func (n *Node) ConfirmTransaction(id codec.Digest, walletName string, increment uint32, feePK codec.PublicKey) (bool, *model.Coinbase, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return txengine.Confirm(n.store, n.miner, id, walletName, n.k, increment, feePK)
}
