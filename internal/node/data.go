package node

import (
	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/model"
	"github.com/yobicash/yobinode/internal/walletengine"
)

// ListData returns up to count data records, skipping the first skip.
func (n *Node) ListData(skip, count uint32) ([]*model.Data, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return model.ListData(n.store, skip, count)
}

// ListDataByWallet returns the data records referenced by name's own
// coins (walked via each data-bearing coin's own checksum/tag), not a
// dedicated store index — spec.md §4.14 names this operation but the
// store catalog of §4.2 has no by-wallet data index.
func (n *Node) ListDataByWallet(name string) ([]*model.Data, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	w, err := walletengine.Get(n.store, name, n.k)
	if err != nil {
		return nil, err
	}
	var out []*model.Data
	for _, coins := range [][]model.Coin{w.UCoins, w.SCoins} {
		for _, c := range coins {
			if !c.HasData || c.Tag == nil || c.Kind != model.CoinKindTransaction {
				continue
			}
			tx, err := model.GetTransaction(n.store, c.ID)
			if err != nil || int(c.Idx) >= len(tx.Outputs) || tx.Outputs[c.Idx].Data == nil {
				continue
			}
			d, err := model.GetData(n.store, tx.Outputs[c.Idx].Data.Checksum, *c.Tag)
			if err != nil {
				continue
			}
			out = append(out, d)
		}
	}
	return out, nil
}

// GetData fetches a single data record by its (checksum, tag) identity.
func (n *Node) GetData(checksum codec.Digest, tag codec.MAC) (*model.Data, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return model.GetData(n.store, checksum, tag)
}
