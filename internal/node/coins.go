package node

import (
	"github.com/yobicash/yobinode/internal/model"
	"github.com/yobicash/yobinode/internal/walletengine"
)

// ListCoins returns every coin (spent and unspent) held by wallet.
func (n *Node) ListCoins(wallet string) ([]model.Coin, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	w, err := walletengine.Get(n.store, wallet, n.k)
	if err != nil {
		return nil, err
	}
	out := make([]model.Coin, 0, len(w.UCoins)+len(w.SCoins))
	out = append(out, w.UCoins...)
	out = append(out, w.SCoins...)
	return out, nil
}

// ListUnspentCoins returns wallet's ucoins.
func (n *Node) ListUnspentCoins(wallet string) ([]model.Coin, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	w, err := walletengine.Get(n.store, wallet, n.k)
	if err != nil {
		return nil, err
	}
	return w.UCoins, nil
}

// ListSpentCoins returns wallet's scoins.
func (n *Node) ListSpentCoins(wallet string) ([]model.Coin, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	w, err := walletengine.Get(n.store, wallet, n.k)
	if err != nil {
		return nil, err
	}
	return w.SCoins, nil
}
