package node

import (
	"github.com/yobicash/yobinode/internal/model"
	"github.com/yobicash/yobinode/internal/walletengine"
)

// CreateWallet stores a fresh, empty wallet under name.
func (n *Node) CreateWallet(name string) (*model.Wallet, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	w := &model.Wallet{Name: name}
	w.Recompute()
	if err := walletengine.Create(n.store, w, n.k); err != nil {
		return nil, err
	}
	return w, nil
}

// ListWallets decrypts up to count wallets, skipping the first skip.
func (n *Node) ListWallets(skip, count uint32) ([]*model.Wallet, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.listWalletsLocked(skip, count)
}

func (n *Node) listWalletsLocked(skip, count uint32) ([]*model.Wallet, error) {
	return walletengine.List(n.store, skip, count, n.k)
}

// GetWallet decrypts and returns the wallet stored under name.
func (n *Node) GetWallet(name string) (*model.Wallet, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return walletengine.Get(n.store, name, n.k)
}
