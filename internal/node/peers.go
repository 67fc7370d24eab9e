package node

import (
	"time"

	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/model"
)

func nowTime() codec.Time { return codec.Time(time.Now().Unix()) }

// PutPeer upserts host by address (spec.md §4.14 Peers).
func (n *Node) PutPeer(host codec.Host) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return model.UpsertPeer(n.store, host, nowTime())
}

// ListPeers returns up to count peers in ascending address order.
func (n *Node) ListPeers(skip, count uint32) ([]*model.Peer, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return model.ListPeersByAddress(n.store, skip, count)
}

// GetPeer looks up a single peer by address.
func (n *Node) GetPeer(host codec.Host) (*model.Peer, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return model.GetPeer(n.store, host)
}

// DeletePeer removes a peer's directory entry.
func (n *Node) DeletePeer(host codec.Host) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return model.DeletePeer(n.store, host)
}

// CleanupPeers evicts every peer last seen before limit.
func (n *Node) CleanupPeers(limit codec.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return model.CleanupPeers(n.store, limit)
}
