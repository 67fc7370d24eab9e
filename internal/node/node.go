// Package node implements spec.md §4.14: the façade binding a
// configuration record, an open store, and the password-derived wallet
// master key, exposing the operations the RPC layer and the local CLI
// both consume.
package node

import (
	"sync"
	"time"

	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/config"
	"github.com/yobicash/yobinode/internal/mining"
	"github.com/yobicash/yobinode/internal/model"
	"github.com/yobicash/yobinode/internal/store"
	"github.com/yobicash/yobinode/internal/ycrypto"
	"github.com/yobicash/yobinode/internal/yerrors"
	"github.com/yobicash/yobinode/pkg/logging"
)

// Node binds a config, a persistent store, an optional in-memory
// read-through cache, and the derived wallet master key K.
type Node struct {
	cfg   *config.Config
	dir   string
	store *store.Store
	cache *store.Store
	k     []byte
	miner mining.Engine
	log   *logging.Logger

	passwordSalt []byte
	passwordHash []byte

	startTime time.Time
	mu        sync.RWMutex
}

// deriveKey follows spec.md §4.10's literal resolution: K is the first
// 32 bytes of Hash(password bytes).
func deriveKey(password string) []byte {
	d := ycrypto.Hash([]byte(password))
	return append([]byte(nil), d[:32]...)
}

func newNode(cfg *config.Config, dir string, s *store.Store) *Node {
	return &Node{
		cfg:       cfg,
		dir:       dir,
		store:     s,
		k:         deriveKey(cfg.Password),
		log:       logging.GetDefault().Component("node"),
		startTime: time.Now(),
	}
}

// Open loads (or bootstraps) the config at dir and opens the
// persistent store beneath it, wiring the Argon2id auth salt on first
// run.
func Open(dir string, defaultCfg *config.Config) (*Node, error) {
	cfg, err := config.LoadOrCreate(dir, defaultCfg)
	if err != nil {
		return nil, err
	}
	s, err := store.Open(config.StorePath(dir), false)
	if err != nil {
		if yerrors.KindOf(err) != yerrors.NotFound {
			return nil, err
		}
		if s, err = store.Create(config.StorePath(dir)); err != nil {
			return nil, err
		}
	}
	n := newNode(cfg, dir, s)
	if !cfg.LightMode {
		cache, err := store.OpenMemory()
		if err != nil {
			return nil, err
		}
		n.cache = cache
	}
	if err := n.ensureAuthSalt(); err != nil {
		return nil, err
	}
	return n, nil
}

// OpenTemporary opens a Node over an anonymous temporary store, for
// tests and the CLI's --temporary flag.
func OpenTemporary(cfg *config.Config) (*Node, error) {
	s, err := store.OpenTemporary()
	if err != nil {
		return nil, err
	}
	n := newNode(cfg, "", s)
	if err := n.ensureAuthSalt(); err != nil {
		return nil, err
	}
	return n, nil
}

// Close releases the store handle(s) without deleting data.
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cache != nil {
		if err := n.cache.Close(); err != nil {
			return err
		}
	}
	return n.store.Close()
}

// Reset destroys and recreates the store, keeping the same config.
func (n *Node) Reset() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	s, err := n.store.Reset()
	if err != nil {
		return err
	}
	n.store = s
	return nil
}

// Destroy closes and deletes the store entirely.
func (n *Node) Destroy() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cache != nil {
		n.cache.Destroy()
	}
	return n.store.Destroy()
}

// Info is the snapshot spec.md §4.14's info() returns.
type Info struct {
	Config            *config.Config
	Balance           codec.Amount
	WalletsCount      uint32
	SCoinsCount       uint32
	UCoinsCount       uint32
	DataCount         uint32
	TransactionsCount uint32
	CoinbasesCount    uint32
}

// Info gathers the node-wide snapshot across every wallet.
func (n *Node) Info() (*Info, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	wallets, err := n.listWalletsLocked(0, ^uint32(0))
	if err != nil {
		return nil, err
	}
	balance := codec.ZeroAmount()
	var scoins, ucoins uint32
	for _, w := range wallets {
		balance = balance.Add(w.Balance)
		scoins += uint32(len(w.SCoins))
		ucoins += uint32(len(w.UCoins))
	}
	dataCount, err := model.CountData(n.store)
	if err != nil {
		return nil, err
	}
	txCount, err := model.CountTransactions(n.store)
	if err != nil {
		return nil, err
	}
	cbCount, err := model.CountCoinbases(n.store)
	if err != nil {
		return nil, err
	}
	return &Info{
		Config:            n.cfg,
		Balance:           balance,
		WalletsCount:      uint32(len(wallets)),
		SCoinsCount:       scoins,
		UCoinsCount:       ucoins,
		DataCount:         dataCount,
		TransactionsCount: txCount,
		CoinbasesCount:    cbCount,
	}, nil
}
