package node

import (
	"testing"

	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/config"
	"github.com/yobicash/yobinode/internal/ycrypto"
	"github.com/yobicash/yobinode/internal/yerrors"
)

func testConfig() *config.Config {
	return &config.Config{
		Password: "correcthorsebatterystaple!",
		MaxConns: 8,
	}
}

func tempNode(t *testing.T) *Node {
	t.Helper()
	n, err := OpenTemporary(testConfig())
	if err != nil {
		t.Fatalf("OpenTemporary: %v", err)
	}
	t.Cleanup(func() { n.Destroy() })
	return n
}

func TestCheckPasswordAndKey(t *testing.T) {
	n := tempNode(t)
	if err := n.CheckPassword("correcthorsebatterystaple!"); err != nil {
		t.Fatalf("CheckPassword: %v", err)
	}
	if err := n.CheckPassword("wrongpasswordwrongpassword"); yerrors.KindOf(err) != yerrors.InvalidPassword {
		t.Fatalf("expected InvalidPassword, got %v", err)
	}
	if err := n.CheckKey(n.GetKey()); err != nil {
		t.Fatalf("CheckKey: %v", err)
	}
	if err := n.CheckKey([]byte("not the right key at all......")); yerrors.KindOf(err) != yerrors.InvalidKey {
		t.Fatalf("expected InvalidKey, got %v", err)
	}
}

func TestCreateAndGetWallet(t *testing.T) {
	n := tempNode(t)
	if _, err := n.CreateWallet("alice"); err != nil {
		t.Fatalf("CreateWallet: %v", err)
	}
	w, err := n.GetWallet("alice")
	if err != nil {
		t.Fatalf("GetWallet: %v", err)
	}
	if w.Name != "alice" || !w.Balance.IsZero() {
		t.Fatalf("unexpected wallet state: %+v", w)
	}
	wallets, err := n.ListWallets(0, 10)
	if err != nil {
		t.Fatalf("ListWallets: %v", err)
	}
	if len(wallets) != 1 {
		t.Fatalf("expected 1 wallet, got %d", len(wallets))
	}
}

func TestMineGenesysAndInfo(t *testing.T) {
	n := tempNode(t)
	if _, err := n.CreateWallet("miner"); err != nil {
		t.Fatalf("CreateWallet: %v", err)
	}
	_, feePK, err := ycrypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	cb, genesisTx, tries, err := n.MineGenesys("miner", 1, feePK)
	if err != nil {
		t.Fatalf("MineGenesys: %v", err)
	}
	if tries == 0 || cb == nil || genesisTx == nil {
		t.Fatalf("expected a successful genesis mine")
	}

	info, err := n.Info()
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.WalletsCount != 1 || info.CoinbasesCount != 1 || info.TransactionsCount != 1 {
		t.Fatalf("unexpected info snapshot: %+v", info)
	}
}

func TestPutAndListPeers(t *testing.T) {
	n := tempNode(t)
	host := codec.Host{IP: [4]byte{127, 0, 0, 1}, Port: 9000}
	if err := n.PutPeer(host); err != nil {
		t.Fatalf("PutPeer: %v", err)
	}
	peers, err := n.ListPeers(0, 10)
	if err != nil {
		t.Fatalf("ListPeers: %v", err)
	}
	if len(peers) != 1 {
		t.Fatalf("expected 1 peer, got %d", len(peers))
	}
	if err := n.DeletePeer(host); err != nil {
		t.Fatalf("DeletePeer: %v", err)
	}
	if _, err := n.GetPeer(host); yerrors.KindOf(err) != yerrors.NotFound {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
}
