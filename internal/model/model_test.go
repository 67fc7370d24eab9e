package model

import (
	"testing"

	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/store"
	"github.com/yobicash/yobinode/internal/ycrypto"
)

func tempStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.OpenTemporary()
	if err != nil {
		t.Fatalf("OpenTemporary: %v", err)
	}
	t.Cleanup(func() { s.Destroy() })
	return s
}

func samplePK(t *testing.T) codec.PublicKey {
	t.Helper()
	_, pk, err := ycrypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	return pk
}

func TestTransactionRoundTrip(t *testing.T) {
	pk := samplePK(t)
	tx, err := NewTransaction(codec.Version{Major: 1}, codec.Time(100),
		[]Input{{ID: codec.Digest{1}, Idx: 0, Height: 0}},
		[]Output{{Height: 1, Recipient: pk, Amount: codec.AmountFromUint64(100)}})
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	if err := tx.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	b, err := tx.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	var tx2 Transaction
	if err := tx2.UnmarshalBinary(b); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if tx2.ID != tx.ID {
		t.Fatalf("round trip id mismatch")
	}
	if len(tx2.Outputs) != 1 || tx2.Outputs[0].Amount.Cmp(codec.AmountFromUint64(100)) != 0 {
		t.Fatalf("round trip output mismatch: %+v", tx2.Outputs)
	}
}

func TestTransactionCRUD(t *testing.T) {
	s := tempStore(t)
	pk := samplePK(t)
	tx, _ := NewTransaction(codec.Version{Major: 1}, codec.Time(1), nil,
		[]Output{{Height: 0, Recipient: pk, Amount: codec.AmountFromUint64(1)}})

	if err := CreateTransaction(s, tx); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if err := CreateTransaction(s, tx); err == nil {
		t.Fatalf("expected AlreadyFound on second create")
	}
	got, err := GetTransaction(s, tx.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.ID != tx.ID {
		t.Fatalf("fetched transaction id mismatch")
	}
	if err := DeleteTransaction(s, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if err := DeleteTransaction(s, tx.ID); err == nil {
		t.Fatalf("expected NotFound on second delete")
	}
}

// TestAncestorEnumeration mirrors scenario S3: genesis CB0 -> TX1
// (inputs CB0, height 1) -> TX2 (inputs TX1, height 2).
func TestAncestorEnumeration(t *testing.T) {
	s := tempStore(t)
	pk := samplePK(t)

	cb0, err := NewCoinbase(codec.Time(1), []Output{{Height: 0, Recipient: pk, Amount: codec.AmountFromUint64(10)}})
	if err != nil {
		t.Fatalf("NewCoinbase: %v", err)
	}
	if err := CreateCoinbase(s, cb0); err != nil {
		t.Fatalf("CreateCoinbase: %v", err)
	}

	tx1, err := NewTransaction(codec.Version{Major: 1}, codec.Time(2),
		[]Input{{ID: cb0.ID, Idx: 0, Height: 0}},
		[]Output{{Height: 1, Recipient: pk, Amount: codec.AmountFromUint64(10)}})
	if err != nil {
		t.Fatalf("NewTransaction tx1: %v", err)
	}
	if err := CreateTransaction(s, tx1); err != nil {
		t.Fatalf("CreateTransaction tx1: %v", err)
	}

	tx2, err := NewTransaction(codec.Version{Major: 1}, codec.Time(3),
		[]Input{{ID: tx1.ID, Idx: 0, Height: 1}},
		[]Output{{Height: 2, Recipient: pk, Amount: codec.AmountFromUint64(10)}})
	if err != nil {
		t.Fatalf("NewTransaction tx2: %v", err)
	}
	if err := CreateTransaction(s, tx2); err != nil {
		t.Fatalf("CreateTransaction tx2: %v", err)
	}

	txs, cbs, err := ListAncestors(s, tx2)
	if err != nil {
		t.Fatalf("ListAncestors: %v", err)
	}
	if len(txs) != 1 || txs[0].ID != tx1.ID {
		t.Fatalf("expected ancestors [tx1], got %+v", txs)
	}
	if len(cbs) != 1 || cbs[0].ID != cb0.ID {
		t.Fatalf("expected coinbase ancestors [cb0], got %+v", cbs)
	}
}

func TestAncestorEnumerationAtHeightZero(t *testing.T) {
	s := tempStore(t)
	pk := samplePK(t)
	tx, _ := NewTransaction(codec.Version{Major: 1}, codec.Time(1), nil,
		[]Output{{Height: 0, Recipient: pk, Amount: codec.AmountFromUint64(1)}})
	txs, cbs, err := ListAncestors(s, tx)
	if err != nil {
		t.Fatalf("ListAncestors: %v", err)
	}
	if len(txs) != 0 || len(cbs) != 0 {
		t.Fatalf("expected no ancestors at height 0, got txs=%v cbs=%v", txs, cbs)
	}
}

func TestDataCRUD(t *testing.T) {
	s := tempStore(t)
	d := &Data{Checksum: codec.Digest{9}, Tag: codec.MAC{1}, Ciphertext: []byte("secret")}
	if err := CreateData(s, d); err != nil {
		t.Fatalf("CreateData: %v", err)
	}
	got, err := GetData(s, d.Checksum, d.Tag)
	if err != nil {
		t.Fatalf("GetData: %v", err)
	}
	if string(got.Ciphertext) != "secret" {
		t.Fatalf("ciphertext mismatch: %s", got.Ciphertext)
	}
	if err := DeleteData(s, d.Checksum, d.Tag); err != nil {
		t.Fatalf("DeleteData: %v", err)
	}
}

func TestUTXOCRUD(t *testing.T) {
	s := tempStore(t)
	pk := samplePK(t)
	u := &UTXO{ID: codec.Digest{3}, Idx: 2, Height: 5, Recipient: pk, Amount: codec.AmountFromUint64(42)}
	if err := CreateUTXO(s, u); err != nil {
		t.Fatalf("CreateUTXO: %v", err)
	}
	got, err := GetUTXO(s, u.ID, u.Idx)
	if err != nil {
		t.Fatalf("GetUTXO: %v", err)
	}
	if got.Amount.Cmp(codec.AmountFromUint64(42)) != 0 {
		t.Fatalf("amount mismatch")
	}
	if err := DeleteUTXO(s, u.ID, u.Idx); err != nil {
		t.Fatalf("DeleteUTXO: %v", err)
	}
	if err := DeleteUTXO(s, u.ID, u.Idx); err == nil {
		t.Fatalf("expected NotFound on second delete")
	}
}

func TestKeysCRUD(t *testing.T) {
	s := tempStore(t)
	sk, pk, err := ycrypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	k := &Keys{Secret: sk, Public: pk}
	if err := CreateKeys(s, k); err != nil {
		t.Fatalf("CreateKeys: %v", err)
	}
	got, err := GetKeys(s, pk)
	if err != nil {
		t.Fatalf("GetKeys: %v", err)
	}
	if got.Secret != sk {
		t.Fatalf("secret key mismatch")
	}
}

// TestPeerUpsertAndIndexes mirrors scenario S4: put_peer at t=100, then
// again at t=200 for the same address.
func TestPeerUpsertAndIndexes(t *testing.T) {
	s := tempStore(t)
	host, err := codec.HostFromString("1.2.3.4", 2112)
	if err != nil {
		t.Fatalf("HostFromString: %v", err)
	}

	if err := UpsertPeer(s, host, codec.Time(100)); err != nil {
		t.Fatalf("UpsertPeer first: %v", err)
	}
	if err := UpsertPeer(s, host, codec.Time(200)); err != nil {
		t.Fatalf("UpsertPeer second: %v", err)
	}

	p, err := GetPeer(s, host)
	if err != nil {
		t.Fatalf("GetPeer: %v", err)
	}
	if p.LastSeen != codec.Time(200) {
		t.Fatalf("expected last seen 200, got %d", p.LastSeen)
	}
	if p.FirstSeen != codec.Time(100) {
		t.Fatalf("expected first seen carried forward to 100, got %d", p.FirstSeen)
	}

	addrCount, err := CountPeers(s)
	if err != nil {
		t.Fatalf("CountPeers: %v", err)
	}
	if addrCount != 1 {
		t.Fatalf("expected 1 address entry, got %d", addrCount)
	}

	lastSeenKeys, err := ListPeersByLastSeen(s, 0, 10)
	if err != nil {
		t.Fatalf("ListPeersByLastSeen: %v", err)
	}
	if len(lastSeenKeys) != 1 {
		t.Fatalf("expected 1 last-seen entry, got %d", len(lastSeenKeys))
	}
}

func TestPeerDelete(t *testing.T) {
	s := tempStore(t)
	host, _ := codec.HostFromString("5.6.7.8", 1)
	if err := UpsertPeer(s, host, codec.Time(1)); err != nil {
		t.Fatalf("UpsertPeer: %v", err)
	}
	if err := DeletePeer(s, host); err != nil {
		t.Fatalf("DeletePeer: %v", err)
	}
	if found, _ := LookupPeer(s, host); found {
		t.Fatalf("expected peer gone after delete")
	}
	lastSeenKeys, err := ListPeersByLastSeen(s, 0, 10)
	if err != nil {
		t.Fatalf("ListPeersByLastSeen: %v", err)
	}
	if len(lastSeenKeys) != 0 {
		t.Fatalf("expected no dangling last-seen entries, got %d", len(lastSeenKeys))
	}
}

func TestWalletCheck(t *testing.T) {
	w := &Wallet{
		Name: "w",
		UCoins: []Coin{
			{Date: codec.Time(1), Kind: CoinKindCoinbase, ID: codec.Digest{1}, Amount: codec.AmountFromUint64(30)},
			{Date: codec.Time(2), Kind: CoinKindTransaction, ID: codec.Digest{2}, Amount: codec.AmountFromUint64(70)},
		},
	}
	w.Recompute()
	if w.Balance.Cmp(codec.AmountFromUint64(100)) != 0 {
		t.Fatalf("expected balance 100, got %s", w.Balance.String())
	}
	if err := w.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}

	w.Balance = codec.AmountFromUint64(1)
	if err := w.Check(); err == nil {
		t.Fatalf("expected Check to fail on mismatched balance")
	}
}

func TestWalletRoundTrip(t *testing.T) {
	tag := codec.MAC{7}
	w := &Wallet{
		Name: "savings",
		UCoins: []Coin{
			{Date: codec.Time(5), Kind: CoinKindCoinbase, ID: codec.Digest{9}, HasData: true, Tag: &tag, Amount: codec.AmountFromUint64(5)},
		},
	}
	w.Recompute()
	b, err := w.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	var w2 Wallet
	if err := w2.UnmarshalBinary(b); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if w2.Name != w.Name {
		t.Fatalf("name mismatch: %s", w2.Name)
	}
	if len(w2.UCoins) != 1 || w2.UCoins[0].Tag == nil || *w2.UCoins[0].Tag != tag {
		t.Fatalf("round trip coin tag mismatch: %+v", w2.UCoins)
	}
}
