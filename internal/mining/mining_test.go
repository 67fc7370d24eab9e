package mining

import (
	"testing"

	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/model"
	"github.com/yobicash/yobinode/internal/store"
	"github.com/yobicash/yobinode/internal/walletengine"
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

func keyFor(password string) []byte {
	d := ycrypto.Hash([]byte(password))
	return d[:32]
}

func TestDifficultyIsMonotoneAndFloored(t *testing.T) {
	if Difficulty(0) != MinDifficulty {
		t.Fatalf("expected height 0 to sit at the floor, got %d", Difficulty(0))
	}
	if Difficulty(DifficultyStepBlocks) <= Difficulty(0) {
		t.Fatalf("expected difficulty to climb after one step of height")
	}
	if Difficulty(2*DifficultyStepBlocks) <= Difficulty(DifficultyStepBlocks) {
		t.Fatalf("expected difficulty to keep climbing across further steps")
	}
}

func TestLeadingZeroBits(t *testing.T) {
	cases := []struct {
		b    []byte
		want int
	}{
		{[]byte{0x00, 0x00, 0xFF}, 16},
		{[]byte{0xFF}, 0},
		{[]byte{0x0F}, 4},
		{[]byte{0x00, 0x01}, 15},
	}
	for _, c := range cases {
		if got := leadingZeroBits(c.b); got != c.want {
			t.Fatalf("leadingZeroBits(%v) = %d, want %d", c.b, got, c.want)
		}
	}
}

// TestMineGenesys mirrors scenario S1: exactly one genesis coinbase and
// one genesis transaction are produced, and the miner's wallet is
// credited with exactly one ucoin.
func TestMineGenesys(t *testing.T) {
	s := tempStore(t)
	K := keyFor("correcthorsebatterystaple!")
	w := &model.Wallet{Name: "miner"}
	w.Recompute()
	if err := walletengine.Create(s, w, K); err != nil {
		t.Fatalf("walletengine.Create: %v", err)
	}

	_, feePK, err := ycrypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}

	var eng Engine
	cb, genesisTx, tries, err := eng.MineGenesys(s, "miner", K, 1, feePK)
	if err != nil {
		t.Fatalf("MineGenesys: %v", err)
	}
	if tries == 0 {
		t.Fatalf("expected at least one proof-of-work attempt")
	}
	if err := cb.Validate(); err != nil {
		t.Fatalf("coinbase Validate: %v", err)
	}
	if err := genesisTx.Validate(); err != nil {
		t.Fatalf("genesis transaction Validate: %v", err)
	}
	if len(genesisTx.Inputs) != 1 || genesisTx.Inputs[0].ID != cb.ID || genesisTx.Inputs[0].Idx != 1 {
		t.Fatalf("expected the genesis transaction to spend the coinbase's fee output")
	}

	count, err := model.CountCoinbases(s)
	if err != nil {
		t.Fatalf("CountCoinbases: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one coinbase, got %d", count)
	}
	txCount, err := model.CountTransactions(s)
	if err != nil {
		t.Fatalf("CountTransactions: %v", err)
	}
	if txCount != 1 {
		t.Fatalf("expected exactly one genesis transaction, got %d", txCount)
	}

	got, err := walletengine.Get(s, "miner", K)
	if err != nil {
		t.Fatalf("Get wallet: %v", err)
	}
	if len(got.UCoins) != 1 {
		t.Fatalf("expected the miner's wallet to be credited with exactly one ucoin, got %d", len(got.UCoins))
	}
	if got.Balance.Cmp(BlockReward) != 0 {
		t.Fatalf("expected balance to equal the block reward, got %s", got.Balance)
	}

	if found, err := model.LookupUTXO(s, cb.ID, 1); err != nil || found {
		t.Fatalf("expected the coinbase's fee output UTXO to be consumed by the genesis transaction, found=%v err=%v", found, err)
	}
}

func TestMineConfirmsTransactionAndCreditsReward(t *testing.T) {
	s := tempStore(t)
	K := keyFor("correcthorsebatterystaple!")
	w := &model.Wallet{Name: "miner"}
	w.Recompute()
	if err := walletengine.Create(s, w, K); err != nil {
		t.Fatalf("walletengine.Create: %v", err)
	}

	sk, pk, err := ycrypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	cb, err := model.NewCoinbase(codec.Time(1), []model.Output{{Height: 0, Recipient: pk, Amount: codec.AmountFromUint64(10)}})
	if err != nil {
		t.Fatalf("NewCoinbase: %v", err)
	}
	if err := model.CreateCoinbase(s, cb); err != nil {
		t.Fatalf("CreateCoinbase: %v", err)
	}
	_ = sk

	tx, err := model.NewTransaction(model.CurrentVersion, codec.Time(2),
		[]model.Input{{Date: cb.Time, Kind: model.CoinKindCoinbase, ID: cb.ID, Idx: 0, Height: 0}},
		[]model.Output{{Height: 1, Recipient: pk, Amount: codec.AmountFromUint64(10)}})
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	if err := model.CreateTransaction(s, tx); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	var eng Engine
	cbOut, tries, err := eng.Mine(s, tx.ID, "miner", K, 1, pk)
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}
	if tries == 0 {
		t.Fatalf("expected at least one proof-of-work attempt")
	}
	if err := cbOut.Validate(); err != nil {
		t.Fatalf("coinbase Validate: %v", err)
	}

	got, err := walletengine.Get(s, "miner", K)
	if err != nil {
		t.Fatalf("Get wallet: %v", err)
	}
	if len(got.UCoins) != 1 {
		t.Fatalf("expected miner wallet credited with the reward ucoin, got %d ucoins", len(got.UCoins))
	}
}
