package walletengine

import (
	"testing"

	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/model"
	"github.com/yobicash/yobinode/internal/store"
	"github.com/yobicash/yobinode/internal/ycrypto"
	"github.com/yobicash/yobinode/internal/yerrors"
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

func sampleWallet(name string, balance uint64) *model.Wallet {
	w := &model.Wallet{
		Name: name,
		UCoins: []model.Coin{
			{Date: codec.Time(1), Kind: model.CoinKindCoinbase, ID: codec.Digest{1}, Amount: codec.AmountFromUint64(balance)},
		},
	}
	w.Recompute()
	return w
}

func TestCreateGetUpdateDelete(t *testing.T) {
	s := tempStore(t)
	K := keyFor("correcthorsebatterystaple!")
	w := sampleWallet("w", 100)

	if err := Create(s, w, K); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := Create(s, w, K); err == nil {
		t.Fatalf("expected AlreadyFound on second create")
	}

	got, err := Get(s, "w", K)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Balance.Cmp(codec.AmountFromUint64(100)) != 0 {
		t.Fatalf("balance mismatch: %s", got.Balance)
	}

	got.UCoins = append(got.UCoins, model.Coin{Date: codec.Time(2), Kind: model.CoinKindTransaction, ID: codec.Digest{2}, Amount: codec.AmountFromUint64(50)})
	got.Recompute()
	if err := Update(s, got, K); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got2, err := Get(s, "w", K)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if got2.Balance.Cmp(codec.AmountFromUint64(150)) != 0 {
		t.Fatalf("expected updated balance 150, got %s", got2.Balance)
	}

	if err := Delete(s, "w", K); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := Get(s, "w", K); yerrors.KindOf(err) != yerrors.NotFound {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
}

// TestWrongPasswordFails mirrors scenario S5.
func TestWrongPasswordFails(t *testing.T) {
	s := tempStore(t)
	K1 := keyFor("correcthorsebatterystaple!")
	K2 := keyFor("wrongpasswordwrongpassword")
	w := sampleWallet("w", 100)

	if err := Create(s, w, K1); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := Get(s, "w", K1); err != nil {
		t.Fatalf("expected Get with correct password to succeed: %v", err)
	}
	if _, err := Get(s, "w", K2); err == nil {
		t.Fatalf("expected Get with wrong password to fail")
	}
}

func TestSelectCoinsExactSumReturnsAll(t *testing.T) {
	w := &model.Wallet{
		UCoins: []model.Coin{
			{Amount: codec.AmountFromUint64(30)},
			{Amount: codec.AmountFromUint64(70)},
		},
	}
	selected, err := SelectCoins(w, codec.AmountFromUint64(100))
	if err != nil {
		t.Fatalf("SelectCoins: %v", err)
	}
	if len(selected) != 2 {
		t.Fatalf("expected all coins selected when sum == amount, got %d", len(selected))
	}
}

func TestSelectCoinsInsufficientFunds(t *testing.T) {
	w := &model.Wallet{
		UCoins: []model.Coin{{Amount: codec.AmountFromUint64(10)}},
	}
	if _, err := SelectCoins(w, codec.AmountFromUint64(100)); yerrors.KindOf(err) != yerrors.NotEnoughFunds {
		t.Fatalf("expected NotEnoughFunds, got %v", err)
	}
}

func TestSelectCoinsNoDataSkipsDataCoins(t *testing.T) {
	tag := codec.MAC{1}
	w := &model.Wallet{
		UCoins: []model.Coin{
			{Amount: codec.AmountFromUint64(100), HasData: true, Tag: &tag},
		},
	}
	if _, err := SelectCoinsNoData(w, codec.AmountFromUint64(100)); yerrors.KindOf(err) != yerrors.NotEnoughFunds {
		t.Fatalf("expected NotEnoughFunds when only data-bearing coins are available, got %v", err)
	}
}
