// Package walletengine implements spec.md §4.10: encrypted wallet CRUD
// over internal/store, the balance invariant check, and naive coin
// selection for the transaction engine.
package walletengine

import (
	"encoding/binary"

	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/model"
	"github.com/yobicash/yobinode/internal/store"
	"github.com/yobicash/yobinode/internal/ycrypto"
	"github.com/yobicash/yobinode/internal/yerrors"
)

func encryptedKey(K []byte, name string) ([]byte, error) {
	padded := ycrypto.PadTo16([]byte(name))
	return ycrypto.EncryptBlockECB(K, padded)
}

func encryptedValue(K []byte, body []byte) ([]byte, error) {
	lb := make([]byte, 4, 4+len(body))
	binary.BigEndian.PutUint32(lb, uint32(len(body)))
	prefixed := append(lb, body...)
	padded := ycrypto.PadTo16(prefixed)
	return ycrypto.EncryptBlockECB(K, padded)
}

// decryptValue reverses encryptedValue. A wrong key decrypts to
// garbage whose length prefix will not fit the remaining bytes almost
// always, surfacing InvalidLength (spec.md scenario S5).
func decryptValue(K []byte, enc []byte) ([]byte, error) {
	padded, err := ycrypto.DecryptBlockECB(K, enc)
	if err != nil {
		return nil, err
	}
	if len(padded) < 4 {
		return nil, yerrors.New(yerrors.InvalidLength, "walletengine.decryptValue", "ciphertext too short")
	}
	n := binary.BigEndian.Uint32(padded[:4])
	if int(n) > len(padded)-4 {
		return nil, yerrors.New(yerrors.InvalidLength, "walletengine.decryptValue", "corrupt length prefix")
	}
	return padded[4 : 4+n], nil
}

// Create stores w under name, encrypted with K. Fails AlreadyFound if
// the encrypted key already exists.
func Create(s *store.Store, w *model.Wallet, K []byte) error {
	encKey, err := encryptedKey(K, w.Name)
	if err != nil {
		return err
	}
	found, err := s.Lookup(store.Wallets, encKey)
	if err != nil {
		return err
	}
	if found {
		return yerrors.New(yerrors.AlreadyFound, "walletengine.Create", w.Name)
	}
	body, err := w.MarshalBinary()
	if err != nil {
		return err
	}
	encValue, err := encryptedValue(K, body)
	if err != nil {
		return err
	}
	return s.Put(store.Wallets, encKey, encValue)
}

// Get decrypts and decodes the wallet stored under name.
func Get(s *store.Store, name string, K []byte) (*model.Wallet, error) {
	encKey, err := encryptedKey(K, name)
	if err != nil {
		return nil, err
	}
	encValue, err := s.Get(store.Wallets, encKey)
	if err != nil {
		return nil, err
	}
	body, err := decryptValue(K, encValue)
	if err != nil {
		return nil, err
	}
	w := &model.Wallet{}
	if err := w.UnmarshalBinary(body); err != nil {
		return nil, err
	}
	return w, nil
}

// List decrypts up to count wallets, skipping the first skip (in
// encrypted-key order — the Wallets bucket carries no name ordering
// once encrypted).
func List(s *store.Store, skip, count uint32, K []byte) ([]*model.Wallet, error) {
	keys, err := s.List(store.Wallets, skip, count)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Wallet, 0, len(keys))
	for _, k := range keys {
		encValue, err := s.Get(store.Wallets, k)
		if err != nil {
			return nil, err
		}
		body, err := decryptValue(K, encValue)
		if err != nil {
			return nil, err
		}
		w := &model.Wallet{}
		if err := w.UnmarshalBinary(body); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// Update overwrites the stored wallet record, failing NotFound if it
// does not already exist.
func Update(s *store.Store, w *model.Wallet, K []byte) error {
	encKey, err := encryptedKey(K, w.Name)
	if err != nil {
		return err
	}
	found, err := s.Lookup(store.Wallets, encKey)
	if err != nil {
		return err
	}
	if !found {
		return yerrors.New(yerrors.NotFound, "walletengine.Update", w.Name)
	}
	body, err := w.MarshalBinary()
	if err != nil {
		return err
	}
	encValue, err := encryptedValue(K, body)
	if err != nil {
		return err
	}
	return s.Put(store.Wallets, encKey, encValue)
}

// Delete removes the wallet stored under name.
func Delete(s *store.Store, name string, K []byte) error {
	encKey, err := encryptedKey(K, name)
	if err != nil {
		return err
	}
	return s.Delete(store.Wallets, encKey)
}

// SelectCoins accumulates UCoins in stored order until their sum is at
// least amount, returning that prefix. Fails NotEnoughFunds if the
// wallet's total is short. Intentionally naive — not best-fit — per
// spec.md Open Question 1.
func SelectCoins(w *model.Wallet, amount codec.Amount) ([]model.Coin, error) {
	return selectCoins(w, amount, false)
}

// SelectCoinsNoData is SelectCoins but skips any coin carrying data.
func SelectCoinsNoData(w *model.Wallet, amount codec.Amount) ([]model.Coin, error) {
	return selectCoins(w, amount, true)
}

func selectCoins(w *model.Wallet, amount codec.Amount, skipData bool) ([]model.Coin, error) {
	sum := codec.ZeroAmount()
	var selected []model.Coin
	for _, c := range w.UCoins {
		if skipData && c.HasData {
			continue
		}
		selected = append(selected, c)
		sum = sum.Add(c.Amount)
		if sum.GTE(amount) {
			return selected, nil
		}
	}
	return nil, yerrors.New(yerrors.NotEnoughFunds, "walletengine.selectCoins", "insufficient unspent funds")
}
