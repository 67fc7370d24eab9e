package ycrypto

import "testing"

func TestHashDeterministic(t *testing.T) {
	a := Hash([]byte("hello"))
	b := Hash([]byte("hello"))
	if a != b {
		t.Fatalf("hash should be deterministic")
	}
	c := Hash([]byte("world"))
	if a == c {
		t.Fatalf("different inputs should hash differently")
	}
}

func TestMACRoundTrip(t *testing.T) {
	key := RandomBytes(32)
	data := []byte("payload")
	tag := MAC(key, data)
	if !CheckMAC(key, data, tag) {
		t.Fatalf("expected MAC to check out")
	}
	if CheckMAC(key, []byte("tampered"), tag) {
		t.Fatalf("expected MAC to fail on tampered data")
	}
}

func TestSymmetricRoundTrip(t *testing.T) {
	key := RandomBytes(32)
	plaintext := []byte("secret wallet bytes")
	ct, err := SymmetricEncrypt(key, plaintext)
	if err != nil {
		t.Fatalf("SymmetricEncrypt: %v", err)
	}
	pt, err := SymmetricDecrypt(key, ct)
	if err != nil {
		t.Fatalf("SymmetricDecrypt: %v", err)
	}
	if string(pt) != string(plaintext) {
		t.Fatalf("round trip mismatch")
	}
}

func TestBlockECBRoundTrip(t *testing.T) {
	key := RandomBytes(32)
	padded := PadTo16([]byte("wallet-name"))
	ct, err := EncryptBlockECB(key, padded)
	if err != nil {
		t.Fatalf("EncryptBlockECB: %v", err)
	}
	// deterministic: encrypting the same plaintext twice yields the
	// same ciphertext, which is the point (lookup by name).
	ct2, err := EncryptBlockECB(key, padded)
	if err != nil {
		t.Fatalf("EncryptBlockECB: %v", err)
	}
	if string(ct) != string(ct2) {
		t.Fatalf("expected deterministic ciphertext")
	}
	pt, err := DecryptBlockECB(key, ct)
	if err != nil {
		t.Fatalf("DecryptBlockECB: %v", err)
	}
	if string(pt) != string(padded) {
		t.Fatalf("round trip mismatch")
	}
}

func TestGenerateKeypair(t *testing.T) {
	sk, pk, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	derived, err := PublicKeyFromSecret(sk)
	if err != nil {
		t.Fatalf("PublicKeyFromSecret: %v", err)
	}
	if derived != pk {
		t.Fatalf("derived public key should match generated one")
	}
}

func TestRandomU32Sample(t *testing.T) {
	sample := RandomU32Sample(0, 10, 5)
	if len(sample) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(sample))
	}
	seen := map[uint32]bool{}
	for _, v := range sample {
		if v >= 10 {
			t.Fatalf("sample out of range: %d", v)
		}
		if seen[v] {
			t.Fatalf("sample not distinct: %d", v)
		}
		seen[v] = true
	}
}

func TestRandomU32SampleCapsAtRange(t *testing.T) {
	sample := RandomU32Sample(0, 3, 100)
	if len(sample) != 3 {
		t.Fatalf("expected sample capped at range size 3, got %d", len(sample))
	}
}
