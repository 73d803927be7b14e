package wechatpay

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"testing"

	domainErrors "github.com/feastline/ordercore/internal/domain/errors"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func seal(t *testing.T, key []byte, plaintext, nonce, associatedData string) Resource {
	t.Helper()
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		t.Fatalf("new gcm: %v", err)
	}
	sealed := gcm.Seal(nil, []byte(nonce), []byte(plaintext), []byte(associatedData))
	return Resource{
		Ciphertext:     base64.StdEncoding.EncodeToString(sealed),
		Nonce:          nonce,
		AssociatedData: associatedData,
	}
}

func TestDecryptResourceRoundTrip(t *testing.T) {
	plaintext := `{"out_trade_no":"20260829120000000001","transaction_id":"tx"}`
	res := seal(t, testKey, plaintext, "0123456789ab", "transaction")

	got, err := DecryptResource(testKey, res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != plaintext {
		t.Fatalf("unexpected plaintext %q", got)
	}
}

func TestDecryptResourceWrongKey(t *testing.T) {
	res := seal(t, testKey, "payload", "0123456789ab", "transaction")

	otherKey := []byte("ffffffffffffffffffffffffffffffff")
	if _, err := DecryptResource(otherKey, res); !errors.Is(err, domainErrors.ErrCallbackDecryption) {
		t.Fatalf("expected decryption error, got %v", err)
	}
}

func TestDecryptResourceTamperedCiphertext(t *testing.T) {
	res := seal(t, testKey, "payload", "0123456789ab", "transaction")
	res.AssociatedData = "tampered"

	if _, err := DecryptResource(testKey, res); !errors.Is(err, domainErrors.ErrCallbackDecryption) {
		t.Fatalf("expected decryption error, got %v", err)
	}
}

func TestDecryptResourceBadBase64(t *testing.T) {
	res := Resource{Ciphertext: "%%%not-base64%%%", Nonce: "0123456789ab"}

	if _, err := DecryptResource(testKey, res); !errors.Is(err, domainErrors.ErrCallbackDecryption) {
		t.Fatalf("expected decryption error, got %v", err)
	}
}

func TestDecryptResourceBadNonceSize(t *testing.T) {
	res := seal(t, testKey, "payload", "0123456789ab", "transaction")
	res.Nonce = "short"

	if _, err := DecryptResource(testKey, res); !errors.Is(err, domainErrors.ErrCallbackDecryption) {
		t.Fatalf("expected decryption error, got %v", err)
	}
}

func TestDecryptResourceBadKeyLength(t *testing.T) {
	res := seal(t, testKey, "payload", "0123456789ab", "transaction")

	if _, err := DecryptResource([]byte("short"), res); !errors.Is(err, domainErrors.ErrCallbackDecryption) {
		t.Fatalf("expected decryption error, got %v", err)
	}
}
