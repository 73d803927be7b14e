package wechatpay

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"

	domainErrors "github.com/feastline/ordercore/internal/domain/errors"
)

// Resource is the encrypted portion of a payment callback envelope.
// Ciphertext is base64; nonce and associated data ride along in the clear.
type Resource struct {
	Ciphertext     string `json:"ciphertext"`
	Nonce          string `json:"nonce"`
	AssociatedData string `json:"associated_data"`
}

// DecryptResource recovers the plaintext callback payload using the
// pre-shared APIv3 key. Any decode or authentication failure maps to
// ErrCallbackDecryption so the handler can signal the gateway to retry.
func DecryptResource(apiKey []byte, res Resource) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(res.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: decode ciphertext: %v", domainErrors.ErrCallbackDecryption, err)
	}

	block, err := aes.NewCipher(apiKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrCallbackDecryption, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrCallbackDecryption, err)
	}
	if len(res.Nonce) != gcm.NonceSize() {
		return nil, fmt.Errorf("%w: nonce must be %d bytes", domainErrors.ErrCallbackDecryption, gcm.NonceSize())
	}

	plaintext, err := gcm.Open(nil, []byte(res.Nonce), ciphertext, []byte(res.AssociatedData))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrCallbackDecryption, err)
	}
	return plaintext, nil
}
