package test

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"

	"github.com/feastline/ordercore/internal/adapter/wechatpay"
)

// EncryptResource builds a gateway callback resource by sealing plaintext with
// AES-256-GCM, mirroring what the payment provider does on its side.
func EncryptResource(key []byte, plaintext, nonce, associatedData string) wechatpay.Resource {
	block, err := aes.NewCipher(key)
	if err != nil {
		panic(err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		panic(err)
	}
	sealed := gcm.Seal(nil, []byte(nonce), []byte(plaintext), []byte(associatedData))
	return wechatpay.Resource{
		Ciphertext:     base64.StdEncoding.EncodeToString(sealed),
		Nonce:          nonce,
		AssociatedData: associatedData,
	}
}
