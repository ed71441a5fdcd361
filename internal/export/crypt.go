package export

import (
	"fmt"

	"github.com/zarlcorp/core/pkg/zcrypto"
)

// exportSalt is fixed so an exported file can be decrypted from the
// password alone, with no salt stored alongside it.
var exportSalt = []byte("zpersona-export!")

// Encrypt seals data under a key derived from password.
func Encrypt(password string, data []byte) ([]byte, error) {
	key, _, err := zcrypto.DeriveKey([]byte(password), exportSalt)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	defer zcrypto.Erase(key)

	ct, err := zcrypto.Encrypt(key, data)
	if err != nil {
		return nil, fmt.Errorf("encrypt export: %w", err)
	}
	return ct, nil
}

// Decrypt opens a payload sealed by Encrypt with the same password.
func Decrypt(password string, ct []byte) ([]byte, error) {
	key, _, err := zcrypto.DeriveKey([]byte(password), exportSalt)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	defer zcrypto.Erase(key)

	data, err := zcrypto.Decrypt(key, ct)
	if err != nil {
		return nil, fmt.Errorf("decrypt export: wrong password or corrupt file: %w", err)
	}
	return data, nil
}
