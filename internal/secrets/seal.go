package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/box"
)

const (
	publicKeyLengthConstant         = 32
	publicKeyDecodeTemplateConstant = "public key is not valid base64: %w"
	publicKeyLengthTemplateConstant = "public key must be %d bytes, got %d"
	sealFailureTemplateConstant     = "encryption failed: %w"
)

// Seal encrypts value as a libsodium sealed box for the base64 encoded Curve25519 public key
// and returns the base64 encoded ciphertext expected by the Actions secrets API.
func Seal(encodedPublicKey string, value string, randomSource io.Reader) (string, error) {
	publicKeyBytes, decodeError := base64.StdEncoding.DecodeString(encodedPublicKey)
	if decodeError != nil {
		return "", fmt.Errorf(publicKeyDecodeTemplateConstant, decodeError)
	}
	if len(publicKeyBytes) != publicKeyLengthConstant {
		return "", fmt.Errorf(publicKeyLengthTemplateConstant, publicKeyLengthConstant, len(publicKeyBytes))
	}
	if randomSource == nil {
		randomSource = rand.Reader
	}

	var recipientKey [publicKeyLengthConstant]byte
	copy(recipientKey[:], publicKeyBytes)

	sealed, sealError := box.SealAnonymous(nil, []byte(value), &recipientKey, randomSource)
	if sealError != nil {
		return "", fmt.Errorf(sealFailureTemplateConstant, sealError)
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}
