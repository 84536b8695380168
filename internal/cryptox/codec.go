package cryptox

import "fmt"

// Codec encrypts and decrypts whole payloads under a passphrase-style key.
// The entire payload is materialized in memory; there is no streaming, so
// the practical file size is bounded by available memory.
//
// The file's MIME type travels out-of-band in its metadata row, never inside
// the ciphertext. Decrypt returns raw bytes; tagging them with the original
// type is the caller's concern.
type Codec interface {
	Encrypt(plain []byte, key string) ([]byte, error)
	Decrypt(payload []byte, key string) ([]byte, error)
}

// Codec modes selectable via configuration.
const (
	ModeAESCBC = "aescbc"
	ModeAge    = "age"
)

// NewCodec returns the Codec for the given mode.
//
// ModeAESCBC is the legacy, wire-compatible default: no integrity tag, a
// wrong key produces garbage output instead of an error. ModeAge is the
// authenticated alternative; its output is not compatible with blobs written
// in ModeAESCBC.
func NewCodec(mode string) (Codec, error) {
	switch mode {
	case ModeAESCBC, "":
		return &AESCBCCodec{}, nil
	case ModeAge:
		return &AgeCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown encryption mode: %q", mode)
	}
}
