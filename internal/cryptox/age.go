package cryptox

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"
)

// AgeCodec is the authenticated alternative to AESCBCCodec, using age's
// scrypt-based passphrase encryption. Unlike the legacy mode, a wrong key is
// detected and reported as an error, and tampered ciphertext fails to
// decrypt. Its output is not compatible with blobs written by AESCBCCodec.
type AgeCodec struct{}

var _ Codec = (*AgeCodec)(nil)

func (c *AgeCodec) Encrypt(plain []byte, key string) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(key)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := w.Write(plain); err != nil {
		return nil, fmt.Errorf("encrypting data: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}

	return buf.Bytes(), nil
}

func (c *AgeCodec) Decrypt(payload []byte, key string) ([]byte, error) {
	identity, err := age.NewScryptIdentity(key)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(payload), identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting data: %w", err)
	}

	plain, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted data: %w", err)
	}
	return plain, nil
}
