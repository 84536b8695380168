package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"filevault/internal/common"
)

// saltedMagic is the OpenSSL passphrase-mode header preceding the salt.
const saltedMagic = "Salted__"

// AESCBCCodec implements the legacy passphrase-keyed cipher the vault's blobs
// are written in: AES-256-CBC with an OpenSSL EVP_BytesToKey (single-round
// MD5) key schedule, framed as base64("Salted__" + 8-byte salt + ciphertext).
//
// A fresh random salt is drawn per call, so encrypting the same plaintext
// twice yields different ciphertext that decrypts to identical bytes.
//
// The format carries no integrity tag. Decrypting with the wrong key returns
// garbage bytes, not an error; callers cannot distinguish "wrong key" from
// "success" without checking the output against the file's recorded MIME
// type. ErrCrypto is returned only for malformed framing.
type AESCBCCodec struct{}

var _ Codec = (*AESCBCCodec)(nil)

func (c *AESCBCCodec) Encrypt(plain []byte, key string) ([]byte, error) {
	salt := make([]byte, 8)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("reading salt: %w", err)
	}

	aesKey, iv := evpBytesToKey([]byte(key), salt, 32, aes.BlockSize)

	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	padded := pkcs7Pad(plain, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	raw := make([]byte, 0, len(saltedMagic)+len(salt)+len(ciphertext))
	raw = append(raw, saltedMagic...)
	raw = append(raw, salt...)
	raw = append(raw, ciphertext...)

	out := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(out, raw)
	return out, nil
}

func (c *AESCBCCodec) Decrypt(payload []byte, key string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(string(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", common.ErrCrypto, err)
	}

	if len(raw) < len(saltedMagic)+8 || string(raw[:len(saltedMagic)]) != saltedMagic {
		return nil, fmt.Errorf("%w: missing salt header", common.ErrCrypto)
	}

	salt := raw[len(saltedMagic) : len(saltedMagic)+8]
	ciphertext := raw[len(saltedMagic)+8:]

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext is not block-aligned", common.ErrCrypto)
	}

	aesKey, iv := evpBytesToKey([]byte(key), salt, 32, aes.BlockSize)

	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)

	return pkcs7Trim(plain), nil
}

// evpBytesToKey derives a key and IV from a passphrase and salt the way
// OpenSSL's EVP_BytesToKey does with MD5 and a single round: each digest is
// MD5(previous digest || passphrase || salt), concatenated until keyLen+ivLen
// bytes are available.
func evpBytesToKey(passphrase, salt []byte, keyLen, ivLen int) (key, iv []byte) {
	var digest, out []byte
	for len(out) < keyLen+ivLen {
		h := md5.New()
		h.Write(digest)
		h.Write(passphrase)
		h.Write(salt)
		digest = h.Sum(nil)
		out = append(out, digest...)
	}
	return out[:keyLen], out[keyLen : keyLen+ivLen]
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

// pkcs7Trim strips the trailing PKCS#7 padding. It is deliberately lenient:
// when the final byte cannot be a valid pad length the buffer is returned
// unchanged, so a wrong key surfaces as garbage output rather than an error.
func pkcs7Trim(b []byte) []byte {
	if len(b) == 0 {
		return b
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return b
	}
	return b[:len(b)-n]
}
