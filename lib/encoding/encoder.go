package encoding

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Sentinel errors returned by Decode.
var (
	ErrInvalidFormat    = errors.New("encoding: invalid format")
	ErrSignatureInvalid = errors.New("encoding: signature verification failed")
	ErrDecryptFailed    = errors.New("encoding: decryption failed")
)

// Encoder turns a widget's local data into a compact string that can be
// stored in a DOM attribute and trusted when read back.
// It supports two modes:
//   - Signed (default): base64 msgpack + HMAC - visible but tamper-proof
//   - Encrypted: AES-256-GCM - fully opaque
type Encoder struct {
	key []byte
	gcm cipher.AEAD
}

// NewEncoder creates an encoder. Keys that are not exactly 32 bytes are
// stretched with SHA-256.
func NewEncoder(key []byte) (*Encoder, error) {
	if len(key) != 32 {
		h := sha256.Sum256(key)
		key = h[:]
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Encoder{
		key: key,
		gcm: gcm,
	}, nil
}

// Encode serializes data. If sensitive is true the result is encrypted,
// otherwise it is signed.
func (e *Encoder) Encode(data map[string]any, sensitive bool) (string, error) {
	packed, err := msgpack.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encoding: marshal: %w", err)
	}

	if sensitive {
		return e.encrypt(packed)
	}
	return e.sign(packed), nil
}

// Decode reverses Encode. The sensitive flag must match the one used to
// encode.
func (e *Encoder) Decode(encoded string, sensitive bool) (map[string]any, error) {
	var packed []byte
	var err error

	if sensitive {
		packed, err = e.decrypt(encoded)
	} else {
		packed, err = e.verify(encoded)
	}
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := msgpack.Unmarshal(packed, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

// sign creates base64(data).base64(mac)
func (e *Encoder) sign(data []byte) string {
	b64 := base64.RawURLEncoding.EncodeToString(data)
	return b64 + "." + base64.RawURLEncoding.EncodeToString(e.mac(data))
}

func (e *Encoder) mac(data []byte) []byte {
	mac := hmac.New(sha256.New, e.key)
	mac.Write(data)
	return mac.Sum(nil)[:16]
}

func (e *Encoder) verify(encoded string) ([]byte, error) {
	payload, sigPart, ok := strings.Cut(encoded, ".")
	if !ok {
		return nil, ErrInvalidFormat
	}

	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return nil, ErrSignatureInvalid
	}

	if !hmac.Equal(sig, e.mac(data)) {
		return nil, ErrSignatureInvalid
	}
	return data, nil
}

func (e *Encoder) encrypt(data []byte) (string, error) {
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ciphertext := e.gcm.Seal(nonce, nonce, data, nil)
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

func (e *Encoder) decrypt(encoded string) ([]byte, error) {
	ciphertext, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidFormat
	}

	if len(ciphertext) < e.gcm.NonceSize() {
		return nil, ErrInvalidFormat
	}

	nonce := ciphertext[:e.gcm.NonceSize()]
	plain, err := e.gcm.Open(nil, nonce, ciphertext[e.gcm.NonceSize():], nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plain, nil
}
