// Package crypto — шифрование полезной нагрузки заявок (NaCl secretbox).
// Формат: base64(nonce[24] || box).
package crypto

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/Gunvolt24/autoagent/internal/ports"
)

const (
	keySize   = 32
	nonceSize = 24
)

var (
	// ErrKeyMissing — ключ не задан там, где он обязателен.
	ErrKeyMissing = errors.New("lead encryption key is not set")
	// ErrInvalidKey — ключ не base64 или не 32 байта.
	ErrInvalidKey = errors.New("lead encryption key must be base64 of 32 bytes")
	// ErrOpen — данные повреждены или зашифрованы другим ключом.
	ErrOpen = errors.New("cannot open sealed payload")
)

var _ ports.PayloadSealer = (*Sealer)(nil)

// Sealer — шифрует и расшифровывает JSON-значения одним ключом.
type Sealer struct {
	key [keySize]byte
}

func NewSealer(key [keySize]byte) *Sealer {
	return &Sealer{key: key}
}

// ParseKey — ключ из base64.
func ParseKey(b64 string) ([keySize]byte, error) {
	var key [keySize]byte
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil || len(raw) != keySize {
		return key, ErrInvalidKey
	}
	copy(key[:], raw)
	return key, nil
}

// GenerateKey — случайный ключ в base64.
func GenerateKey() (string, error) {
	var key [keySize]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key[:]), nil
}

// Load — Sealer из конфигурации. Пустой ключ в проде — ошибка,
// вне прода генерируется временный ключ с предупреждением в лог.
func Load(ctx context.Context, b64 string, isProd bool, log ports.Logger) (*Sealer, error) {
	if b64 == "" {
		if isProd {
			return nil, ErrKeyMissing
		}
		generated, err := GenerateKey()
		if err != nil {
			return nil, err
		}
		log.Warnf(ctx, "LEADS_ENC_KEY not set, using a random key until restart; leads sealed now cannot be opened later")
		b64 = generated
	}
	key, err := ParseKey(b64)
	if err != nil {
		return nil, err
	}
	return NewSealer(key), nil
}

// Seal — JSON-сериализация v и шифрование со случайным nonce.
func (s *Sealer) Seal(v any) (string, error) {
	plain, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}

	out := secretbox.Seal(nonce[:], plain, &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Open — расшифровать sealed и разобрать JSON в v.
func (s *Sealer) Open(sealed string, v any) error {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return ErrOpen
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return ErrOpen
	}
	if err := json.Unmarshal(plain, v); err != nil {
		return fmt.Errorf("%w: %v", ErrOpen, err)
	}
	return nil
}
