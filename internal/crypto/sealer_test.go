package crypto

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/Gunvolt24/autoagent/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}

func mustSealer(t *testing.T) *Sealer {
	t.Helper()
	b64, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	s, err := Load(context.Background(), b64, true, nopLogger{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestSealOpen_RoundTrip(t *testing.T) {
	s := mustSealer(t)
	in := domain.LeadPayload{
		User:      domain.LeadUser{Name: "Jane", Email: "jane@example.com"},
		VehicleID: "mc-1",
		VIN:       "1HGCM82633A004352",
	}

	sealed, err := s.Seal(in)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if strings.Contains(sealed, "jane@example.com") {
		t.Fatalf("sealed payload leaks plaintext")
	}

	var out domain.LeadPayload
	if err := s.Open(sealed, &out); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if out.User.Email != in.User.Email || out.VehicleID != in.VehicleID {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestSeal_RandomNonce(t *testing.T) {
	s := mustSealer(t)

	a, _ := s.Seal(map[string]string{"k": "v"})
	b, _ := s.Seal(map[string]string{"k": "v"})
	if a == b {
		t.Fatalf("two seals of the same value must differ")
	}
}

func TestOpen_WrongKeyOrTampered(t *testing.T) {
	s1, s2 := mustSealer(t), mustSealer(t)
	sealed, _ := s1.Seal(map[string]string{"k": "v"})

	var out map[string]string
	if err := s2.Open(sealed, &out); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen for foreign key, got %v", err)
	}

	raw, _ := base64.StdEncoding.DecodeString(sealed)
	raw[len(raw)-1] ^= 0xff
	if err := s1.Open(base64.StdEncoding.EncodeToString(raw), &out); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen for tampered box, got %v", err)
	}
	if err := s1.Open("@@not-base64@@", &out); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen for garbage, got %v", err)
	}
}

func TestLoad_KeyRules(t *testing.T) {
	ctx := context.Background()

	if _, err := Load(ctx, "", true, nopLogger{}); !errors.Is(err, ErrKeyMissing) {
		t.Fatalf("expected ErrKeyMissing in prod, got %v", err)
	}
	if s, err := Load(ctx, "", false, nopLogger{}); err != nil || s == nil {
		t.Fatalf("expected generated key outside prod, got %v", err)
	}
	short := base64.StdEncoding.EncodeToString([]byte("too-short"))
	if _, err := Load(ctx, short, false, nopLogger{}); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}
