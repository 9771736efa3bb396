package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func transcript(text string) *domain.Snapshot {
	return &domain.Snapshot{
		SessionID: "test-session",
		NodeKey:   "support",
		Messages: []domain.Message{
			domain.BotMessage("Hi"),
			domain.UserMessage(text),
		},
	}
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := memory.NewStore()
	key := generateKey(t)
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	sessionID := "test-session"

	if err := secureStore.Save(ctx, sessionID, transcript("my-secret-sauce")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Underlying store only sees the envelope
	stored, err := underlyingStore.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if len(stored.Messages) != 0 || stored.NodeKey != "" {
		t.Fatalf("Expected transcript to be hidden, found: %+v", stored)
	}
	if stored.Sealed == "" {
		t.Fatal("Expected sealed payload in envelope")
	}

	loaded, err := secureStore.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("Load via middleware failed: %v", err)
	}
	if loaded.Messages[1].Text != "my-secret-sauce" {
		t.Errorf("Expected 'my-secret-sauce', got %v", loaded.Messages[1].Text)
	}
	if loaded.NodeKey != "support" {
		t.Errorf("Expected node 'support', got %q", loaded.NodeKey)
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	mwOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})
	secureStoreOld := mwOld(underlyingStore)

	ctx := context.Background()
	sessionID := "rotation-session"

	if err := secureStoreOld.Save(ctx, sessionID, transcript("encrypted-with-old-key")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load with NEW key (Active) + OLD key (Fallback)
	mwNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	secureStoreNew := mwNew(underlyingStore)

	loaded, err := secureStoreNew.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("Load with rotated key failed: %v", err)
	}
	if loaded.Messages[1].Text != "encrypted-with-old-key" {
		t.Errorf("Decryption with fallback key failed")
	}

	// Save again, now sealed with the NEW key
	loaded.Messages[1].Text = "encrypted-with-new-key"
	if err := secureStoreNew.Save(ctx, sessionID, loaded); err != nil {
		t.Fatalf("Save with new key failed: %v", err)
	}

	if _, err = secureStoreOld.Load(ctx, sessionID); err == nil {
		t.Error("Expected failure when loading new-key encryption with old-key middleware")
	}
}

func TestEncryptionMiddleware_RejectsPlainSnapshot(t *testing.T) {
	underlyingStore := memory.NewStore()
	ctx := context.Background()
	if err := underlyingStore.Save(ctx, "plain", transcript("hello")); err != nil {
		t.Fatal(err)
	}

	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	if _, err := secureStore.Load(ctx, "plain"); err == nil {
		t.Error("Expected plain snapshot to be rejected")
	}
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic for invalid key size")
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
}

func TestDecodeKey(t *testing.T) {
	key := generateKey(t)

	for _, encoded := range []string{
		base64.StdEncoding.EncodeToString(key),
		base64.URLEncoding.EncodeToString(key),
		" " + base64.StdEncoding.EncodeToString(key) + "\n",
	} {
		got, err := middleware.DecodeKey(encoded)
		if err != nil {
			t.Fatalf("DecodeKey(%q): %v", encoded, err)
		}
		if string(got) != string(key) {
			t.Errorf("DecodeKey(%q) returned a different key", encoded)
		}
	}

	if _, err := middleware.DecodeKey(base64.StdEncoding.EncodeToString([]byte("short"))); err == nil {
		t.Error("Expected error for short key")
	}
	if _, err := middleware.DecodeKey("%%%"); err == nil {
		t.Error("Expected error for invalid base64")
	}
}
