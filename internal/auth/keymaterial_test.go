package auth

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/digitalWestie/tutanota-cli/internal/api"
	"github.com/digitalWestie/tutanota-cli/internal/crypto"
)

func wireBytes(data []byte) []any {
	out := make([]any, len(data))
	for i, b := range data {
		out[i] = float64(b)
	}
	return out
}

func TestUnlockKeyChain(t *testing.T) {
	salt := []byte("0123456789abcdef")
	passphraseKey := crypto.DerivePassphraseKey("pw", salt, "1")

	userGroupKey := bytes.Repeat([]byte{0x42}, crypto.Key128Size)
	mailGroupKey := bytes.Repeat([]byte{0x17}, crypto.Key128Size)

	// Wrapped the way a migrated account is: under the 128-bit truncation.
	wrapUser, err := crypto.Encrypt128(passphraseKey[:crypto.Key128Size], userGroupKey)
	if err != nil {
		t.Fatal(err)
	}
	wrapMail, err := crypto.Encrypt128(userGroupKey, mailGroupKey)
	if err != nil {
		t.Fatal(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/rest/sys/saltservice", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"420": base64.RawURLEncoding.EncodeToString(salt),
			"421": "1",
		})
	})
	mux.HandleFunc("/rest/sys/user/user-1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"95": map[string]any{
				"27":   wireBytes(wrapUser),
				"29":   "user-g",
				"2247": "0",
			},
			"96": []any{map[string]any{
				"27":   wireBytes(wrapMail),
				"29":   "mail-g",
				"1030": "5",
				"2247": "0",
			}},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client, _ := api.New(server.URL)
	chain, material, err := UnlockKeyChain(context.Background(), client, api.Credentials{Email: "a@b.c", Password: "pw"}, "user-1")
	if err != nil {
		t.Fatalf("UnlockKeyChain() error = %v", err)
	}

	got, ok := chain.Get("user-g", "0")
	if !ok || !bytes.Equal(got, userGroupKey) {
		t.Error("user group key not unlocked")
	}
	got, ok = chain.Get("mail-g", "0")
	if !ok || !bytes.Equal(got, mailGroupKey) {
		t.Error("mail group key not unlocked")
	}

	mail, ok := material.MailMembership()
	if !ok || mail.GroupID != "mail-g" {
		t.Errorf("mail membership = %+v, %v", mail, ok)
	}
}

func TestUnlockKeyChain_WrongPassword(t *testing.T) {
	salt := []byte("0123456789abcdef")
	rightKey := crypto.DerivePassphraseKey("right", salt, "1")

	wrapUser, err := crypto.Encrypt128(rightKey[:crypto.Key128Size], bytes.Repeat([]byte{0x42}, crypto.Key128Size))
	if err != nil {
		t.Fatal(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/rest/sys/saltservice", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"420": base64.RawURLEncoding.EncodeToString(salt),
			"421": "1",
		})
	})
	mux.HandleFunc("/rest/sys/user/user-1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"95": map[string]any{"27": wireBytes(wrapUser), "29": "user-g", "2247": "0"},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client, _ := api.New(server.URL)
	if _, _, err := UnlockKeyChain(context.Background(), client, api.Credentials{Email: "a@b.c", Password: "wrong"}, "user-1"); err == nil {
		t.Error("UnlockKeyChain with the wrong password should fail")
	}
}
