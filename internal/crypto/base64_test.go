package crypto

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func TestBase64URL_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"simple", []byte("hello")},
		{"binary", []byte{0x00, 0xff, 0xfb, 0xef}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := ToBase64URL(tt.data)
			decoded, err := FromBase64URL(encoded)
			if err != nil {
				t.Fatalf("FromBase64URL() error = %v", err)
			}
			if !bytes.Equal(decoded, tt.data) {
				t.Errorf("decoded = %v, want %v", decoded, tt.data)
			}
		})
	}
}

func TestToBase64URL_NoPadding(t *testing.T) {
	encoded := ToBase64URL([]byte("a"))
	if bytes.ContainsRune([]byte(encoded), '=') {
		t.Errorf("encoded = %q, want no padding", encoded)
	}
}

func TestNormalizeBytes(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0x04}

	tests := []struct {
		name    string
		input   any
		want    []byte
		wantErr bool
	}{
		{"nil", nil, nil, false},
		{"raw bytes", raw, raw, false},
		{"base64url string", ToBase64URL(raw), raw, false},
		{"standard base64 string", base64.StdEncoding.EncodeToString(raw), raw, false},
		{"byte array of numbers", []any{float64(1), float64(2), float64(3), float64(4)}, raw, false},
		{"byte array with non-numeric element", []any{float64(1), "x"}, nil, true},
		{"unsupported type", map[string]any{}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeBytes(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("NormalizeBytes() should return an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeBytes() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("NormalizeBytes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCustomIDFromVersion(t *testing.T) {
	// base64url of the standard-base64 encoding of the decimal text.
	got := CustomIDFromVersion("3")
	inner := base64.StdEncoding.EncodeToString([]byte("3"))
	want := base64.RawURLEncoding.EncodeToString([]byte(inner))
	if got != want {
		t.Errorf("CustomIDFromVersion(\"3\") = %q, want %q", got, want)
	}

	if CustomIDFromVersion("3") != CustomIDFromVersion("3") {
		t.Error("CustomIDFromVersion is not deterministic")
	}
	if CustomIDFromVersion("3") == CustomIDFromVersion("4") {
		t.Error("distinct versions encoded to the same custom id")
	}
}
