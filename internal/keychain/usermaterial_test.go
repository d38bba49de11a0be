package keychain

import (
	"bytes"
	"testing"

	"github.com/digitalWestie/tutanota-cli/internal/wire"
)

func wireBytes(data []byte) []any {
	out := make([]any, len(data))
	for i, b := range data {
		out[i] = float64(b)
	}
	return out
}

func TestParseUserMaterial(t *testing.T) {
	selfKey := bytes.Repeat([]byte{0x11}, 16)
	mailKey := bytes.Repeat([]byte{0x22}, 16)
	otherKey := bytes.Repeat([]byte{0x33}, 16)

	user := wire.Instance{
		"95": map[string]any{
			"27":   wireBytes(selfKey),
			"29":   "ug",
			"2246": "1",
			"2247": "0",
		},
		"96": []any{
			map[string]any{
				"27":   wireBytes(mailKey),
				"29":   "mail-g",
				"1030": "5",
				"2246": "1",
				"2247": "0",
			},
			map[string]any{
				"27":   wireBytes(otherKey),
				"29":   "x",
				"1030": "4",
				"2246": "1",
				"2247": "0",
			},
		},
	}

	material, err := ParseUserMaterial(user)
	if err != nil {
		t.Fatalf("ParseUserMaterial() error = %v", err)
	}

	if material.UserGroupMembership.GroupID != "ug" {
		t.Errorf("user group id = %s, want ug", material.UserGroupMembership.GroupID)
	}
	if !bytes.Equal(material.UserGroupMembership.SymEncGKey, selfKey) {
		t.Error("user group symEncGKey mismatch")
	}
	if material.UserGroupMembership.GroupKeyVersion != "0" {
		t.Errorf("user group key version = %s, want 0", material.UserGroupMembership.GroupKeyVersion)
	}

	mail, ok := material.MailMembership()
	if !ok {
		t.Fatal("MailMembership() should find the groupType 5 membership")
	}
	if mail.GroupID != "mail-g" {
		t.Errorf("mail group id = %s, want mail-g", mail.GroupID)
	}
	if !bytes.Equal(mail.SymEncGKey, mailKey) {
		t.Error("mail membership symEncGKey mismatch")
	}
}

func TestParseUserMaterial_WrappedAggregation(t *testing.T) {
	// The "95" aggregation may arrive wrapped in a one-element list.
	user := wire.Instance{
		"95": []any{map[string]any{
			"27":   wireBytes(bytes.Repeat([]byte{0x01}, 16)),
			"29":   "ug",
			"2247": "2",
		}},
	}

	material, err := ParseUserMaterial(user)
	if err != nil {
		t.Fatalf("ParseUserMaterial() error = %v", err)
	}
	if material.UserGroupMembership.GroupID != "ug" || material.UserGroupMembership.GroupKeyVersion != "2" {
		t.Errorf("membership = %+v", material.UserGroupMembership)
	}
	if _, ok := material.MailMembership(); ok {
		t.Error("MailMembership() should be absent when no groupType 5 membership exists")
	}
}

func TestParseUserMaterial_Missing95(t *testing.T) {
	if _, err := ParseUserMaterial(wire.Instance{"96": []any{}}); err == nil {
		t.Error("ParseUserMaterial should fail without a \"95\" membership")
	}
}
