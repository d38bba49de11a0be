package keychain

import (
	"fmt"

	"github.com/digitalWestie/tutanota-cli/internal/crypto"
	"github.com/digitalWestie/tutanota-cli/internal/wire"
)

// MailGroupType is the membership groupType value ("96" attribute 1030)
// that identifies the user's mail group.
const MailGroupType = "5"

// Membership is one parsed entry from the User entity's "95" (the user's
// own group membership) or "96" (all other memberships) attributes.
type Membership struct {
	SymEncGKey      []byte
	GroupID         string
	GroupType       string // empty for the "95" self-membership
	GroupKeyVersion string
}

// UserMaterial is the parsed key material Unlock reads from a User
// entity.
type UserMaterial struct {
	UserGroupMembership Membership
	Memberships         []Membership
}

// MailMembership returns the membership whose groupType is MailGroupType,
// if the user has one.
func (m *UserMaterial) MailMembership() (Membership, bool) {
	for _, membership := range m.Memberships {
		if membership.GroupType == MailGroupType {
			return membership, true
		}
	}
	return Membership{}, false
}

// ParseUserMaterial reads the "95" and "96" attributes off a User wire
// instance into typed membership records.
func ParseUserMaterial(user wire.Instance) (*UserMaterial, error) {
	selfAgg := user.AggregationAttr("95")
	if selfAgg == nil {
		return nil, fmt.Errorf("user entity missing \"95\" (user group membership)")
	}
	self, err := parseMembership(selfAgg)
	if err != nil {
		return nil, fmt.Errorf("parse user group membership: %w", err)
	}

	memberships := user.AggregationSliceAttr("96")
	parsed := make([]Membership, 0, len(memberships))
	for _, agg := range memberships {
		m, err := parseMembership(agg)
		if err != nil {
			return nil, fmt.Errorf("parse membership: %w", err)
		}
		parsed = append(parsed, m)
	}

	return &UserMaterial{UserGroupMembership: self, Memberships: parsed}, nil
}

func parseMembership(agg wire.Instance) (Membership, error) {
	symEncGKey, err := crypto.NormalizeBytes(wire.UnwrapSingleElementArray(agg["27"]))
	if err != nil {
		return Membership{}, fmt.Errorf("symEncGKey: %w", err)
	}
	// 2247 is the wrapped group key's own version (groupKeyVersion); its
	// sibling 2246 is symKeyVersion, the version of the wrapping key, which
	// unlock never needs because it always unwraps with the current key.
	return Membership{
		SymEncGKey:      symEncGKey,
		GroupID:         agg.StringAttr("29"),
		GroupType:       agg.StringAttr("1030"),
		GroupKeyVersion: agg.StringAttr("2247"),
	}, nil
}
