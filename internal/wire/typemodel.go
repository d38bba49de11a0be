package wire

// ScalarType is one of the scalar value types the type model declares for
// an attribute. Decryption coerces decrypted UTF-8 bytes back to these.
type ScalarType int

const (
	ScalarString ScalarType = iota
	ScalarNumber
	ScalarDate
	ScalarBoolean
	ScalarBytes
	ScalarCompressedString
)

// ZeroValue returns the value decryption substitutes when the session key
// is unavailable or decryption fails.
func (s ScalarType) ZeroValue() any {
	switch s {
	case ScalarNumber:
		return int64(0)
	case ScalarDate:
		return int64(0) // epoch
	case ScalarBoolean:
		return false
	case ScalarBytes:
		return []byte{}
	default: // ScalarString, ScalarCompressedString
		return ""
	}
}

// AttributeModel describes one numeric attribute id: its declared scalar
// type and whether it is encrypted on the wire.
type AttributeModel struct {
	ID        string
	Scalar    ScalarType
	Encrypted bool
	// FieldName is the symbolic name the codec normalizes this attribute
	// to. Attribute ids with no FieldName are copied through unchanged
	// under their numeric id — the association ids the core never needs
	// to address by name.
	FieldName string
}

// TypeModel is the immutable, versioned descriptor for one entity type.
type TypeModel struct {
	App       string
	Name      string
	Version   string
	Encrypted bool

	// Values maps numeric attribute id to its descriptor.
	Values map[string]AttributeModel

	// Owner* are the numeric ids of the three special attributes every
	// encrypted type declares. Empty for non-encrypted types.
	OwnerGroupID         string
	OwnerEncSessionKeyID string
	OwnerKeyVersionID    string
}

// PathSegment returns the lowercase type-name segment used in REST paths.
func (t *TypeModel) PathSegment() string {
	return toLower(t.Name)
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}

// Registry is the process-lifetime table of every entity type this client
// touches, keyed by type name.
var Registry = map[string]*TypeModel{
	"MailboxGroupRoot": {
		App:       "tutanota",
		Name:      "MailboxGroupRoot",
		Version:   "102",
		Encrypted: false,
		Values: map[string]AttributeModel{
			"699": {ID: "699", Scalar: ScalarString, Encrypted: false, FieldName: "mailbox"},
		},
	},
	"MailBox": {
		App:                  "tutanota",
		Name:                 "MailBox",
		Version:              "102",
		Encrypted:            true,
		OwnerGroupID:         "590",
		OwnerEncSessionKeyID: "591",
		OwnerKeyVersionID:    "1396",
		Values: map[string]AttributeModel{
			"590":  {ID: "590", Scalar: ScalarString, Encrypted: false, FieldName: "_ownerGroup"},
			"591":  {ID: "591", Scalar: ScalarBytes, Encrypted: false, FieldName: "_ownerEncSessionKey"},
			"1396": {ID: "1396", Scalar: ScalarString, Encrypted: false, FieldName: "_ownerKeyVersion"},
			"443":  {ID: "443", Scalar: ScalarString, Encrypted: false, FieldName: "mailSetRef"},
		},
	},
	"MailSet": {
		App:                  "tutanota",
		Name:                 "MailSet",
		Version:              "102",
		Encrypted:            true,
		OwnerGroupID:         "589",
		OwnerEncSessionKeyID: "434",
		OwnerKeyVersionID:    "1399",
		Values: map[string]AttributeModel{
			"589":  {ID: "589", Scalar: ScalarString, Encrypted: false, FieldName: "_ownerGroup"},
			"434":  {ID: "434", Scalar: ScalarBytes, Encrypted: false, FieldName: "_ownerEncSessionKey"},
			"1399": {ID: "1399", Scalar: ScalarString, Encrypted: false, FieldName: "_ownerKeyVersion"},
			"435":  {ID: "435", Scalar: ScalarString, Encrypted: true, FieldName: "name"},
			"1479": {ID: "1479", Scalar: ScalarString, Encrypted: true, FieldName: "color"},
			"1459": {ID: "1459", Scalar: ScalarString, Encrypted: false, FieldName: "entries"},
			// folderType drives display-name substitution for unnamed
			// folders.
			"1481": {ID: "1481", Scalar: ScalarNumber, Encrypted: false, FieldName: "folderType"},
		},
	},
	"MailSetEntry": {
		App:       "tutanota",
		Name:      "MailSetEntry",
		Version:   "102",
		Encrypted: false,
		Values: map[string]AttributeModel{
			"1456": {ID: "1456", Scalar: ScalarString, Encrypted: false, FieldName: "mail"},
		},
	},
	"Mail": {
		App:                  "tutanota",
		Name:                 "Mail",
		Version:              "102",
		Encrypted:            true,
		OwnerGroupID:         "587",
		OwnerEncSessionKeyID: "102",
		OwnerKeyVersionID:    "1395",
		Values: map[string]AttributeModel{
			"587":  {ID: "587", Scalar: ScalarString, Encrypted: false, FieldName: "_ownerGroup"},
			"102":  {ID: "102", Scalar: ScalarBytes, Encrypted: false, FieldName: "_ownerEncSessionKey"},
			"1395": {ID: "1395", Scalar: ScalarString, Encrypted: false, FieldName: "_ownerKeyVersion"},
			"105":  {ID: "105", Scalar: ScalarString, Encrypted: true, FieldName: "subject"},
			"617":  {ID: "617", Scalar: ScalarString, Encrypted: true, FieldName: "differentEnvelopeSender"},
			"426":  {ID: "426", Scalar: ScalarString, Encrypted: true},
			"466":  {ID: "466", Scalar: ScalarString, Encrypted: true},
			"866":  {ID: "866", Scalar: ScalarString, Encrypted: true},
			"1120": {ID: "1120", Scalar: ScalarString, Encrypted: true},
			"1346": {ID: "1346", Scalar: ScalarString, Encrypted: true},
			"1677": {ID: "1677", Scalar: ScalarString, Encrypted: true},
		},
	},
	"Group": {
		App:       "sys",
		Name:      "Group",
		Version:   "143",
		Encrypted: false,
		Values: map[string]AttributeModel{
			// formerGroupKeys is a single-element aggregation wrapping
			// the former-keys list id.
			"823": {ID: "823", Scalar: ScalarString, Encrypted: false, FieldName: "formerGroupKeys"},
		},
	},
	"User": {
		App:       "sys",
		Name:      "User",
		Version:   "143",
		Encrypted: false,
		Values: map[string]AttributeModel{
			"95": {ID: "95", Scalar: ScalarBytes, Encrypted: false, FieldName: "userGroup"},
			"96": {ID: "96", Scalar: ScalarBytes, Encrypted: false, FieldName: "memberships"},
		},
	},
	"GroupKey": {
		App:       "sys",
		Name:      "GroupKey",
		Version:   "143",
		Encrypted: false,
		Values: map[string]AttributeModel{
			// ownerEncGKey is the former key wrapped under the next-newer
			// version's key.
			"830": {ID: "830", Scalar: ScalarBytes, Encrypted: false, FieldName: "ownerEncGKey"},
		},
	},
}
