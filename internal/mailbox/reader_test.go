package mailbox

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/digitalWestie/tutanota-cli/internal/api"
	"github.com/digitalWestie/tutanota-cli/internal/crypto"
	"github.com/digitalWestie/tutanota-cli/internal/keychain"
	"github.com/digitalWestie/tutanota-cli/internal/wire"
)

// fakeAccessor serves canned entities and ranges, recording calls.
type fakeAccessor struct {
	mu       sync.Mutex
	entities map[string]wire.Instance
	ranges   map[string][]wire.Instance
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeAccessor) track() func() {
	n := f.inFlight.Add(1)
	for {
		max := f.maxSeen.Load()
		if n <= max || f.maxSeen.CompareAndSwap(max, n) {
			break
		}
	}
	return func() { f.inFlight.Add(-1) }
}

func (f *fakeAccessor) LoadEntity(ctx context.Context, typeName, id string) (wire.Instance, error) {
	defer f.track()()
	f.mu.Lock()
	defer f.mu.Unlock()
	inst, ok := f.entities[typeName+"/"+id]
	if !ok {
		return nil, fmt.Errorf("no fixture for %s/%s", typeName, id)
	}
	return inst, nil
}

func (f *fakeAccessor) LoadRange(ctx context.Context, typeName, listID, start string, count int, reverse bool) ([]wire.Instance, error) {
	defer f.track()()
	f.mu.Lock()
	defer f.mu.Unlock()
	insts, ok := f.ranges[typeName+"/"+listID]
	if !ok {
		return nil, fmt.Errorf("no range fixture for %s/%s", typeName, listID)
	}
	return insts, nil
}

func randomKey(t *testing.T, size int) []byte {
	t.Helper()
	key := make([]byte, size)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}
	return key
}

func wrap128(t *testing.T, key, plaintext []byte) string {
	t.Helper()
	wrapped, err := crypto.Encrypt128(key, plaintext)
	if err != nil {
		t.Fatal(err)
	}
	return crypto.ToBase64URL(wrapped)
}

func encAttr(t *testing.T, sessionKey []byte, plaintext string) string {
	t.Helper()
	return wrap128(t, sessionKey, []byte(plaintext))
}

// mailboxFixture builds a full folder-walk fixture: group root, mail box,
// and a mail-sets list with the given MailSet elements.
func mailboxFixture(t *testing.T, mailGroupKey []byte, sets []wire.Instance) *fakeAccessor {
	t.Helper()
	mailBoxSessionKey := randomKey(t, crypto.Key128Size)
	return &fakeAccessor{
		entities: map[string]wire.Instance{
			"MailboxGroupRoot/mail-g": {"699": "mailbox-1"},
			"MailBox/mailbox-1": {
				"590":  "mail-g",
				"591":  wrap128(t, mailGroupKey, mailBoxSessionKey),
				"1396": "0",
				"443":  []any{map[string]any{"442": "sets-list"}},
			},
		},
		ranges: map[string][]wire.Instance{
			"MailSet/sets-list": sets,
		},
	}
}

func mailSet(t *testing.T, mailGroupKey []byte, elementID, name, color string, folderType string) wire.Instance {
	t.Helper()
	sessionKey := randomKey(t, crypto.Key128Size)
	return wire.Instance{
		"589":  "mail-g",
		"434":  wrap128(t, mailGroupKey, sessionKey),
		"1399": "0",
		"435":  encAttr(t, sessionKey, name),
		"1479": encAttr(t, sessionKey, color),
		"1459": "entries-" + elementID,
		"1481": folderType,
		"_id":  []any{"sets-list", elementID},
	}
}

func chainWithCurrent(t *testing.T, mailGroupKey []byte) *keychain.Chain {
	t.Helper()
	passphraseKey := randomKey(t, crypto.Key128Size)
	userGroupKey := randomKey(t, crypto.Key128Size)

	wrapUser, err := crypto.Encrypt128(passphraseKey, userGroupKey)
	if err != nil {
		t.Fatal(err)
	}
	wrapMail, err := crypto.Encrypt128(userGroupKey, mailGroupKey)
	if err != nil {
		t.Fatal(err)
	}

	chain := keychain.NewChain()
	err = chain.Unlock(passphraseKey, &keychain.UserMaterial{
		UserGroupMembership: keychain.Membership{
			SymEncGKey:      wrapUser,
			GroupID:         "user-g",
			GroupKeyVersion: "0",
		},
		Memberships: []keychain.Membership{{
			SymEncGKey:      wrapMail,
			GroupID:         "mail-g",
			GroupType:       keychain.MailGroupType,
			GroupKeyVersion: "0",
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return chain
}

func TestListFolders(t *testing.T) {
	mailGroupKey := randomKey(t, crypto.Key128Size)
	chain := chainWithCurrent(t, mailGroupKey)

	accessor := mailboxFixture(t, mailGroupKey, []wire.Instance{
		mailSet(t, mailGroupKey, "f1", "Projects", "#00ff00", "0"),
		mailSet(t, mailGroupKey, "f2", "", "", "2"),
		mailSet(t, mailGroupKey, "f3", "   ", "", "8"),
	})

	reader := NewReader(accessor, chain, "mail-g")
	folders, err := reader.ListFolders(context.Background())
	if err != nil {
		t.Fatalf("ListFolders() error = %v", err)
	}

	if len(folders) != 3 {
		t.Fatalf("folders = %d, want 3", len(folders))
	}

	if folders[0].Name != "Projects" {
		t.Errorf("folder 0 name = %q, want the decrypted name", folders[0].Name)
	}
	if folders[0].ID != "sets-list/f1" {
		t.Errorf("folder 0 id = %q", folders[0].ID)
	}
	if folders[0].EntriesListID != "entries-f1" {
		t.Errorf("folder 0 entries list = %q", folders[0].EntriesListID)
	}

	// Empty decrypted name substitutes by folder type.
	if folders[1].Name != "Sent" {
		t.Errorf("folder 1 name = %q, want Sent", folders[1].Name)
	}
	// Whitespace-only decrypted name substitutes too.
	if folders[2].Name != "Label (no name)" {
		t.Errorf("folder 2 name = %q, want Label (no name)", folders[2].Name)
	}
}

func TestListFolders_MissingMailboxID(t *testing.T) {
	chain := keychain.NewChain()
	accessor := &fakeAccessor{
		entities: map[string]wire.Instance{
			"MailboxGroupRoot/mail-g": {},
		},
	}

	if _, err := NewReader(accessor, chain, "mail-g").ListFolders(context.Background()); err == nil {
		t.Error("a group root without a mailbox id should error")
	}
}

func TestListFolders_MissingMailSetsList(t *testing.T) {
	mailGroupKey := randomKey(t, crypto.Key128Size)
	chain := chainWithCurrent(t, mailGroupKey)

	accessor := &fakeAccessor{
		entities: map[string]wire.Instance{
			"MailboxGroupRoot/mail-g": {"699": "mailbox-1"},
			"MailBox/mailbox-1": {
				"590":  "mail-g",
				"591":  wrap128(t, mailGroupKey, randomKey(t, crypto.Key128Size)),
				"1396": "0",
			},
		},
	}

	if _, err := NewReader(accessor, chain, "mail-g").ListFolders(context.Background()); err == nil {
		t.Error("a mail box without a mail-sets list should error")
	}
}

func TestListFolders_UnavailableKeyYieldsZeroNames(t *testing.T) {
	mailGroupKey := randomKey(t, crypto.Key128Size)
	chain := chainWithCurrent(t, mailGroupKey)

	// Session key wrapped under a key the chain does not hold, at a version
	// the former-key walker cannot reach (no former-keys fixture needed:
	// version 3 is newer than the cached current 0, so no walk happens).
	strangerKey := randomKey(t, crypto.Key128Size)
	sessionKey := randomKey(t, crypto.Key128Size)
	orphan := wire.Instance{
		"589":  "mail-g",
		"434":  wrap128(t, strangerKey, sessionKey),
		"1399": "3",
		"435":  encAttr(t, sessionKey, "Hidden"),
		"1479": encAttr(t, sessionKey, ""),
		"1459": "entries-f1",
		"1481": "1",
		"_id":  []any{"sets-list", "f1"},
	}

	accessor := mailboxFixture(t, mailGroupKey, []wire.Instance{orphan})

	folders, err := NewReader(accessor, chain, "mail-g").ListFolders(context.Background())
	if err != nil {
		t.Fatalf("ListFolders() error = %v", err)
	}
	if len(folders) != 1 {
		t.Fatalf("folders = %d, want 1", len(folders))
	}
	// The name decrypts to the zero value, so the folderType name shows.
	if folders[0].Name != "Inbox" {
		t.Errorf("folder name = %q, want the folderType substitution Inbox", folders[0].Name)
	}
	// Association ids survive the all-zeros decrypt.
	if folders[0].EntriesListID != "entries-f1" {
		t.Errorf("entries list id = %q, want preserved", folders[0].EntriesListID)
	}
}

func TestListFolders_StaleOwnerKeyVersionRetries(t *testing.T) {
	mailGroupKey := randomKey(t, crypto.Key128Size)
	chain := chainWithCurrent(t, mailGroupKey)

	// The instance claims key version 2, but its session key is actually
	// wrapped under the current version-0 key. The retry loop falls back to
	// the other cached versions and recovers.
	sessionKey := randomKey(t, crypto.Key128Size)
	stale := wire.Instance{
		"589":  "mail-g",
		"434":  wrap128(t, mailGroupKey, sessionKey),
		"1399": "2",
		"435":  encAttr(t, sessionKey, "Receipts"),
		"1479": encAttr(t, sessionKey, ""),
		"1459": "entries-f1",
		"1481": "0",
		"_id":  []any{"sets-list", "f1"},
	}

	accessor := mailboxFixture(t, mailGroupKey, []wire.Instance{stale})

	folders, err := NewReader(accessor, chain, "mail-g").ListFolders(context.Background())
	if err != nil {
		t.Fatalf("ListFolders() error = %v", err)
	}
	if folders[0].Name != "Receipts" {
		t.Errorf("folder name = %q, want Receipts via version retry", folders[0].Name)
	}
}

func TestListFolders_FormerKeyPrewalk(t *testing.T) {
	key1 := randomKey(t, crypto.Key128Size)
	key0 := randomKey(t, crypto.Key128Size)

	// Chain holds version 1 as current; the folder is wrapped under the
	// former version 0, reachable through the former-key list.
	passphraseKey := randomKey(t, crypto.Key128Size)
	userGroupKey := randomKey(t, crypto.Key128Size)
	wrapUser, _ := crypto.Encrypt128(passphraseKey, userGroupKey)
	wrapMail, _ := crypto.Encrypt128(userGroupKey, key1)

	chain := keychain.NewChain()
	if err := chain.Unlock(passphraseKey, &keychain.UserMaterial{
		UserGroupMembership: keychain.Membership{SymEncGKey: wrapUser, GroupID: "user-g", GroupKeyVersion: "0"},
		Memberships: []keychain.Membership{{
			SymEncGKey: wrapMail, GroupID: "mail-g",
			GroupType: keychain.MailGroupType, GroupKeyVersion: "1",
		}},
	}); err != nil {
		t.Fatal(err)
	}

	sessionKey := randomKey(t, crypto.Key128Size)
	oldSet := wire.Instance{
		"589":  "mail-g",
		"434":  wrap128(t, key0, sessionKey),
		"1399": "0",
		"435":  encAttr(t, sessionKey, "Old Folder"),
		"1479": encAttr(t, sessionKey, ""),
		"1459": "entries-f1",
		"1481": "0",
		"_id":  []any{"sets-list", "f1"},
	}

	mailBoxSessionKey := randomKey(t, crypto.Key128Size)

	accessor := &fakeAccessor{
		entities: map[string]wire.Instance{
			"MailboxGroupRoot/mail-g": {"699": "mailbox-1"},
			"MailBox/mailbox-1": {
				"590":  "mail-g",
				"591":  wrap128(t, key1, mailBoxSessionKey),
				"1396": "1",
				"443":  []any{map[string]any{"442": "sets-list"}},
			},
			"Group/mail-g": {"823": []any{"former-keys-list"}},
		},
		ranges: map[string][]wire.Instance{
			"MailSet/sets-list": {oldSet},
			"GroupKey/former-keys-list": {
				{"830": wrap128(t, key1, key0)},
			},
		},
	}

	folders, err := NewReader(accessor, chain, "mail-g").ListFolders(context.Background())
	if err != nil {
		t.Fatalf("ListFolders() error = %v", err)
	}
	if folders[0].Name != "Old Folder" {
		t.Errorf("folder name = %q, want Old Folder via the former-key walk", folders[0].Name)
	}

	// The recovered version is cached.
	if _, ok := chain.Get("mail-g", "0"); !ok {
		t.Error("former key version 0 should be cached after the pre-walk")
	}
}

func TestListMails(t *testing.T) {
	mailGroupKey := randomKey(t, crypto.Key128Size)
	chain := chainWithCurrent(t, mailGroupKey)

	makeMail := func(elementID, subject string) wire.Instance {
		sessionKey := randomKey(t, crypto.Key128Size)
		return wire.Instance{
			"587":  "mail-g",
			"102":  wrap128(t, mailGroupKey, sessionKey),
			"1395": "0",
			"105":  encAttr(t, sessionKey, subject),
			"_id":  []any{"mail-list", elementID},
		}
	}

	accessor := &fakeAccessor{
		entities: map[string]wire.Instance{
			"MailSet/sets-list/f1": {"1459": "entries-f1"},
			"Mail/mail-list/m1":    makeMail("m1", "first"),
			"Mail/mail-list/m2":    makeMail("m2", "second"),
			"Mail/mail-list/m3":    makeMail("m3", "third"),
		},
		ranges: map[string][]wire.Instance{
			"MailSetEntry/entries-f1": {
				{"1456": []any{"mail-list", "m1"}},
				{"1456": []any{"mail-list", "m2"}},
				{"1456": []any{"mail-list", "m3"}},
			},
		},
	}

	mails, err := NewReader(accessor, chain, "mail-g").ListMails(context.Background(), "sets-list/f1")
	if err != nil {
		t.Fatalf("ListMails() error = %v", err)
	}

	if len(mails) != 3 {
		t.Fatalf("mails = %d, want 3", len(mails))
	}
	// Output order equals entry order.
	for i, want := range []string{"first", "second", "third"} {
		if got, _ := mails[i]["105"].(string); got != want {
			t.Errorf("mail %d subject = %q, want %q", i, got, want)
		}
	}
}

func TestListMails_MissingEntriesList(t *testing.T) {
	chain := keychain.NewChain()
	accessor := &fakeAccessor{
		entities: map[string]wire.Instance{
			"MailSet/sets-list/f1": {},
		},
	}
	if _, err := NewReader(accessor, chain, "mail-g").ListMails(context.Background(), "sets-list/f1"); err == nil {
		t.Error("a mail set without an entries list should error")
	}
}

func TestFanOut_PreservesOrderAndBoundsConcurrency(t *testing.T) {
	items := make([]int, 40)
	for i := range items {
		items[i] = i
	}

	var inFlight, maxSeen atomic.Int32
	out, err := fanOut(context.Background(), items, 5, func(ctx context.Context, n int) (int, error) {
		cur := inFlight.Add(1)
		for {
			max := maxSeen.Load()
			if cur <= max || maxSeen.CompareAndSwap(max, cur) {
				break
			}
		}
		defer inFlight.Add(-1)
		return n * 2, nil
	})
	if err != nil {
		t.Fatalf("fanOut() error = %v", err)
	}

	for i, v := range out {
		if v != i*2 {
			t.Fatalf("out[%d] = %d, want %d — order not preserved", i, v, i*2)
		}
	}
	if maxSeen.Load() > 5 {
		t.Errorf("max in-flight = %d, want <= 5", maxSeen.Load())
	}
}

func TestFanOut_PropagatesError(t *testing.T) {
	_, err := fanOut(context.Background(), []int{1, 2, 3}, 2, func(ctx context.Context, n int) (int, error) {
		if n == 2 {
			return 0, fmt.Errorf("branch failed")
		}
		return n, nil
	})
	if err == nil {
		t.Error("a failed branch should abort the fan-out")
	}
}

func TestReader_WithConcurrency(t *testing.T) {
	reader := NewReader(&fakeAccessor{}, keychain.NewChain(), "mail-g")
	if reader.concurrency != DefaultConcurrency {
		t.Errorf("default concurrency = %d, want %d", reader.concurrency, DefaultConcurrency)
	}
	if reader.WithConcurrency(3).concurrency != 3 {
		t.Error("WithConcurrency(3) should set the ceiling")
	}
	if reader.WithConcurrency(0).concurrency != 3 {
		t.Error("WithConcurrency(0) should leave the ceiling unchanged")
	}
}

// api sentinels are part of the reader's range queries; pin the values the
// fixtures above rely on.
func TestRangeSentinelWidths(t *testing.T) {
	if len(api.GeneratedMinID) != 12 || len(api.GeneratedMaxID) != 12 {
		t.Error("range sentinels must be twelve characters")
	}
}
