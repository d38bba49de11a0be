// Package mailbox composes the key chain, former-key walker, session-key
// decryptor, and REST accessor to walk the mailbox entity tree: mailbox
// root, mail box, mail sets (folders), and mail set entries (mail
// references), with bounded concurrent fan-out that preserves input
// order.
package mailbox

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/digitalWestie/tutanota-cli/internal/api"
	"github.com/digitalWestie/tutanota-cli/internal/decrypt"
	"github.com/digitalWestie/tutanota-cli/internal/keychain"
	"github.com/digitalWestie/tutanota-cli/internal/wire"
)

// DefaultConcurrency is the default ceiling on simultaneous in-flight
// requests for the two list-decryption loops.
const DefaultConcurrency = 5

// Reader walks one mail group's mailbox tree.
type Reader struct {
	accessor    keychain.Accessor
	chain       *keychain.Chain
	mailGroupID string
	concurrency int
}

// NewReader builds a Reader for the mail group the key chain has already
// unlocked a key for.
func NewReader(accessor keychain.Accessor, chain *keychain.Chain, mailGroupID string) *Reader {
	return &Reader{
		accessor:    accessor,
		chain:       chain,
		mailGroupID: mailGroupID,
		concurrency: DefaultConcurrency,
	}
}

// WithConcurrency overrides the fan-out ceiling. n <= 0 leaves the default
// in place.
func (r *Reader) WithConcurrency(n int) *Reader {
	if n > 0 {
		r.concurrency = n
	}
	return r
}

// ListFolders walks MailboxGroupRoot -> MailBox -> MailSet list and
// returns every folder, decrypted, with display names substituted for
// empty/whitespace names.
func (r *Reader) ListFolders(ctx context.Context) ([]Folder, error) {
	root, err := r.accessor.LoadEntity(ctx, "MailboxGroupRoot", r.mailGroupID)
	if err != nil {
		return nil, fmt.Errorf("load mailbox group root: %w", err)
	}
	mailboxID := root.StringAttr("699")
	if mailboxID == "" {
		return nil, fmt.Errorf("mailbox group root %s has no mailbox id", r.mailGroupID)
	}

	mailBox, err := r.accessor.LoadEntity(ctx, "MailBox", mailboxID)
	if err != nil {
		return nil, fmt.Errorf("load mail box %s: %w", mailboxID, err)
	}
	mailBoxTM := wire.Registry["MailBox"]
	mailBoxKey, err := decrypt.ResolveSessionKey(mailBox, mailBoxTM, r.chain, "", methodSink{})
	if err != nil {
		return nil, fmt.Errorf("resolve mail box session key: %w", err)
	}
	decryptedMailBox := decrypt.DecryptInstance(mailBox, mailBoxTM, mailBoxKey, newTrackingSink())

	mailSetRef := wire.Instance(nil)
	if agg, ok := wire.UnwrapSingleElementArray(decryptedMailBox["443"]).(map[string]any); ok {
		mailSetRef = wire.Instance(agg)
	}
	if mailSetRef == nil {
		return nil, fmt.Errorf("mail box %s has no mailSetRef", mailboxID)
	}
	mailSetsListID := mailSetRef.StringAttr("442")
	if mailSetsListID == "" {
		return nil, fmt.Errorf("mail box %s has no mail-sets list id", mailboxID)
	}

	elements, err := r.accessor.LoadRange(ctx, "MailSet", mailSetsListID, api.GeneratedMinID, 1000, false)
	if err != nil {
		return nil, fmt.Errorf("load mail sets: %w", err)
	}

	if err := r.prewalkOwnerVersions(ctx, elements, wire.Registry["MailSet"]); err != nil {
		return nil, err
	}

	decryptedSets, err := fanOut(ctx, elements, r.concurrency, func(ctx context.Context, inst wire.Instance) (wire.Instance, error) {
		return r.decryptWithVersionRetry(inst, wire.Registry["MailSet"], []string{"435", "1479"})
	})
	if err != nil {
		return nil, err
	}

	folders := make([]Folder, 0, len(decryptedSets))
	for i, inst := range decryptedSets {
		name, _ := inst["435"].(string)
		folderType := parseFolderType(wire.UnwrapSingleElementArray(elements[i]["1481"]))
		folders = append(folders, Folder{
			ID:            elements[i].TupleIDAttr("_id"),
			Name:          DisplayName(name, folderType),
			FolderType:    folderType,
			EntriesListID: elements[i].StringAttr("1459"),
		})
	}
	return folders, nil
}

// parseFolderType coerces the unencrypted folderType attribute, which
// DecryptInstance passes through unscaled, to an integer. Accepts either
// the numeric-as-text wire convention or a bare JSON number.
func parseFolderType(v any) int64 {
	switch val := v.(type) {
	case string:
		n, _ := strconv.ParseInt(val, 10, 64)
		return n
	case float64:
		return int64(val)
	default:
		return 0
	}
}

// ListMails returns the most recent mails in folderID, newest first.
func (r *Reader) ListMails(ctx context.Context, folderID string) ([]wire.Instance, error) {
	mailSet, err := r.accessor.LoadEntity(ctx, "MailSet", folderID)
	if err != nil {
		return nil, fmt.Errorf("load mail set %s: %w", folderID, err)
	}
	entriesListID := mailSet.StringAttr("1459")
	if entriesListID == "" {
		return nil, fmt.Errorf("mail set %s has no entries list id", folderID)
	}

	entries, err := r.accessor.LoadRange(ctx, "MailSetEntry", entriesListID, api.GeneratedMaxID, 10, true)
	if err != nil {
		return nil, fmt.Errorf("load mail set entries: %w", err)
	}

	mailRefs := make([]string, 0, len(entries))
	for _, entry := range entries {
		ref := entry.TupleIDAttr("1456")
		if ref != "" {
			mailRefs = append(mailRefs, ref)
		}
	}

	mails, err := fanOut(ctx, mailRefs, r.concurrency, func(ctx context.Context, ref string) (wire.Instance, error) {
		return r.accessor.LoadEntity(ctx, "Mail", ref)
	})
	if err != nil {
		return nil, fmt.Errorf("load mails: %w", err)
	}

	if err := r.prewalkOwnerVersions(ctx, mails, wire.Registry["Mail"]); err != nil {
		return nil, err
	}

	return fanOut(ctx, mails, r.concurrency, func(ctx context.Context, inst wire.Instance) (wire.Instance, error) {
		return r.decryptWithVersionRetry(inst, wire.Registry["Mail"], []string{"105"})
	})
}

// prewalkOwnerVersions scans elements for distinct owner-key-versions
// that differ from the mail group's current version, and walks the
// former-key chain once per missing version before any decryption runs,
// so no chain insert races the decryption fan-out.
func (r *Reader) prewalkOwnerVersions(ctx context.Context, elements []wire.Instance, tm *wire.TypeModel) error {
	current, _ := r.chain.CurrentVersion(r.mailGroupID)

	seen := make(map[string]bool)
	for _, inst := range elements {
		version := inst.StringAttr(tm.OwnerKeyVersionID)
		if version == "" || version == current || seen[version] {
			continue
		}
		seen[version] = true

		ownerGroup := inst.StringAttr(tm.OwnerGroupID)
		if ownerGroup == "" {
			ownerGroup = r.mailGroupID
		}
		if _, ok := r.chain.Get(ownerGroup, version); ok {
			continue
		}
		if _, found, err := r.chain.WalkFormerKeys(ctx, r.accessor, ownerGroup, version); err != nil {
			return fmt.Errorf("walk former keys for %s version %s: %w", ownerGroup, version, err)
		} else if !found {
			continue // key chain exhausted; decrypt will fall back to zero values
		}
	}
	return nil
}

// decryptWithVersionRetry is the per-instance key-version retry loop:
// try the instance's own owner-key-version first, then every
// other cached version, re-resolving the session key each time, until the
// watched attributes decrypt cleanly or every version has been tried.
func (r *Reader) decryptWithVersionRetry(inst wire.Instance, tm *wire.TypeModel, watchedAttrs []string) (wire.Instance, error) {
	ownerGroup := inst.StringAttr(tm.OwnerGroupID)
	own := inst.StringAttr(tm.OwnerKeyVersionID)

	versions := []string{own}
	for _, v := range r.chain.Versions(ownerGroup) {
		if v != own {
			versions = append(versions, v)
		}
	}

	for _, version := range versions {
		sink := newTrackingSink()
		key, err := decrypt.ResolveSessionKey(inst, tm, r.chain, version, methodSink{})
		if err != nil || key == nil {
			continue
		}
		decrypted := decrypt.DecryptInstance(inst, tm, key, sink)
		if !sink.anyFailed(watchedAttrs...) {
			return decrypted, nil
		}
	}

	return decrypt.DecryptInstance(inst, tm, nil, newTrackingSink()), nil
}

// fanOut runs fn over items with at most concurrency in flight,
// preserving input order in the returned slice.
func fanOut[In, Out any](ctx context.Context, items []In, concurrency int, fn func(context.Context, In) (Out, error)) ([]Out, error) {
	out := make([]Out, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			result, err := fn(ctx, item)
			if err != nil {
				return err
			}
			out[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
