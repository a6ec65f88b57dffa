package eligibility

import (
	"context"

	"clinic_sync_backend/platform/logger"
)

// LinkStore persists client-evaluator links.
type LinkStore interface {
	Links(ctx context.Context) (map[int64]NPISet, error)
	InsertLink(ctx context.Context, clientID, npi int64) error
	DeleteLink(ctx context.Context, clientID, npi int64) error
	DeleteLinksForClient(ctx context.Context, clientID int64) error
}

// Differ applies the minimal delta between the persisted links and a freshly
// computed eligible set, touching only rows that actually changed.
type Differ struct {
	store    LinkStore
	existing map[int64]NPISet
	log      *logger.Logger
}

// NewDiffer loads the current links once; Apply and ForceApply keep the
// in-memory view in step with every write so a run never re-reads the table.
func NewDiffer(ctx context.Context, store LinkStore, log *logger.Logger) (*Differ, error) {
	existing, err := store.Links(ctx)
	if err != nil {
		return nil, err
	}
	return &Differ{store: store, existing: existing, log: log}, nil
}

// Apply reconciles one client's links with the desired set. It returns the
// number of inserted and deleted links.
func (d *Differ) Apply(ctx context.Context, clientID int64, desired NPISet) (added, removed int, err error) {
	current := d.existing[clientID]

	for npi := range desired {
		if current.Contains(npi) {
			continue
		}
		if err := d.store.InsertLink(ctx, clientID, npi); err != nil {
			return added, removed, err
		}
		added++
	}

	for npi := range current {
		if _, keep := desired[npi]; keep {
			continue
		}
		if err := d.store.DeleteLink(ctx, clientID, npi); err != nil {
			return added, removed, err
		}
		removed++
	}

	d.existing[clientID] = desired
	return added, removed, nil
}

// ForceApply drops every persisted link for the client and writes the
// desired set fresh, ignoring what was there before.
func (d *Differ) ForceApply(ctx context.Context, clientID int64, desired NPISet) (added int, err error) {
	if err := d.store.DeleteLinksForClient(ctx, clientID); err != nil {
		return 0, err
	}

	for npi := range desired {
		if err := d.store.InsertLink(ctx, clientID, npi); err != nil {
			return added, err
		}
		added++
	}

	d.existing[clientID] = desired
	return added, nil
}
