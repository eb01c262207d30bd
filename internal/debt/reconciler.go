package debt

import (
	"strings"

	"github.com/haekalr/kasbon/internal/domain/entity"
)

// Action says what the reconciler decided to do with a draft.
type Action string

const (
	ActionCreate Action = "create" // no open entry for the name; persist the draft as a new entry
	ActionMerge  Action = "merge"  // update the matched open entry in place
)

// Outcome is the reconciler's decision plus the full payload to persist.
// For a merge, Debt.ID is the matched entry's ID and the fields are the
// computed post-merge values.
type Outcome struct {
	Action Action
	Debt   entity.Debt
}

// FindOpen returns the open (status != Lunas) entry whose name matches
// case-insensitively, or nil. The ledger keeps at most one such entry per
// name; paid-off entries for the same name are closed history and never
// match.
func FindOpen(collection []entity.Debt, name string) *entity.Debt {
	for i := range collection {
		if collection[i].Open() && strings.EqualFold(collection[i].Name, name) {
			return &collection[i]
		}
	}
	return nil
}

// Reconcile decides whether a validated draft creates a new entry or
// merges into the existing open entry for the same name.
//
// A draft submitted with status Lunas against an open entry is a payment:
// the draft amount is subtracted (floored at zero) and the entry closes
// only when nothing remains. A partial payment reopens the entry as Belum
// Lunas rather than Lunas Sebagian; that is long-standing recorded
// behavior and is kept as the contract.
//
// Any other status against an open entry is additional debt: amounts add
// and the entry is Belum Lunas regardless of what was submitted.
func Reconcile(draft Draft, collection []entity.Debt) Outcome {
	match := FindOpen(collection, draft.Name)
	if match == nil {
		return Outcome{
			Action: ActionCreate,
			Debt: entity.Debt{
				Name:        draft.Name,
				Date:        draft.Date,
				Amount:      draft.Amount,
				Status:      draft.Status,
				Description: draft.Description,
				Photos:      append([]string(nil), draft.Photos...),
			},
		}
	}

	merged := *match
	merged.Date = draft.Date
	merged.Description = joinDescriptions(match.Description, draft.Description)
	merged.Photos = unionPhotos(match.Photos, draft.Photos)

	if draft.Status == entity.StatusLunas {
		remaining := match.Amount - draft.Amount
		if remaining <= 0 {
			merged.Amount = 0
			merged.Status = entity.StatusLunas
		} else {
			merged.Amount = remaining
			merged.Status = entity.StatusBelumLunas
		}
	} else {
		merged.Amount = match.Amount + draft.Amount
		merged.Status = entity.StatusBelumLunas
	}

	return Outcome{Action: ActionMerge, Debt: merged}
}

// joinDescriptions concatenates with "; " when both sides are non-empty.
func joinDescriptions(existing, added string) string {
	switch {
	case existing == "":
		return added
	case added == "":
		return existing
	default:
		return existing + "; " + added
	}
}
