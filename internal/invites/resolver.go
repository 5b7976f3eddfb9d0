package invites

import (
	"discord-invite-tracker/internal/models"
	"discord-invite-tracker/internal/pool"
)

// Attribution is the resolver's verdict for one join.
type Attribution struct {
	InviterID string
	Code      string
}

// Known reports whether the matched invite had a creator. Vanity and
// platform invites match but have no inviter to credit.
func (a Attribution) Known() bool {
	return a.InviterID != ""
}

// Resolve compares the snapshot taken before a join with the one taken after
// it and returns the invite that was most likely used. ok is false when
// nothing changed between the two.
//
// The first invite in cur whose use count went up wins. The platform does not
// guarantee a stable order, so two invites used within the same interval are
// attributed to whichever comes first. If no count went up, the first invite
// of prev missing from cur is taken as a consumed single-use invite.
func Resolve(prev, cur models.Snapshot) (att Attribution, ok bool) {
	uses := pool.GetUseMap()
	defer pool.PutUseMap(uses)
	for _, inv := range prev {
		uses[inv.Code] = inv.Uses
	}

	for _, inv := range cur {
		old, seen := uses[inv.Code]
		if seen && inv.Uses > old {
			return Attribution{InviterID: inv.CreatorID, Code: inv.Code}, true
		}
	}

	present := make(map[string]struct{}, len(cur))
	for _, inv := range cur {
		present[inv.Code] = struct{}{}
	}
	for _, inv := range prev {
		if _, still := present[inv.Code]; !still {
			return Attribution{InviterID: inv.CreatorID, Code: inv.Code}, true
		}
	}

	return Attribution{}, false
}
