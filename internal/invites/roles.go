package invites

import "discord-invite-tracker/internal/models"

// RolesToGrant returns the milestone roles an inviter with count invites
// should receive, in table order, skipping roles already held. Roles are
// never taken away when a count drops.
func RolesToGrant(count int, table []models.RoleThreshold, held []string) []string {
	if len(table) == 0 {
		return nil
	}

	have := make(map[string]struct{}, len(held))
	for _, id := range held {
		have[id] = struct{}{}
	}

	var grant []string
	for _, t := range table {
		if t.RoleID == "" || t.MinCount > count {
			continue
		}
		if _, ok := have[t.RoleID]; ok {
			continue
		}
		have[t.RoleID] = struct{}{}
		grant = append(grant, t.RoleID)
	}
	return grant
}
