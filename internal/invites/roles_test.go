package invites

import (
	"testing"

	"discord-invite-tracker/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRolesToGrant(t *testing.T) {
	table := []models.RoleThreshold{
		{MinCount: 5, RoleID: "bronze"},
		{MinCount: 10, RoleID: "silver"},
		{MinCount: 25, RoleID: "gold"},
	}

	tests := []struct {
		name  string
		count int
		table []models.RoleThreshold
		held  []string
		want  []string
	}{
		{name: "below every threshold", count: 4, table: table, want: nil},
		{name: "exactly on threshold", count: 5, table: table, want: []string{"bronze"}},
		{name: "several thresholds in table order", count: 12, table: table, want: []string{"bronze", "silver"}},
		{name: "already held roles skipped", count: 30, table: table, held: []string{"silver"}, want: []string{"bronze", "gold"}},
		{name: "everything held", count: 30, table: table, held: []string{"gold", "bronze", "silver"}, want: nil},
		{name: "no table", count: 100, table: nil, want: nil},
		{
			name:  "empty role IDs ignored",
			count: 10,
			table: []models.RoleThreshold{{MinCount: 1, RoleID: ""}, {MinCount: 2, RoleID: "r"}},
			want:  []string{"r"},
		},
		{
			name:  "duplicate role listed once",
			count: 10,
			table: []models.RoleThreshold{{MinCount: 1, RoleID: "r"}, {MinCount: 5, RoleID: "r"}},
			want:  []string{"r"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RolesToGrant(tt.count, tt.table, tt.held))
		})
	}
}

func TestRolesToGrantDoesNotModifyHeld(t *testing.T) {
	held := []string{"a"}
	RolesToGrant(10, []models.RoleThreshold{{MinCount: 1, RoleID: "b"}}, held)
	assert.Equal(t, []string{"a"}, held)
}
