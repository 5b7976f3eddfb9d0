package models

// Invite is one invite link as seen at snapshot time.
type Invite struct {
	Code      string `json:"code"`
	Uses      int    `json:"uses"`
	CreatorID string `json:"creator_id,omitempty"` // empty for vanity / platform invites
}

// Snapshot is a guild's invite list in the order the platform returned it.
type Snapshot []Invite

// Find returns the invite with the given code.
func (s Snapshot) Find(code string) (Invite, bool) {
	for _, inv := range s {
		if inv.Code == code {
			return inv, true
		}
	}
	return Invite{}, false
}

// Member is the subset of a guild member the tracker needs.
type Member struct {
	GuildID   string `json:"guild_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	Bot       bool   `json:"bot"`
}

func (m Member) Mention() string {
	return Mention(m.UserID)
}

type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

func (u User) Mention() string {
	return Mention(u.ID)
}

func Mention(userID string) string {
	return "<@" + userID + ">"
}

// InviteCount is one row of the counts table.
type InviteCount struct {
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
}

// RoleThreshold grants RoleID once an inviter reaches MinCount.
type RoleThreshold struct {
	MinCount int    `json:"count" yaml:"count"`
	RoleID   string `json:"role_id" yaml:"role_id"`
}
