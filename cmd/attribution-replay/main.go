package main

import (
	"fmt"
	"os"

	"discord-invite-tracker/internal/invites"
	"discord-invite-tracker/internal/models"

	"github.com/bwmarrin/discordgo"
	"github.com/goccy/go-json"
)

const usage = `Usage:
  attribution-replay <before.json> <after.json>
      Print which invite the tracker would credit for a join between the two snapshots.
  attribution-replay capture <guild_id> <out.json>
      Save the guild's current invites (needs DISCORD_TOKEN).`

func main() {
	if len(os.Args) == 4 && os.Args[1] == "capture" {
		if err := capture(os.Args[2], os.Args[3]); err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}
		return
	}
	if len(os.Args) != 3 {
		fmt.Println(usage)
		os.Exit(2)
	}

	before, err := readSnapshot(os.Args[1])
	if err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
	after, err := readSnapshot(os.Args[2])
	if err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}

	fmt.Printf("📥 before: %d invites, after: %d invites\n", len(before), len(after))
	for _, inv := range after {
		if old, ok := before.Find(inv.Code); ok && inv.Uses != old.Uses {
			fmt.Printf("   • %s: %d -> %d uses\n", inv.Code, old.Uses, inv.Uses)
		}
	}
	for _, inv := range before {
		if _, ok := after.Find(inv.Code); !ok {
			fmt.Printf("   • %s: gone (had %d uses)\n", inv.Code, inv.Uses)
		}
	}

	att, ok := invites.Resolve(before, after)
	switch {
	case !ok:
		fmt.Println("⚠️  No invite changed: the join would be unattributed")
	case !att.Known():
		fmt.Printf("⚠️  Invite %s matched but has no creator: the join would be unattributed\n", att.Code)
	default:
		fmt.Printf("✅ Invite %s, credited to %s\n", att.Code, att.InviterID)
	}
}

func readSnapshot(path string) (models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s models.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return s, nil
}

func capture(guildID, out string) error {
	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		return fmt.Errorf("DISCORD_TOKEN is not set")
	}
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return err
	}

	list, err := dg.GuildInvites(guildID)
	if err != nil {
		return fmt.Errorf("fetching invites: %w", err)
	}
	snap := make(models.Snapshot, 0, len(list))
	for _, inv := range list {
		entry := models.Invite{Code: inv.Code, Uses: inv.Uses}
		if inv.Inviter != nil {
			entry.CreatorID = inv.Inviter.ID
		}
		snap = append(snap, entry)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("✅ Saved %d invites to %s\n", len(snap), out)
	return nil
}
