package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"discord-invite-tracker/internal/database"
	"discord-invite-tracker/internal/logger"
	"discord-invite-tracker/internal/models"
	"discord-invite-tracker/internal/redis"

	"github.com/goccy/go-json"
)

const (
	DefaultPath   = "config/config.json"
	DefaultStyle  = "casual_en"
	DefaultPrefix = "!"

	StorageFile     = "file"
	StoragePostgres = "postgres"
)

type StorageConfig struct {
	Driver  string `json:"driver"`   // "file" (default) or "postgres"
	DataDir string `json:"data_dir"` // file driver only
}

// Config mirrors config.json.
type Config struct {
	Token            string                  `json:"token"`
	Prefix           string                  `json:"prefix"`
	WelcomeChannelID string                  `json:"welcome_channel_id"`
	MemberRoleID     string                  `json:"member_role_id"`
	CurrentStyle     string                  `json:"current_style"`
	StylesDir        string                  `json:"styles_dir"`
	Features         map[string]bool         `json:"features"`
	InviterRoles     []models.RoleThreshold  `json:"inviter_roles"`
	Storage          StorageConfig           `json:"storage"`
	Postgres         database.PostgresConfig `json:"postgres"`
	Redis            redis.Config            `json:"redis"`
	Logging          logger.Config           `json:"logging"`
	MetricsAddr      string                  `json:"metrics_addr"`
}

// FeatureEnabled treats a missing flag as enabled.
func (c *Config) FeatureEnabled(name string) bool {
	if v, ok := c.Features[name]; ok {
		return v
	}
	return true
}

// Load reads path, applies environment overrides and fills defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	invalid := cfg.applyEnv()
	for _, pair := range invalid {
		fmt.Fprintf(os.Stderr, "⚠️ Invalid INVITER_ROLES format: %s\n", pair)
	}

	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.CurrentStyle == "" {
		cfg.CurrentStyle = DefaultStyle
	}
	if cfg.StylesDir == "" {
		cfg.StylesDir = filepath.Join(filepath.Dir(path), "styles")
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageFile
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	return &cfg, nil
}

// applyEnv lets secrets and deployment-specific IDs come from the environment.
// It returns INVITER_ROLES entries that could not be parsed.
func (c *Config) applyEnv() []string {
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		c.Token = v
	}
	if v := os.Getenv("WELCOME_CHANNEL_ID"); v != "" {
		c.WelcomeChannelID = v
	}
	if v := os.Getenv("MEMBER_ROLE_ID"); v != "" {
		c.MemberRoleID = v
	}
	if v := os.Getenv("INVITER_ROLES"); v != "" {
		roles, invalid := ParseInviterRoles(v)
		c.InviterRoles = roles
		return invalid
	}
	return nil
}

// ParseInviterRoles parses "count:roleID,count:roleID". Malformed pairs are
// skipped and returned in invalid.
func ParseInviterRoles(s string) (roles []models.RoleThreshold, invalid []string) {
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		count, roleID, ok := strings.Cut(pair, ":")
		n, err := strconv.Atoi(strings.TrimSpace(count))
		roleID = strings.TrimSpace(roleID)
		if !ok || err != nil || n < 0 || roleID == "" {
			invalid = append(invalid, pair)
			continue
		}
		roles = append(roles, models.RoleThreshold{MinCount: n, RoleID: roleID})
	}
	return roles, invalid
}

// writeCurrentStyle rewrites only the current_style key of the config file,
// leaving everything else as the operator wrote it.
func writeCurrentStyle(path, style string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := json.Marshal(style)
	if err != nil {
		return err
	}
	raw["current_style"] = v

	out, err := json.MarshalIndent(raw, "", "    ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(out, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
