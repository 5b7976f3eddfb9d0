package config

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"discord-invite-tracker/internal/invites"
	"discord-invite-tracker/internal/models"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	fallbackGreeting = "Welcome {user}!"
	fallbackLeave    = "Goodbye {user}!"
)

var styleExts = []string{".json", ".yaml", ".yml"}

type StyleInfo struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Language    string `json:"language" yaml:"language"`
	Tone        string `json:"tone" yaml:"tone"`
}

// Style is one message pack: greetings, goodbyes, embed titles and command
// replies in a given tone and language.
type Style struct {
	Info                StyleInfo         `json:"style_info" yaml:"style_info"`
	Greetings           []string          `json:"greetings" yaml:"greetings"`
	LeaveMessages       []string          `json:"leave_messages" yaml:"leave_messages"`
	DefaultGreeting     string            `json:"default_greeting" yaml:"default_greeting"`
	DefaultLeaveMessage string            `json:"default_leave_message" yaml:"default_leave_message"`
	Embeds              map[string]string `json:"embeds" yaml:"embeds"`
	Messages            map[string]string `json:"messages" yaml:"messages"`
}

// Manager holds the live configuration and the active style. It implements
// invites.Settings.
type Manager struct {
	path   string
	logger *zap.Logger

	mu    sync.RWMutex
	cfg   *Config
	style *Style
}

// NewManager loads path and its current style.
func NewManager(path string, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{path: path, logger: logger}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload re-reads config.json and the style it names. On error the previous
// configuration stays active.
func (m *Manager) Reload() error {
	cfg, err := Load(m.path)
	if err != nil {
		return err
	}
	style, err := loadStyle(cfg.StylesDir, cfg.CurrentStyle)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.cfg, m.style = cfg, style
	m.mu.Unlock()

	m.logger.Info("configuration loaded", zap.String("style", cfg.CurrentStyle))
	return nil
}

// Config returns a copy of the current configuration.
func (m *Manager) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.cfg
}

func (m *Manager) CurrentStyle() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.CurrentStyle
}

func (m *Manager) WelcomeChannelID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.WelcomeChannelID
}

func (m *Manager) Prefix() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.Prefix
}

// AvailableStyles lists style names found in the styles directory.
func (m *Manager) AvailableStyles() []string {
	m.mu.RLock()
	dir := m.cfg.StylesDir
	m.mu.RUnlock()
	return availableStyles(dir)
}

// StyleInfo describes a style without activating it. Unknown or unreadable
// styles get placeholder values.
func (m *Manager) StyleInfo(name string) StyleInfo {
	m.mu.RLock()
	dir := m.cfg.StylesDir
	m.mu.RUnlock()

	info := StyleInfo{Name: name, Description: "Unknown style", Language: "Unknown", Tone: "Unknown"}
	path, ok := stylePath(dir, name)
	if !ok {
		return info
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return info
	}

	if strings.HasSuffix(path, ".json") {
		si := gjson.GetBytes(data, "style_info")
		info.Name = orDefault(si.Get("name").String(), name)
		info.Description = orDefault(si.Get("description").String(), "No description")
		info.Language = orDefault(si.Get("language").String(), "Unknown")
		info.Tone = orDefault(si.Get("tone").String(), "Unknown")
		return info
	}

	var s Style
	if err := yaml.Unmarshal(data, &s); err != nil {
		return info
	}
	info.Name = orDefault(s.Info.Name, name)
	info.Description = orDefault(s.Info.Description, "No description")
	info.Language = orDefault(s.Info.Language, "Unknown")
	info.Tone = orDefault(s.Info.Tone, "Unknown")
	return info
}

func (m *Manager) CurrentStyleInfo() StyleInfo {
	return m.StyleInfo(m.CurrentStyle())
}

// SetStyle switches to another style and records the choice in config.json.
func (m *Manager) SetStyle(name string) error {
	m.mu.RLock()
	dir := m.cfg.StylesDir
	m.mu.RUnlock()

	if _, ok := stylePath(dir, name); !ok {
		return fmt.Errorf("%w: style %q", invites.ErrConfigurationMissing, name)
	}
	if err := writeCurrentStyle(m.path, name); err != nil {
		return fmt.Errorf("saving style setting: %w", err)
	}
	return m.Reload()
}

// invites.Settings

func (m *Manager) FeatureEnabled(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.FeatureEnabled(name)
}

func (m *Manager) InviterRoles() []models.RoleThreshold {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.RoleThreshold(nil), m.cfg.InviterRoles...)
}

func (m *Manager) MemberRoleID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.MemberRoleID
}

// Greeting picks a random inviter-aware greeting.
func (m *Manager) Greeting() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.style.Greetings) > 0 {
		return m.style.Greetings[rand.Intn(len(m.style.Greetings))]
	}
	return orDefault(m.style.DefaultGreeting, fallbackGreeting)
}

func (m *Manager) DefaultGreeting() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return orDefault(m.style.DefaultGreeting, fallbackGreeting)
}

// LeaveMessage picks a random inviter-aware leave message.
func (m *Manager) LeaveMessage() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.style.LeaveMessages) > 0 {
		return m.style.LeaveMessages[rand.Intn(len(m.style.LeaveMessages))]
	}
	return fallbackLeave
}

func (m *Manager) DefaultLeaveMessage() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return orDefault(m.style.DefaultLeaveMessage, fallbackLeave)
}

// EmbedTitle falls back to the key itself.
func (m *Manager) EmbedTitle(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return orDefault(m.style.Embeds[key], key)
}

// Message returns a command reply template, falling back to the key itself.
func (m *Manager) Message(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return orDefault(m.style.Messages[key], key)
}

func loadStyle(dir, name string) (*Style, error) {
	path, ok := stylePath(dir, name)
	if !ok {
		return nil, fmt.Errorf("%w: style %q not found in %s", invites.ErrConfigurationMissing, name, dir)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Style
	if strings.HasSuffix(path, ".json") {
		err = json.Unmarshal(data, &s)
	} else {
		err = yaml.Unmarshal(data, &s)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing style %s: %w", path, err)
	}
	return &s, nil
}

func stylePath(dir, name string) (string, bool) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	for _, ext := range styleExts {
		p := filepath.Join(dir, name+ext)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, true
		}
	}
	return "", false
}

func availableStyles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	seen := make(map[string]struct{})
	var styles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		for _, want := range styleExts {
			if ext != want {
				continue
			}
			name := strings.TrimSuffix(e.Name(), ext)
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				styles = append(styles, name)
			}
		}
	}
	sort.Strings(styles)
	return styles
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
