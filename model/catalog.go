package model

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v2"
)

//go:embed catalog.yml
var defaultCatalogData []byte

type Script struct {
	ID    string   `json:"id" yaml:"id"`
	Name  string   `json:"name" yaml:"name"`
	Roles []string `json:"roles" yaml:"roles"`
}

type Composition struct {
	Townsfolk int `json:"townsfolk" yaml:"townsfolk"`
	Outsider  int `json:"outsider" yaml:"outsider"`
	Minion    int `json:"minion" yaml:"minion"`
	Demon     int `json:"demon" yaml:"demon"`
}

func (c Composition) Total() int {
	return c.Townsfolk + c.Outsider + c.Minion + c.Demon
}

func (c Composition) CountOf(team Team) int {
	switch team {
	case T_TOWNSFOLK:
		return c.Townsfolk
	case T_OUTSIDER:
		return c.Outsider
	case T_MINION:
		return c.Minion
	case T_DEMON:
		return c.Demon
	}
	return 0
}

// Catalog は役職、スクリプト、夜の順番、人数構成表をまとめた読み取り専用の設定
type Catalog struct {
	Roles      []Role   `yaml:"roles"`
	Scripts    []Script `yaml:"scripts"`
	NightOrder struct {
		First []string `yaml:"first"`
		Other []string `yaml:"other"`
	} `yaml:"night_order"`
	Composition       map[int]Composition `yaml:"composition"`
	FallbackTownsfolk []string            `yaml:"fallback_townsfolk"`
	DefaultDemon      string              `yaml:"default_demon"`
	SuccessorRole     string              `yaml:"successor_role"`
	RevealAllRoles    []string            `yaml:"reveal_all_roles"`

	roleIndex map[string]Role
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("カタログのパースに失敗しました: %w", err)
	}
	for i := range catalog.Roles {
		catalog.Roles[i].Team = TeamFromString(string(catalog.Roles[i].Team))
	}
	catalog.index()
	return &catalog, nil
}

func DefaultCatalog() *Catalog {
	catalog, err := ParseCatalog(defaultCatalogData)
	if err != nil {
		panic(err)
	}
	return catalog
}

func LoadCatalogFromPath(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("カタログファイルの読み込みに失敗しました", "error", err)
		return nil, err
	}
	return ParseCatalog(data)
}

func (c *Catalog) index() {
	c.roleIndex = make(map[string]Role, len(c.Roles))
	for _, role := range c.Roles {
		c.roleIndex[role.ID] = role
	}
}

func (c *Catalog) Role(id string) (Role, bool) {
	if c.roleIndex == nil {
		c.index()
	}
	role, ok := c.roleIndex[id]
	return role, ok
}

func (c *Catalog) TeamOf(id string) Team {
	if role, ok := c.Role(id); ok {
		return role.Team
	}
	return T_NONE
}

func (c *Catalog) Script(id string) (Script, bool) {
	for _, script := range c.Scripts {
		if script.ID == id {
			return script, true
		}
	}
	return Script{}, false
}

// ScriptRolesByTeam はスクリプト内の役職をチーム順を保ったまま返す
func (c *Catalog) ScriptRolesByTeam(scriptID string, team Team) []string {
	script, ok := c.Script(scriptID)
	if !ok {
		return nil
	}
	roles := make([]string, 0)
	for _, id := range script.Roles {
		if c.TeamOf(id) == team {
			roles = append(roles, id)
		}
	}
	return roles
}

func (c *Catalog) CompositionFor(seatCount int) (Composition, bool) {
	composition, ok := c.Composition[seatCount]
	return composition, ok
}

func (c *Catalog) IsRevealAll(roleID string) bool {
	return roleID != "" && slices.Contains(c.RevealAllRoles, roleID)
}
