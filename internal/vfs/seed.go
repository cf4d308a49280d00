package vfs

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// SeedNode describes one node of the starting hierarchy. ID defaults to Name.
type SeedNode struct {
	ID       string     `yaml:"id,omitempty"`
	Name     string     `yaml:"name"`
	Kind     Kind       `yaml:"kind"`
	Content  string     `yaml:"content,omitempty"`
	Children []SeedNode `yaml:"children,omitempty"`
}

// Home returns the id-path of the given user's home folder in the default seed
func Home(user string) Path {
	return Path{"Users", user}
}

// DefaultSeed returns the fixed starting hierarchy for user.
func DefaultSeed(user string) []SeedNode {
	return []SeedNode{
		{Name: "Users", Kind: KindFolder, Children: []SeedNode{
			{Name: user, Kind: KindFolder, Children: []SeedNode{
				{Name: "Desktop", Kind: KindFolder, Children: []SeedNode{
					{Name: "readme.txt", Kind: KindFile, Content: "Welcome to your desktop.\nDouble-click a folder to open it.\n"},
				}},
				{Name: "Documents", Kind: KindFolder, Children: []SeedNode{
					{Name: "notes.txt", Kind: KindFile, Content: "This is a note inside a text file."},
					{Name: "todo.md", Kind: KindFile, Content: "# Todo\n- write report\n- review notes\n- clean desktop\n"},
				}},
				{Name: "Downloads", Kind: KindFolder},
				{Name: "Pictures", Kind: KindFolder},
			}},
		}},
		{Name: "Windows", Kind: KindFolder, Children: []SeedNode{
			{Name: "System32", Kind: KindFolder, Children: []SeedNode{
				{Name: "config.sys", Kind: KindFile, Content: "FILES=40\nBUFFERS=20\n"},
			}},
		}},
		{Name: "Program Files", Kind: KindFolder},
	}
}

// LoadSeed parses a YAML list of seed nodes
func LoadSeed(data []byte) ([]SeedNode, error) {
	var nodes []SeedNode
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	if err := validateSeed(nodes, "/", make(map[string]string)); err != nil {
		return nil, err
	}
	return nodes, nil
}

// LoadSeedFile reads and parses a YAML seed file
func LoadSeedFile(path string) ([]SeedNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed %s: %w", path, err)
	}
	return LoadSeed(data)
}

// validateSeed checks nodes recursively. Names must be unique among siblings;
// ids (explicit or defaulted from the name) must be unique across the whole
// seed, so seen maps every id to the path that first claimed it.
func validateSeed(nodes []SeedNode, where string, seen map[string]string) error {
	names := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.Name == "" {
			return fmt.Errorf("seed node under %s has no name", where)
		}
		if !n.Kind.Valid() {
			return fmt.Errorf("seed node %s%s has invalid kind %q", where, n.Name, n.Kind)
		}
		if n.Kind == KindFile && len(n.Children) > 0 {
			return fmt.Errorf("seed file %s%s has children", where, n.Name)
		}
		id := n.ID
		if id == "" {
			id = n.Name
		}
		if names[n.Name] {
			return fmt.Errorf("duplicate seed node %s%s", where, n.Name)
		}
		if first, ok := seen[id]; ok {
			return fmt.Errorf("duplicate seed id %q at %s%s (already used by %s); set an explicit id", id, where, n.Name, first)
		}
		names[n.Name] = true
		seen[id] = where + n.Name
		if err := validateSeed(n.Children, where+n.Name+"/", seen); err != nil {
			return err
		}
	}
	return nil
}

func (n SeedNode) build(now time.Time) *Item {
	id := n.ID
	if id == "" {
		id = n.Name
	}
	it := &Item{
		ID:          id,
		Name:        n.Name,
		Kind:        n.Kind,
		Created:     now,
		Modified:    now,
		Permissions: DefaultPermissions(n.Kind),
	}
	if n.Kind == KindFolder {
		it.Children = make([]*Item, 0, len(n.Children))
		for _, c := range n.Children {
			it.Children = append(it.Children, c.build(now))
		}
	} else {
		it.setContent(n.Content)
	}
	return it
}
