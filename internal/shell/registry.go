package shell

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Category groups commands for the help listing
type Category string

const (
	CategoryFilesystem  Category = "filesystem"
	CategoryText        Category = "text"
	CategorySystem      Category = "system"
	CategoryEnvironment Category = "environment"
	CategoryUtility     Category = "utility"
)

// Categories lists the categories in help order
var Categories = []Category{
	CategoryFilesystem,
	CategoryText,
	CategorySystem,
	CategoryEnvironment,
	CategoryUtility,
}

// RunFunc implements one command. It must not modify state; session changes
// are returned through Result.Effect. A returned error becomes exit code 1.
type RunFunc func(ctx context.Context, sh *Shell, args []string, state State) (Result, error)

// Command is a registry entry
type Command struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Usage       string   `json:"usage"`
	Category    Category `json:"category"`
	Run         RunFunc  `json:"-"`
}

// Registry maps command names to commands
type Registry struct {
	commands sync.Map // map[string]Command
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns a registry holding every built-in command
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, group := range [][]Command{
		filesystemCommands(),
		textCommands(),
		systemCommands(),
		environmentCommands(),
		utilityCommands(),
	} {
		for _, cmd := range group {
			if err := r.Register(cmd); err != nil {
				panic(err)
			}
		}
	}
	return r
}

// Register adds a command. Names must be unique.
func (r *Registry) Register(cmd Command) error {
	if cmd.Name == "" {
		return fmt.Errorf("command name cannot be empty")
	}
	if cmd.Run == nil {
		return fmt.Errorf("command %s has no implementation", cmd.Name)
	}
	if _, loaded := r.commands.LoadOrStore(cmd.Name, cmd); loaded {
		return fmt.Errorf("command already registered: %s", cmd.Name)
	}
	return nil
}

// Unregister removes a command
func (r *Registry) Unregister(name string) {
	r.commands.Delete(name)
}

// Get retrieves a command by name
func (r *Registry) Get(name string) (Command, bool) {
	val, ok := r.commands.Load(name)
	if !ok {
		return Command{}, false
	}
	return val.(Command), true
}

// List returns commands sorted by name, optionally filtered by category
func (r *Registry) List(category *Category) []Command {
	var cmds []Command
	r.commands.Range(func(_, value interface{}) bool {
		cmd := value.(Command)
		if category == nil || cmd.Category == *category {
			cmds = append(cmds, cmd)
		}
		return true
	})
	sort.Slice(cmds, func(i, j int) bool {
		return cmds[i].Name < cmds[j].Name
	})
	return cmds
}

// Stats returns registry statistics
func (r *Registry) Stats() map[string]interface{} {
	total := 0
	categories := make(map[string]int)
	r.commands.Range(func(_, value interface{}) bool {
		total++
		categories[string(value.(Command).Category)]++
		return true
	})
	return map[string]interface{}{
		"total_commands": total,
		"categories":     categories,
	}
}
