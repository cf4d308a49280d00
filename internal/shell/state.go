package shell

import (
	"maps"
	"slices"
	"time"

	"github.com/GriffinCanCode/AgentOS/vfsd/internal/vfs"
)

// Job is metadata for a command submitted with a trailing "&". Commands always
// run to completion, so a job is recorded as done.
type Job struct {
	ID        string    `json:"id"`
	Number    int       `json:"number"`
	Command   string    `json:"command"`
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// State is the per-terminal session data handed to every command.
// Commands receive it by value and describe changes through an Effect.
type State struct {
	CurrentDirectory vfs.Path          `json:"current_directory"`
	Environment      map[string]string `json:"environment"`
	Aliases          map[string]string `json:"aliases"`
	Jobs             []Job             `json:"jobs"`
	History          []string          `json:"history"`
}

// NewState returns the starting state for a session rooted at home
func NewState(home vfs.Path, user, hostname, homeDisplay string) State {
	return State{
		CurrentDirectory: home.Clone(),
		Environment: map[string]string{
			"USER":     user,
			"HOME":     homeDisplay,
			"PWD":      homeDisplay,
			"HOSTNAME": hostname,
			"SHELL":    "/bin/vfsh",
			"TERM":     "xterm-256color",
		},
		Aliases: map[string]string{
			"ll": "ls -l",
		},
		Jobs:    []Job{},
		History: []string{},
	}
}

// Clone returns a deep copy safe to hand to a command
func (s State) Clone() State {
	cp := State{
		CurrentDirectory: s.CurrentDirectory.Clone(),
		Environment:      maps.Clone(s.Environment),
		Aliases:          maps.Clone(s.Aliases),
		Jobs:             slices.Clone(s.Jobs),
		History:          slices.Clone(s.History),
	}
	if cp.Environment == nil {
		cp.Environment = map[string]string{}
	}
	if cp.Aliases == nil {
		cp.Aliases = map[string]string{}
	}
	return cp
}

// Effect is a session-state transition requested by a command.
// The caller decides whether and when to apply it.
type Effect struct {
	Chdir       *vfs.Path         `json:"chdir,omitempty"`
	SetEnv      map[string]string `json:"set_env,omitempty"`
	UnsetEnv    []string          `json:"unset_env,omitempty"`
	SetAlias    map[string]string `json:"set_alias,omitempty"`
	UnsetAlias  []string          `json:"unset_alias,omitempty"`
	ClearScreen bool              `json:"clear_screen,omitempty"`
}

// Apply performs the effect on s. A nil effect is a no-op.
func (e *Effect) Apply(s *State) {
	if e == nil {
		return
	}
	if e.Chdir != nil {
		s.CurrentDirectory = e.Chdir.Clone()
	}
	if len(e.SetEnv) > 0 && s.Environment == nil {
		s.Environment = map[string]string{}
	}
	maps.Copy(s.Environment, e.SetEnv)
	for _, k := range e.UnsetEnv {
		delete(s.Environment, k)
	}
	if len(e.SetAlias) > 0 && s.Aliases == nil {
		s.Aliases = map[string]string{}
	}
	maps.Copy(s.Aliases, e.SetAlias)
	for _, k := range e.UnsetAlias {
		delete(s.Aliases, k)
	}
}
