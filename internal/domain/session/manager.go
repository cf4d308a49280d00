package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/vfsd/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/shell"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/vfs"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrInvalidID       = errors.New("invalid session id")
	ErrTooManySessions = errors.New("session limit reached")
)

const jobStatusDone = "done"

// Gauge tracks the number of live sessions (implemented by monitoring.Metrics)
type Gauge interface {
	SetSessionsActive(count int)
}

type nopGauge struct{}

func (nopGauge) SetSessionsActive(int) {}

// Info describes a session without exposing its state
type Info struct {
	ID               string    `json:"id"`
	CurrentDirectory string    `json:"current_directory"`
	Path             vfs.Path  `json:"path"`
	CreatedAt        time.Time `json:"created_at"`
	LastActive       time.Time `json:"last_active"`
	Commands         int       `json:"commands"`
	Jobs             int       `json:"jobs"`
}

// Execution is the result of one input line
type Execution struct {
	SessionID        string       `json:"session_id"`
	Input            string       `json:"input"`
	Result           shell.Result `json:"result"`
	CurrentDirectory string       `json:"current_directory"`
	Job              *shell.Job   `json:"job,omitempty"`
}

type session struct {
	id        string
	createdAt time.Time

	mu         sync.Mutex
	state      shell.State
	lastActive time.Time
	commands   int
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithGauge attaches a live-session gauge
func WithGauge(g Gauge) Option {
	return func(m *Manager) {
		if g != nil {
			m.gauge = g
		}
	}
}

// WithTracer records a span per executed line
func WithTracer(t *tracing.Tracer) Option {
	return func(m *Manager) {
		m.tracer = t
	}
}

// WithLimits bounds the number of sessions and the history kept per session.
// Zero leaves a limit unchanged.
func WithLimits(maxSessions, maxHistory int) Option {
	return func(m *Manager) {
		if maxSessions > 0 {
			m.maxSessions = maxSessions
		}
		if maxHistory > 0 {
			m.maxHistory = maxHistory
		}
	}
}

// Manager owns terminal sessions and every transition of their state.
// Commands run through the shell never mutate state; the manager applies the
// returned effects, records history and jobs.
type Manager struct {
	shell  *shell.Shell
	logger *zap.Logger
	gauge  Gauge
	tracer *tracing.Tracer

	mu          sync.Mutex
	sessions    map[string]*session
	maxSessions int
	maxHistory  int
	now         func() time.Time
}

// NewManager creates a session manager executing commands with sh
func NewManager(sh *shell.Shell, opts ...Option) *Manager {
	m := &Manager{
		shell:       sh,
		logger:      zap.NewNop(),
		gauge:       nopGauge{},
		sessions:    make(map[string]*session),
		maxSessions: 64,
		maxHistory:  500,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a session at the shell's home folder
func (m *Manager) Create() (*Info, error) {
	now := m.now()
	s := &session{
		id:         id.NewSessionID().String(),
		createdAt:  now,
		lastActive: now,
		state:      m.shell.NewState(),
	}

	m.mu.Lock()
	if len(m.sessions) >= m.maxSessions {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w (%d)", ErrTooManySessions, m.maxSessions)
	}
	m.sessions[s.id] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.gauge.SetSessionsActive(count)
	m.logger.Info("terminal session created", zap.String("session_id", s.id))

	s.mu.Lock()
	defer s.mu.Unlock()
	return m.info(s), nil
}

// Get returns session info
func (m *Manager) Get(sessionID string) (*Info, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.info(s), nil
}

// State returns a copy of the session state
func (m *Manager) State(sessionID string) (shell.State, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return shell.State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone(), nil
}

// List returns all sessions, oldest first
func (m *Manager) List() []Info {
	m.mu.Lock()
	all := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.Unlock()

	infos := make([]Info, 0, len(all))
	for _, s := range all {
		s.mu.Lock()
		infos = append(infos, *m.info(s))
		s.mu.Unlock()
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}

// Kill removes a session
func (m *Manager) Kill(sessionID string) error {
	if err := validateID(sessionID); err != nil {
		return err
	}
	m.mu.Lock()
	if _, ok := m.sessions[sessionID]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	delete(m.sessions, sessionID)
	count := len(m.sessions)
	m.mu.Unlock()

	m.gauge.SetSessionsActive(count)
	m.logger.Info("terminal session closed", zap.String("session_id", sessionID))
	return nil
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Execute runs one input line in the session. Lines in the same session run
// one at a time. A trailing "&" records the command as a job; it still runs to
// completion before Execute returns.
func (m *Manager) Execute(ctx context.Context, sessionID, input string) (*Execution, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line := strings.TrimSpace(input)
	background := false
	if strings.HasSuffix(line, "&") {
		background = true
		line = strings.TrimSpace(strings.TrimSuffix(line, "&"))
	}
	if line != "" {
		s.state.History = append(s.state.History, line)
		if over := len(s.state.History) - m.maxHistory; over > 0 {
			s.state.History = append([]string(nil), s.state.History[over:]...)
		}
	}

	parsed := shell.ParseCommand(line)
	span, ctx := m.tracer.StartSpan(ctx, "terminal.exec")
	res := m.shell.ExecuteCommand(ctx, parsed, s.state)
	span.SetTag("session_id", s.id)
	span.SetTag("command", parsed.Command)
	span.SetTag("exit_code", strconv.Itoa(res.ExitCode))
	m.tracer.Submit(span)
	res.Effect.Apply(&s.state)

	exec := &Execution{SessionID: s.id, Input: input, Result: res}
	if background && parsed.Command != "" {
		job := shell.Job{
			ID:        id.NewJobID().String(),
			Number:    len(s.state.Jobs) + 1,
			Command:   line,
			Status:    jobStatusDone,
			StartedAt: m.now(),
		}
		s.state.Jobs = append(s.state.Jobs, job)
		exec.Job = &job
		notice := fmt.Sprintf("[%d] %s", job.Number, job.ID)
		if exec.Result.Output != "" {
			notice += "\n" + exec.Result.Output
		}
		exec.Result.Output = notice
	}

	s.lastActive = m.now()
	s.commands++
	exec.CurrentDirectory = m.shell.DisplayPath(s.state.CurrentDirectory)

	m.logger.Debug("terminal command",
		zap.String("session_id", s.id),
		zap.String("command", parsed.Command),
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("duration", res.Duration),
		zap.Bool("background", background))
	return exec, nil
}

// validateID rejects anything that NewSessionID could not have produced
func validateID(sessionID string) error {
	if !id.HasPrefix(sessionID, id.SessionPrefix) {
		return fmt.Errorf("%w: %q", ErrInvalidID, sessionID)
	}
	return nil
}

func (m *Manager) lookup(sessionID string) (*session, error) {
	if err := validateID(sessionID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	return s, nil
}

// info snapshots s; the caller holds s.mu
func (m *Manager) info(s *session) *Info {
	return &Info{
		ID:               s.id,
		CurrentDirectory: m.shell.DisplayPath(s.state.CurrentDirectory),
		Path:             s.state.CurrentDirectory.Clone(),
		CreatedAt:        s.createdAt,
		LastActive:       s.lastActive,
		Commands:         s.commands,
		Jobs:             len(s.state.Jobs),
	}
}
