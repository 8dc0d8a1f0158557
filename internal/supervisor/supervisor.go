package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/nexuscloud/nexus/internal/history"
	"github.com/nexuscloud/nexus/internal/logbuf"
	"github.com/nexuscloud/nexus/internal/metrics"
	"github.com/nexuscloud/nexus/internal/registry"
	"github.com/nexuscloud/nexus/internal/workspace"
)

// ErrAlreadyRunning is returned by Start when a live process reference
// already exists for the bot.
var ErrAlreadyRunning = errors.New("bot already running")

// DefaultRuntime executes startup files when the config does not override it.
const DefaultRuntime = "node"

// Supervisor owns the mapping from bot identifier to live OS process. One
// live process per botID at any time; it holds only identifiers into the
// registry, never record pointers.
type Supervisor struct {
	mu      sync.Mutex
	procs   map[string]*exec.Cmd
	reg     *registry.Registry
	ws      *workspace.Store
	buf     *logbuf.Buffer
	runtime string

	sinksMu sync.RWMutex
	sinks   []history.Sink
}

func New(reg *registry.Registry, ws *workspace.Store, buf *logbuf.Buffer, runtime string) *Supervisor {
	if runtime == "" {
		runtime = DefaultRuntime
	}
	return &Supervisor{
		procs:   make(map[string]*exec.Cmd),
		reg:     reg,
		ws:      ws,
		buf:     buf,
		runtime: runtime,
	}
}

// SetHistorySinks configures lifecycle event sinks. Passing none clears the
// list.
func (s *Supervisor) SetHistorySinks(sinks ...history.Sink) {
	s.sinksMu.Lock()
	s.sinks = append([]history.Sink(nil), sinks...)
	s.sinksMu.Unlock()
}

// Start spawns the bot's startup file. The live-process reference and the
// registry status flip are made atomically with spawn success: a failed
// spawn leaves the record stopped and returns the error.
func (s *Supervisor) Start(botID string) error {
	bot, ok := s.reg.GetBot(botID)
	if !ok {
		return registry.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, live := s.procs[botID]; live {
		return ErrAlreadyRunning
	}

	// announced only once the start actually proceeds
	s.buf.Append(botID, bot.Name, logbuf.ChannelSystem, "Starting bot...")

	cmd := exec.Command(s.runtime, s.ws.StartupPath(botID))
	cmd.Env = append(os.Environ(), "BOT_TOKEN="+bot.Env)
	setProcAttrs(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn %s: %w", s.runtime, err)
	}

	s.procs[botID] = cmd
	s.reg.SetStatus(botID, registry.StatusRunning)
	metrics.IncBotStart(string(bot.Type))
	metrics.SetBotsRunning(len(s.procs))
	s.emit(history.Event{
		Type: history.EventStart, OccurredAt: time.Now().UTC(),
		BotID: botID, BotName: bot.Name, PID: cmd.Process.Pid,
	})

	go s.pump(botID, bot.Name, stdout, logbuf.ChannelStdout)
	go s.pump(botID, bot.Name, stderr, logbuf.ChannelStderr)
	go s.waitExit(botID, bot, cmd)
	return nil
}

// pump streams one output pipe into the shared buffer for the process
// lifetime, independent of any request. Chunks are trimmed; empty chunks
// are dropped.
func (s *Supervisor) pump(botID, name string, r io.Reader, ch logbuf.Channel) {
	chunk := make([]byte, 4096)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			if msg := strings.TrimSpace(string(chunk[:n])); msg != "" {
				s.buf.Append(botID, name, ch, msg)
			}
		}
		if err != nil {
			return
		}
	}
}

// waitExit is the single authoritative transition from running back to
// stopped outside explicit Stop calls. It reaps the process, clears the
// reference if it is still ours, and flips the record status if the bot
// still exists.
func (s *Supervisor) waitExit(botID string, bot registry.Bot, cmd *exec.Cmd) {
	err := cmd.Wait()
	if s.clear(botID, cmd) {
		s.reg.SetStatus(botID, registry.StatusStopped)
		metrics.IncBotStop(string(bot.Type))
		errMsg := ""
		if err != nil {
			errMsg = err.Error()
		}
		s.emit(history.Event{
			Type: history.EventStop, OccurredAt: time.Now().UTC(),
			BotID: botID, BotName: bot.Name, PID: cmd.Process.Pid, Error: errMsg,
		})
	}
}

// clear removes the live reference, but only when it still belongs to cmd:
// Stop and the exit watcher both clear, and a restart must never lose its
// fresh process to a stale watcher.
func (s *Supervisor) clear(botID string, cmd *exec.Cmd) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.procs[botID]; ok && cur == cmd {
		delete(s.procs, botID)
		metrics.SetBotsRunning(len(s.procs))
		return true
	}
	return false
}

// Stop sends a termination signal to the bot's process group and clears the
// reference immediately, without waiting for the exit watcher. Stopping an
// already-stopped bot is a no-op success.
func (s *Supervisor) Stop(botID string) error {
	s.mu.Lock()
	cmd, ok := s.procs[botID]
	if ok {
		delete(s.procs, botID)
		metrics.SetBotsRunning(len(s.procs))
	}
	s.mu.Unlock()
	if !ok {
		return nil
	}

	s.reg.SetStatus(botID, registry.StatusStopped)
	terminate(cmd)

	bot, found := s.reg.GetBot(botID)
	botType := string(bot.Type)
	name := bot.Name
	if !found {
		botType = string(registry.TypeGeneric)
	}
	metrics.IncBotStop(botType)
	s.emit(history.Event{
		Type: history.EventStop, OccurredAt: time.Now().UTC(),
		BotID: botID, BotName: name, PID: cmd.Process.Pid,
	})
	return nil
}

// Kill force-stops a bot as part of deletion. Safe when nothing is running.
func (s *Supervisor) Kill(botID string) {
	s.mu.Lock()
	cmd, ok := s.procs[botID]
	if ok {
		delete(s.procs, botID)
		metrics.SetBotsRunning(len(s.procs))
	}
	s.mu.Unlock()
	if ok {
		kill(cmd)
	}
}

// KillAll force-stops every live process. Used on daemon shutdown.
func (s *Supervisor) KillAll() {
	s.mu.Lock()
	cmds := make([]*exec.Cmd, 0, len(s.procs))
	for id, cmd := range s.procs {
		cmds = append(cmds, cmd)
		delete(s.procs, id)
	}
	metrics.SetBotsRunning(0)
	s.mu.Unlock()
	for _, cmd := range cmds {
		kill(cmd)
	}
}

// Running reports whether a live process reference exists for botID.
func (s *Supervisor) Running(botID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.procs[botID]
	return ok
}

// RunningCount returns the number of live processes.
func (s *Supervisor) RunningCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.procs)
}

// emit sends a lifecycle event to all sinks, best effort. The sink list has
// its own lock so emit is safe under s.mu.
func (s *Supervisor) emit(e history.Event) {
	s.sinksMu.RLock()
	sinks := s.sinks
	s.sinksMu.RUnlock()
	if len(sinks) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, sink := range sinks {
			if err := sink.Send(ctx, e); err != nil {
				slog.Warn("history sink send failed", "bot", e.BotID, "error", err)
			}
		}
	}()
}
