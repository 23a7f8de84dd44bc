// pattern: Imperative Shell

package assistant

import (
	"bufio"
	"context"
	"errors"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"agentdesk/internal/logging"
)

// Config describes the external assistant process to supervise. The
// conversational loop lives inside that process; this package only keeps it
// alive and captures its output.
type Config struct {
	Command    string
	Args       []string
	Dir        string
	MaxRetries int
	RetryDelay time.Duration
}

// Supervisor manages the lifecycle of the assistant process, restarting it
// on non-zero exit up to MaxRetries.
type Supervisor struct {
	cfg    Config
	logger *logging.ScopedLogger

	mu      sync.Mutex
	cmd     *exec.Cmd
	running bool
	stopped bool
	done    chan struct{}
}

// NewSupervisor creates a supervisor for the assistant process.
func NewSupervisor(cfg Config, logger *logging.ScopedLogger) *Supervisor {
	return &Supervisor{
		cfg:    cfg,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start launches the assistant in a goroutine. Non-blocking.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("assistant: already running")
	}
	s.running = true
	s.mu.Unlock()

	go s.run(ctx)
	return nil
}

// Stop sends SIGTERM and waits up to 5 seconds, then SIGKILL.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	s.stopped = true
	cmd := s.cmd
	s.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		<-s.done
		return nil
	}

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Process may already be gone.
		<-s.done
		return nil
	}

	select {
	case <-s.done:
		return nil
	case <-time.After(5 * time.Second):
	}

	s.mu.Lock()
	cmd = s.cmd
	s.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}

	<-s.done
	return nil
}

// Running returns whether the assistant is currently supervised.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Done returns a channel closed when supervision ends.
func (s *Supervisor) Done() <-chan struct{} {
	return s.done
}

func (s *Supervisor) run(ctx context.Context) {
	defer close(s.done)
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	retries := 0
	for {
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		exitCode := s.runOnce(ctx)

		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		if exitCode == 0 {
			return
		}

		retries++
		if s.cfg.MaxRetries > 0 && retries > s.cfg.MaxRetries {
			s.logger.Error("assistant max retries exceeded", "retries", retries-1)
			return
		}

		delay := s.cfg.RetryDelay
		if delay == 0 {
			delay = time.Second
		}

		s.logger.Info("restarting assistant", "attempt", retries, "delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
}

func (s *Supervisor) runOnce(ctx context.Context) int {
	cmd := exec.CommandContext(ctx, s.cfg.Command, s.cfg.Args...)
	cmd.Dir = s.cfg.Dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.logger.Error("failed to create stdout pipe", "error", err)
		return -1
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		s.logger.Error("failed to create stderr pipe", "error", err)
		return -1
	}

	s.logger.Info("starting assistant", "command", s.cfg.Command)

	if err := cmd.Start(); err != nil {
		s.logger.Error("failed to start assistant", "error", err)
		return -1
	}

	s.mu.Lock()
	s.cmd = cmd
	s.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			s.logger.Info(scanner.Text(), "stream", "stdout")
		}
	}()
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			s.logger.Info(scanner.Text(), "stream", "stderr")
		}
	}()

	wg.Wait()
	err = cmd.Wait()

	s.mu.Lock()
	s.cmd = nil
	s.mu.Unlock()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			s.logger.Warn("assistant exited", "exit_code", code)
			return code
		}
		s.logger.Info("assistant stopped", "error", err)
		return -1
	}

	s.logger.Info("assistant exited cleanly")
	return 0
}
