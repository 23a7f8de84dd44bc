package assistant_test

import (
	"context"
	"testing"
	"time"

	"agentdesk/internal/assistant"
	"agentdesk/internal/logging"
)

func waitDone(t *testing.T, sup *assistant.Supervisor, timeout time.Duration) {
	t.Helper()
	select {
	case <-sup.Done():
	case <-time.After(timeout):
		t.Fatal("supervisor did not finish in time")
	}
}

func TestSupervisorCleanExitStopsSupervision(t *testing.T) {
	sup := assistant.NewSupervisor(assistant.Config{
		Command: "true",
	}, logging.NopLogger())

	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	waitDone(t, sup, 5*time.Second)

	if sup.Running() {
		t.Error("Running() = true after clean exit")
	}
}

func TestSupervisorRetriesAreBounded(t *testing.T) {
	lm := logging.NewTestLogManager(100)
	defer func() { _ = lm.Close() }()

	sup := assistant.NewSupervisor(assistant.Config{
		Command:    "false",
		MaxRetries: 2,
		RetryDelay: 10 * time.Millisecond,
	}, lm.For("assistant"))

	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	waitDone(t, sup, 10*time.Second)

	// Initial run plus two retries, then give up.
	restarts := 0
	for {
		select {
		case entry := <-lm.Channel():
			if entry.Message == "restarting assistant" {
				restarts++
			}
			continue
		default:
		}
		break
	}
	if restarts != 2 {
		t.Errorf("restarts = %d, want 2", restarts)
	}
}

func TestSupervisorStartTwiceFails(t *testing.T) {
	sup := assistant.NewSupervisor(assistant.Config{
		Command: "sleep",
		Args:    []string{"10"},
	}, logging.NopLogger())

	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}
	if err := sup.Start(context.Background()); err == nil {
		t.Error("second Start succeeded, want error")
	}

	if err := sup.Stop(); err != nil {
		t.Fatalf("Stop error = %v", err)
	}
	waitDone(t, sup, 10*time.Second)
}

func TestSupervisorStopTerminatesProcess(t *testing.T) {
	sup := assistant.NewSupervisor(assistant.Config{
		Command: "sleep",
		Args:    []string{"60"},
	}, logging.NopLogger())

	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	// Give the process a moment to start before signaling.
	time.Sleep(100 * time.Millisecond)

	if err := sup.Stop(); err != nil {
		t.Fatalf("Stop error = %v", err)
	}
	waitDone(t, sup, 10*time.Second)

	if sup.Running() {
		t.Error("Running() = true after Stop")
	}
}

func TestSupervisorContextCancelStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	sup := assistant.NewSupervisor(assistant.Config{
		Command:    "false",
		MaxRetries: 1000,
		RetryDelay: time.Hour,
	}, logging.NopLogger())

	if err := sup.Start(ctx); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	// Let the first run fail and enter the retry delay.
	time.Sleep(200 * time.Millisecond)
	cancel()

	waitDone(t, sup, 5*time.Second)
}
