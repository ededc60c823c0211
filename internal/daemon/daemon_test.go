package daemon_test

import (
	"context"
	"testing"

	"lumina/internal/daemon"
	"lumina/internal/logging"
	"lumina/internal/testsupport"
	"lumina/internal/watcher"
)

func TestDaemonLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	manager := watcher.NewManager(cfg, st, logging.NewNop())

	d, err := daemon.New(cfg, st, logging.NewNop(), manager)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("second Start should fail")
	}

	status := d.Status(ctx)
	if !status.Running || !status.Watching {
		t.Errorf("status = %+v, want running and watching", status)
	}
	if status.DatabasePath != cfg.DatabasePath() {
		t.Errorf("database path = %q", status.DatabasePath)
	}

	d.Stop()
	if d.Status(ctx).Running {
		t.Error("daemon should report stopped")
	}

	// Stop twice is a no-op.
	d.Stop()
}

func TestDaemonSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	first, err := daemon.New(cfg, st, logging.NewNop(), watcher.NewManager(cfg, st, logging.NewNop()))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	second, err := daemon.New(cfg, st, logging.NewNop(), watcher.NewManager(cfg, st, logging.NewNop()))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second instance should fail to acquire lock")
	}
}

func TestDaemonRequiresDependencies(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := daemon.New(cfg, nil, logging.NewNop(), nil); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}
