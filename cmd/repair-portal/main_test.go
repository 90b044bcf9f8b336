package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bigkaa/repairshop-portal/internal/monitor"
)

func TestStopMonitor(t *testing.T) {
	// Мониторинг не запущен: остановка ничего не делает
	stopMonitor(nil)

	mon, err := monitor.NewWithRegisterer(monitor.Options{
		Group:         "repairshop",
		BackendURL:    "http://127.0.0.1:1",
		HealthPath:    "/actuator/health",
		CheckInterval: 15 * time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewWithRegisterer: %v", err)
	}
	if err := mon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	done := make(chan struct{})
	go func() {
		stopMonitor(mon)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stopMonitor не остановил мониторинг")
	}
}
