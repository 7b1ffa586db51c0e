package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"metricls/internal/app"
	"metricls/internal/xprt"
)

type stubController struct {
	status app.DaemonStatus
	sets   []app.SetView
	err    error
	calls  int
}

func (s *stubController) Status() (app.DaemonStatus, error) {
	return s.status, nil
}

func (s *stubController) Browse(context.Context, app.BrowseParams) ([]app.SetView, error) {
	s.calls++
	return s.sets, s.err
}

func sampleSets() []app.SetView {
	return []app.SetView{
		{
			Name:    "node1/loadavg",
			Detail:  xprt.Detail{MetricCount: 1, Data: xprt.Region{GN: 4}},
			Metrics: []app.MetricView{{Name: "load1", Type: "d", Value: "0.250000"}},
		},
		{Name: "node1/gone", Err: errors.New("no such set")},
	}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelLoadsSets(t *testing.T) {
	ctrl := &stubController{sets: sampleSets()}
	m := New(ctrl, app.BrowseParams{})

	msg := loadSetsCmd(ctrl, app.BrowseParams{})()
	m.Update(msg)
	if m.loading {
		t.Fatal("expected loading to finish")
	}
	if got := len(m.list.Items()); got != 2 {
		t.Fatalf("expected 2 items, got %d", got)
	}
	view := m.View()
	if !strings.Contains(view, "load1") || !strings.Contains(view, "0.250000") {
		t.Fatalf("detail panel missing from view:\n%s", view)
	}
}

func TestModelShowsErrors(t *testing.T) {
	ctrl := &stubController{err: errors.New("connect refused")}
	m := New(ctrl, app.BrowseParams{})
	m.Update(loadSetsCmd(ctrl, app.BrowseParams{})())
	if m.err == nil || !strings.Contains(m.View(), "connect refused") {
		t.Fatalf("expected error in view, got %v", m.err)
	}
}

func TestModelStatusLine(t *testing.T) {
	ctrl := &stubController{status: app.DaemonStatus{Running: true, PID: 7, Port: 50000}}
	m := New(ctrl, app.BrowseParams{})
	m.Update(checkDaemonStatusCmd(ctrl)())
	if m.statusMsg != "Local daemon running on port 50000 (pid 7)." {
		t.Fatalf("unexpected status %q", m.statusMsg)
	}
}

func TestModelKeys(t *testing.T) {
	ctrl := &stubController{sets: sampleSets()}
	m := New(ctrl, app.BrowseParams{})

	_, cmd := m.Update(key("r"))
	if cmd == nil || !m.loading {
		t.Fatal("r should start a refresh")
	}
	cmd()
	if ctrl.calls != 1 {
		t.Fatalf("expected one Browse call, got %d", ctrl.calls)
	}

	m.Update(key("a"))
	if !m.auto {
		t.Fatal("a should enable auto refresh")
	}
	m.Update(key("a"))
	if _, cmd := m.Update(tickMsg{}); cmd != nil {
		t.Fatal("ticks are ignored once auto refresh is off")
	}

	_, cmd = m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should return tea.Quit")
	}
}

func TestRenderSetError(t *testing.T) {
	got := renderSet(app.SetView{Name: "x", Err: errors.New("gone")})
	if got != "x\nerror: gone" {
		t.Fatalf("unexpected render %q", got)
	}
}
