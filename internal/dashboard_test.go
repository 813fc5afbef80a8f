package gpuwatch

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDashboard(t *testing.T) (dashboardModel, *Monitor) {
	t.Helper()
	rec := &chartRecorder{}
	mon := NewMonitor(NewStore(0), rec.factory, nil)
	m := *NewDashboard(mon, "ws://gpu.lan:8000/gpu_status")
	return update(t, m, tea.WindowSizeMsg{Width: 160, Height: 40}), mon
}

func update(t *testing.T, m dashboardModel, msg tea.Msg) dashboardModel {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(dashboardModel)
	require.True(t, ok)
	return model
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func snapshotFrame(t *testing.T, snap Snapshot) frameMsg {
	t.Helper()
	data, err := json.Marshal(map[string]interface{}{"status": StatusInitial, "data": snap})
	require.NoError(t, err)
	return frameMsg(data)
}

func TestDashboardInitializing(t *testing.T) {
	m := *NewDashboard(NewMonitor(NewStore(0), (&chartRecorder{}).factory, nil), "ws://x")
	assert.Equal(t, "Initializing...", m.View())
}

func TestDashboardWaitsForSnapshot(t *testing.T) {
	m, _ := newTestDashboard(t)

	view := m.View()
	assert.Contains(t, view, "Waiting for the initial snapshot from")
	assert.Contains(t, view, "ws://gpu.lan:8000/gpu_status")
	assert.Contains(t, view, "connecting")
}

func TestDashboardAppliesFrames(t *testing.T) {
	m, mon := newTestDashboard(t)

	m = update(t, m, frameMsg(initialFrame))
	m = update(t, m, frameMsg(latestFrame))
	assert.Equal(t, int64(2), mon.Handled())

	view := m.View()
	assert.Contains(t, view, "h1")
	assert.Contains(t, view, "h1:util")
	assert.Contains(t, view, "h1:memory")
	assert.Contains(t, view, "messages=2")
	assert.Empty(t, m.lastErr)
}

func TestDashboardKeepsBadFrameError(t *testing.T) {
	m, mon := newTestDashboard(t)
	m = update(t, m, frameMsg(initialFrame))

	m = update(t, m, frameMsg(`{"status":`))
	assert.Contains(t, m.lastErr, "malformed message")
	assert.Contains(t, m.View(), "last error: malformed message")
	assert.Equal(t, []string{"h1"}, mon.Hosts())
}

func TestDashboardTabs(t *testing.T) {
	m, _ := newTestDashboard(t)
	m = update(t, m, frameMsg(initialFrame))

	m = update(t, m, key("s"))
	view := m.View()
	assert.Contains(t, view, "Utilization")
	assert.Contains(t, view, "h1:util")
	assert.NotContains(t, view, "h1:memory")

	m = update(t, m, key("]"))
	assert.Contains(t, m.View(), "h1:memory")
	assert.NotContains(t, m.View(), "h1:util")

	m = update(t, m, key("["))
	assert.Contains(t, m.View(), "h1:util")

	m = update(t, m, key("s"))
	assert.Contains(t, m.View(), "h1:memory")
	assert.Contains(t, m.View(), "h1:util")
}

func TestDashboardNavigation(t *testing.T) {
	m, _ := newTestDashboard(t)
	m = update(t, m, snapshotFrame(t, syntheticSnapshot(3, 1, 3)))
	require.Len(t, m.tabSets, 3)

	// 3 hosts are laid out in 2 columns
	steps := []struct {
		key  string
		want int
	}{
		{"l", 1},
		{"j", 1},
		{"h", 0},
		{"down", 2},
		{"right", 2},
		{"k", 0},
		{"up", 0},
		{"left", 0},
	}
	for _, s := range steps {
		var msg tea.KeyMsg
		switch s.key {
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = key(s.key)
		}
		m = update(t, m, msg)
		assert.Equal(t, s.want, m.selectedPane, "after %s", s.key)
	}
}

func TestDashboardDropsTabSetsOfVanishedHosts(t *testing.T) {
	m, _ := newTestDashboard(t)
	m = update(t, m, snapshotFrame(t, syntheticSnapshot(3, 1, 3)))
	m = update(t, m, key("l"))
	m = update(t, m, key("l"))
	require.Equal(t, 2, m.selectedPane)

	m = update(t, m, frameMsg(initialFrame))
	assert.Len(t, m.tabSets, 1)
	assert.Contains(t, m.tabSets, "h1")
	assert.Equal(t, 0, m.selectedPane)
}

func TestDashboardConnectionStatus(t *testing.T) {
	m, mon := newTestDashboard(t)

	m = update(t, m, connectedMsg("ws://other:8000/gpu_status"))
	assert.True(t, mon.Connected())
	assert.Contains(t, m.View(), "● connected ws://other:8000/gpu_status")

	m = update(t, m, disconnectedMsg{err: errors.New("connection reset")})
	assert.False(t, mon.Connected())
	view := m.View()
	assert.Contains(t, view, "● disconnected")
	assert.Contains(t, view, "last error: connection reset")
}

func TestDashboardQuit(t *testing.T) {
	m, _ := newTestDashboard(t)

	for _, msg := range []tea.KeyMsg{key("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := m.Update(msg)
		require.NotNil(t, cmd)
		assert.Equal(t, tea.QuitMsg{}, cmd())
	}
}

func TestDashboardHostList(t *testing.T) {
	m, mon := newTestDashboard(t)
	m = update(t, m, frameMsg(initialFrame))
	assert.NotContains(t, m.View(), "GPU0(0)")

	m = update(t, m, key("t"))
	view := m.View()
	assert.Contains(t, view, "Hosts")
	assert.Contains(t, view, "▶ h1")
	assert.Contains(t, view, "GPU0(0)")
	assert.Equal(t, []string{"GPU0(0)"}, mon.SeriesKeys("h1"))
	assert.Nil(t, mon.SeriesKeys("nope"))

	m = update(t, m, key("t"))
	assert.NotContains(t, m.View(), "GPU0(0)")
}
