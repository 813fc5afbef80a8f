package gpuwatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
)

// frameMsg carries one websocket text frame into the event loop
type frameMsg []byte

type connectedMsg string

type disconnectedMsg struct {
	err error
}

type dashboardModel struct {
	monitor      *Monitor
	endpoint     string
	status       string
	lastErr      string
	tabSets      map[string]*TabSet
	selectedPane int
	showList     bool
	width        int
	height       int
	ready        bool
}

func NewDashboard(mon *Monitor, endpoint string) *dashboardModel {
	return &dashboardModel{
		monitor:  mon,
		endpoint: endpoint,
		status:   "connecting",
		tabSets:  make(map[string]*TabSet),
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return nil
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		hosts := m.monitor.Hosts()
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "j", "down":
			columns := GridColumns(len(hosts))
			if m.selectedPane+columns < len(hosts) {
				m.selectedPane += columns
			}
		case "k", "up":
			columns := GridColumns(len(hosts))
			if m.selectedPane-columns >= 0 {
				m.selectedPane -= columns
			}
		case "h", "left":
			if m.selectedPane > 0 {
				m.selectedPane--
			}
		case "l", "right":
			if m.selectedPane < len(hosts)-1 {
				m.selectedPane++
			}
		case "[":
			if ts := m.selectedTabSet(hosts); ts != nil {
				ts.PrevTab()
			}
		case "]":
			if ts := m.selectedTabSet(hosts); ts != nil {
				ts.NextTab()
			}
		case "s":
			if ts := m.selectedTabSet(hosts); ts != nil {
				ts.ToggleSplit()
			}
		case "t":
			m.showList = !m.showList
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case connectedMsg:
		m.endpoint = string(msg)
		m.status = "connected"
		m.monitor.SetConnected(true)

	case disconnectedMsg:
		m.status = "disconnected"
		m.monitor.SetConnected(false)
		if msg.err != nil {
			m.lastErr = msg.err.Error()
		}

	case frameMsg:
		if err := m.monitor.HandleMessage(msg); err != nil {
			log.Printf("Failed to handle message: %v", err)
			m.lastErr = err.Error()
		}
		m.syncTabSets()
	}

	return m, nil
}

// syncTabSets keeps one TabSet per host, preserving tab state across updates
func (m *dashboardModel) syncTabSets() {
	hosts := m.monitor.Hosts()
	seen := make(map[string]bool, len(hosts))
	for _, host := range hosts {
		seen[host] = true
		if _, ok := m.tabSets[host]; !ok {
			m.tabSets[host] = NewTabSet()
		}
	}
	for host := range m.tabSets {
		if !seen[host] {
			delete(m.tabSets, host)
		}
	}
	if m.selectedPane >= len(hosts) {
		m.selectedPane = max(0, len(hosts)-1)
	}
}

func (m dashboardModel) selectedTabSet(hosts []string) *TabSet {
	if m.selectedPane >= len(hosts) {
		return nil
	}
	return m.tabSets[hosts[m.selectedPane]]
}

func (m dashboardModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	hosts := m.monitor.Hosts()
	statusBar := m.renderStatusBar(len(hosts))

	if len(hosts) == 0 {
		helpStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(2, 4)

		return helpStyle.Render(
			"Waiting for the initial snapshot from\n"+
				m.endpoint+"\n\n"+
				"Press 'q' to quit",
		) + "\n" + statusBar
	}

	columns := GridColumns(len(hosts))
	rows := GridRows(len(hosts))

	// Account for the status bar (1 line) and pane borders (2 each way)
	availableHeight := m.height - lipgloss.Height(statusBar)
	availableWidth := m.width

	var hostList string
	if m.showList {
		list := NewPane("Hosts", m.hostListWidth(hosts), availableHeight-2).
			SetContent(m.renderHostList(hosts))
		hostList = list.Render()
		availableWidth -= lipgloss.Width(hostList)
	}

	paneWidth := availableWidth/columns - 2
	paneHeight := availableHeight/rows - 2

	var renderedPanes []Pane
	for i, host := range hosts {
		pane := NewPane(host, paneWidth, paneHeight)
		contentWidth, contentHeight := pane.ContentSize()

		ts, ok := m.tabSets[host]
		charts, found := m.monitor.Charts(host)
		if ok && found {
			ts.SetSize(contentWidth, contentHeight)
			pane = pane.SetContent(ts.Render(charts))
		} else {
			pane = pane.SetContent("Waiting for data...")
		}

		if i == m.selectedPane {
			pane = pane.SetFocused(true)
		}
		renderedPanes = append(renderedPanes, pane)
	}

	grid := Wrap(columns, renderedPanes...)
	if hostList != "" {
		grid = lipgloss.JoinHorizontal(lipgloss.Top, hostList, grid)
	}
	return grid + "\n" + statusBar
}

// hostListWidth returns the sidebar width needed for the longest host or GPU key
func (m dashboardModel) hostListWidth(hosts []string) int {
	width := len("Hosts")
	for _, host := range hosts {
		width = max(width, lipgloss.Width(host)+2) // "▶ "
		for _, key := range m.monitor.SeriesKeys(host) {
			width = max(width, lipgloss.Width(key)+4) // tree enumerator
		}
	}
	return width + 1
}

// renderHostList lists every host with its GPUs using lipgloss tree
func (m dashboardModel) renderHostList(hosts []string) string {
	selectedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("170")).
		Bold(true)

	hostStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Bold(true)

	var trees []string
	for i, host := range hosts {
		var label string
		if i == m.selectedPane {
			label = selectedStyle.Render("▶ " + host)
		} else {
			label = hostStyle.Render(host)
		}

		t := tree.New().Root(label)
		for _, key := range m.monitor.SeriesKeys(host) {
			t = t.Child(key)
		}
		trees = append(trees, t.String())
	}

	return strings.Join(trees, "\n")
}

func (m dashboardModel) renderStatusBar(hosts int) string {
	stateColor := "196"
	if m.status == "connected" {
		stateColor = "46"
	}
	state := lipgloss.NewStyle().Foreground(lipgloss.Color(stateColor)).Render("● " + m.status)

	text := fmt.Sprintf("%s %s  hosts=%d  messages=%d", state, m.endpoint, hosts, m.monitor.Handled())
	if m.lastErr != "" {
		text += "  last error: " + m.lastErr
	}
	text += "  |  []=Switch Chart  s=Split  t=Hosts  hjkl/arrows=Navigate  q=Quit"

	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Background(lipgloss.Color("235")).
		Width(m.width).
		MaxHeight(1).
		Render(text)
}

// programHandler forwards stream events into the Bubble Tea event loop,
// which applies them one at a time in arrival order
type programHandler struct {
	p *tea.Program
}

func (h programHandler) Connected(endpoint string) { h.p.Send(connectedMsg(endpoint)) }
func (h programHandler) Frame(data []byte)         { h.p.Send(frameMsg(data)) }
func (h programHandler) Disconnected(err error)    { h.p.Send(disconnectedMsg{err: err}) }

// Dashboard runs the terminal UI until the user quits or ctx is cancelled
func Dashboard(ctx context.Context, mon *Monitor, stream *Stream) error {
	m := NewDashboard(mon, stream.Endpoint())
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go stream.Run(streamCtx, programHandler{p: p})

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("error running bubbletea program: %w", err)
	}
	return nil
}
