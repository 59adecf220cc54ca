// Command myogen-teleop is a terminal UI for driving the hand by keyboard:
// arrow keys step the selected joint, number keys jump to presets, and a
// streaming chart plots live gyro magnitude from the wrist IMU.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/akshayakula/myogen/internal/config"
	"github.com/akshayakula/myogen/internal/log"
	"github.com/akshayakula/myogen/pkg/control"
	"github.com/akshayakula/myogen/pkg/gesture"
	"github.com/akshayakula/myogen/pkg/hand"
	"github.com/akshayakula/myogen/pkg/protocol"
	"github.com/akshayakula/myogen/pkg/transport"
)

const (
	headerHeight = 2
	jointsHeight = 8 // joint table + blank
	footerHeight = 3
	borderSize   = 2

	jointStep = 5 // degrees per keypress
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	gestureStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("201"))
)

type teleopModel struct {
	session *control.Session

	selected int       // joint under the cursor
	target   hand.Pose // last pose sent to the session

	chart       *streamlinechart.Model
	width       int
	height      int
	gestures    int
	lastGesture string
	quitting    bool
}

// Messages from the session's event channels.
type telemetryMsg protocol.TelemetryFrame
type gestureMsg gesture.Event
type disconnectMsg struct{}

func waitForTelemetry(s *control.Session) tea.Cmd {
	return func() tea.Msg {
		t, ok := <-s.Telemetry()
		if !ok {
			return nil
		}
		return telemetryMsg(t)
	}
}

func waitForGesture(s *control.Session) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-s.Gestures()
		if !ok {
			return nil
		}
		return gestureMsg(e)
	}
}

func waitForDisconnect(s *control.Session) tea.Cmd {
	return func() tea.Msg {
		<-s.Disconnected()
		return disconnectMsg{}
	}
}

func (m *teleopModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 12
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - jointsHeight - footerHeight - borderSize
	if height < 8 {
		height = 8
	}
	return width, height
}

func initialTeleopModel(session *control.Session) teleopModel {
	chart := streamlinechart.New(80, 12,
		streamlinechart.WithYRange(0, 30000),
	)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
	chart.SetDataSetStyles("gyro", runes.ThinLineStyle, style)

	return teleopModel{
		session: session,
		target:  hand.Neutral(),
		chart:   &chart,
	}
}

func (m teleopModel) Init() tea.Cmd {
	return tea.Batch(
		waitForTelemetry(m.session),
		waitForGesture(m.session),
		waitForDisconnect(m.session),
	)
}

func (m teleopModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.chartSize()
		m.chart.Resize(w, h)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case telemetryMsg:
		t := protocol.TelemetryFrame(msg)
		m.chart.PushDataSet("gyro", t.GyroMagnitude())
		m.chart.DrawAll()
		return m, waitForTelemetry(m.session)

	case gestureMsg:
		e := gesture.Event(msg)
		m.gestures++
		m.lastGesture = fmt.Sprintf("gyro %.0f (baseline %.0f)", e.GyroMag, e.Baseline)
		return m, waitForGesture(m.session)

	case disconnectMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m teleopModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "left", "h":
		if m.selected > 0 {
			m.selected--
		}
	case "right", "l":
		if m.selected < hand.NumJoints-1 {
			m.selected++
		}
	case "up", "k":
		m.target[m.selected] += jointStep
		m.session.SetTarget(m.target)
	case "down", "j":
		m.target[m.selected] -= jointStep
		m.session.SetTarget(m.target)

	case "n":
		m.target = hand.Neutral()
		m.session.SetTarget(m.target)

	default:
		// Number keys jump to presets in name order.
		names := hand.PresetNames()
		for i, name := range names {
			if msg.String() == fmt.Sprintf("%d", i+1) {
				if pose, ok := hand.Preset(name); ok {
					m.target = pose
					m.session.SetTarget(m.target)
				}
				break
			}
		}
	}
	return m, nil
}

func (m teleopModel) View() string {
	if m.quitting {
		return "Teleoperation stopped.\n"
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("myogen teleoperate"))
	if m.session.Connected() {
		sb.WriteString(statusStyle.Render("  [connected]"))
	} else {
		sb.WriteString(gestureStyle.Render("  [link lost]"))
	}
	sb.WriteString("\n\n")

	for i := 0; i < hand.NumJoints; i++ {
		line := fmt.Sprintf("  %-7s %3d°", hand.JointName(i), m.target[i])
		if i == m.selected {
			line = selectedStyle.Render("▸" + line[1:])
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	if m.gestures > 0 {
		sb.WriteString(gestureStyle.Render(fmt.Sprintf("gestures: %d", m.gestures)))
		sb.WriteString(statusStyle.Render("  last: " + m.lastGesture))
		sb.WriteString("\n")
	}

	presets := make([]string, 0, len(hand.PresetNames()))
	for i, name := range hand.PresetNames() {
		presets = append(presets, fmt.Sprintf("%d=%s", i+1, name))
	}
	sb.WriteString(statusStyle.Render("←/→ joint  ↑/↓ move  n neutral  q quit  " + strings.Join(presets, " ")))
	sb.WriteString("\n")

	return sb.String()
}

func main() {
	transportKind := flag.String("transport", "serial", "Link to the hand: serial, ble, or loopback")
	serialPort := flag.String("port", config.SerialPort(""), "Serial device path (empty = auto-detect)")
	baud := flag.Int("baud", config.BaudRate(), "Serial baud rate")
	bleName := flag.String("ble-name", config.BLEName(), "BLE peripheral name")
	profileName := flag.String("profile", "a", "Wire profile: a or b")
	flag.Parse()

	// Keep structured logs off the TUI's terminal.
	log.Init("error")

	profile, err := protocol.ParseProfile(*profileName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var port transport.Port
	switch *transportKind {
	case "serial":
		port, err = transport.OpenSerial(transport.SerialOptions{Port: *serialPort, BaudRate: *baud})
	case "ble":
		port, err = transport.OpenBLE(transport.BLEOptions{Name: *bleName})
	case "loopback":
		port = transport.NewLoopback()
	default:
		err = fmt.Errorf("unknown transport %q (want serial, ble, or loopback)", *transportKind)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "transport open failed: %v\n", err)
		os.Exit(1)
	}

	limits := hand.DefaultLimits()
	session, err := control.NewSession(port, protocol.NewCodec(profile, limits), limits, control.DefaultConfig())
	if err != nil {
		port.Close()
		fmt.Fprintf(os.Stderr, "session setup failed: %v\n", err)
		os.Exit(1)
	}
	go session.Run()

	p := tea.NewProgram(initialTeleopModel(session), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
	}

	session.Stop()
	select {
	case <-session.Done():
	case <-time.After(2 * time.Second):
	}
}
