// Package viewer provides the Bubble Tea matrix browser.
package viewer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/ddgheat/internal/colorscale"
	"github.com/verte-zerg/ddgheat/internal/model"
	"github.com/verte-zerg/ddgheat/internal/stats"
)

const (
	tabHeatmap = iota
	tabResidues
	tabExtremes
)

const extremesCount = 15

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea matrix viewer.
type Model struct {
	matrix *model.Matrix
	scale  colorscale.Scale
	report stats.Report
	title  string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	residues  table.Model

	// offset is the first visible position column on the heatmap tab.
	offset int

	width  int
	height int
}

// NewModel constructs a viewer for one rendered matrix.
func NewModel(title string, m *model.Matrix, scale colorscale.Scale) *Model {
	v := &Model{
		matrix: m,
		scale:  scale,
		report: stats.BuildReport(m, extremesCount),
		title:  title,
		tabs:   []string{"Heatmap", "Residues", "Extremes"},
	}
	v.viewports = make([]viewport.Model, len(v.tabs))
	for i := range v.viewports {
		v.viewports[i] = viewport.New(0, 0)
	}
	v.residues = buildResidueTable(v.report.Residues, 0, 1)
	v.renderTabContents()
	return v
}

// Run starts the viewer on the current terminal and blocks until it quits.
func Run(title string, m *model.Matrix, scale colorscale.Scale) error {
	p := tea.NewProgram(NewModel(title, m, scale), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "shift+tab":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "1", "2", "3":
			m.setTab(int(msg.String()[0] - '1'))
			return m, tea.ClearScreen
		}
		if m.activeTab == tabHeatmap {
			if m.scrollColumns(msg.String()) {
				return m, nil
			}
		}
		switch msg.String() {
		case "g", "home":
			if m.activeTab == tabResidues {
				m.residues.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabResidues {
				m.residues.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		}
		if m.activeTab == tabResidues {
			var cmd tea.Cmd
			m.residues, cmd = m.residues.Update(msg)
			return m, cmd
		}
		vp := m.viewports[m.activeTab]
		var cmd tea.Cmd
		vp, cmd = vp.Update(msg)
		m.viewports[m.activeTab] = vp
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// scrollColumns moves the heatmap window and reports whether key was handled.
func (m *Model) scrollColumns(key string) bool {
	page := stats.VisibleColumns(m.matrix, m.contentWidth())
	next := m.offset
	switch key {
	case "left", "h":
		next--
	case "right", "l":
		next++
	case "[", "pgleft":
		next -= page
	case "]", "pgright":
		next += page
	case "0":
		next = 0
	case "$":
		next = len(m.matrix.Positions) - page
	default:
		return false
	}
	next = clamp(next, 0, maxInt(0, len(m.matrix.Positions)-page))
	if next != m.offset {
		m.offset = next
		m.renderHeatmap()
	}
	return true
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.residues.SetWidth(m.width)
	m.residues.SetHeight(maxInt(1, bodyHeight-1))
	m.offset = clamp(m.offset, 0, maxInt(0, len(m.matrix.Positions)-stats.VisibleColumns(m.matrix, m.width)))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.setTab(next)
}

func (m *Model) setTab(idx int) {
	if idx < 0 || idx >= len(m.tabs) {
		return
	}
	m.activeTab = idx
	if m.activeTab == tabResidues {
		m.residues.Focus()
	} else {
		m.residues.Blur()
	}
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	return padLines(m.renderTabs(), m.width) + "\n" + padLines(m.renderSummaryLine(), m.width)
}

func (m *Model) renderSummaryLine() string {
	shape := fmt.Sprintf("%s  %d residues x %d positions  range %.2f..%.2f",
		m.title, len(m.matrix.Residues), len(m.matrix.Positions), m.scale.Min, m.scale.Max)
	if !m.scale.Centered {
		shape += "  (one-sided)"
	}
	return headerStyle.Render(truncateLine(shape, m.width))
}

func (m *Model) renderFooter() string {
	help := "Tabs: tab/1-3  Scroll: up/down  Quit: q"
	if m.activeTab == tabHeatmap {
		help = "Tabs: tab/1-3  Columns: left/right [ ] 0 $  Scroll: up/down  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderBody() string {
	if m.activeTab == tabResidues {
		if len(m.report.Residues) == 0 {
			return "No residues."
		}
		return tableMutedStyle.Render(m.residues.View())
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) renderTabContents() {
	m.renderHeatmap()
	m.viewports[tabExtremes].SetContent(renderExtremes(m.report))
	m.residues.SetRows(residueRows(m.report.Residues))
}

func (m *Model) renderHeatmap() {
	var buf bytes.Buffer
	err := stats.RenderHeatmap(&buf, m.matrix, m.scale, stats.HeatmapOptions{
		Offset: m.offset,
		Width:  m.contentWidth(),
		Color:  true,
	})
	if err != nil {
		m.viewports[tabHeatmap].SetContent(fmt.Sprintf("Failed to render heatmap: %v", err))
		return
	}
	m.viewports[tabHeatmap].SetContent(strings.TrimRight(buf.String(), "\n"))
}

func renderExtremes(report stats.Report) string {
	var buf bytes.Buffer
	if err := stats.RenderExtremes(&buf, "Most Destabilizing", report.Destabilizing); err != nil {
		return fmt.Sprintf("Failed to render extremes: %v", err)
	}
	if err := stats.RenderExtremes(&buf, "Most Stabilizing", report.Stabilizing); err != nil {
		return fmt.Sprintf("Failed to render extremes: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}
