package views

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rendis/subregiones/internal/engine/features"
	"github.com/rendis/subregiones/internal/engine/geo"
	"github.com/rendis/subregiones/internal/model"
	"github.com/rendis/subregiones/internal/session"
	"github.com/rendis/subregiones/internal/tui/components"
	"github.com/rendis/subregiones/internal/tui/styles"
)

type focusArea int

const (
	focusDepartment focusArea = iota
	focusSubregion
	focusTable
	focusMap
	focusCount
)

const (
	leftWidth   = 34
	tableRows   = 6
	popupLines  = 4
	minMapRows  = 5
	minPickRows = 3
)

// loadingState is the loading indicator. It is written from the load
// command's goroutine, so it lives behind a pointer and a mutex.
type loadingState struct {
	mu      sync.Mutex
	visible bool
}

func (s *loadingState) SetLoading(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = visible
}

func (s *loadingState) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// ExplorerModel is the subregion map: two pickers, the map canvas, the
// list of drawn overlays and the popup of the selected one.
type ExplorerModel struct {
	ctx        context.Context
	session    *session.Session
	loading    *loadingState
	mapView    *components.MapView
	department components.Picker
	subregion  components.Picker
	table      table.Model
	spinner    spinner.Model
	focus      focusArea
	loaded     bool
	overlays   []*model.Overlay
	width      int
	height     int
}

type dataLoadedMsg struct {
	OK bool
}

func NewExplorerModel(ctx context.Context, loader features.Loader, logger *zap.Logger) ExplorerModel {
	mapView := components.NewMapView(40, 16)
	loading := &loadingState{}

	department := components.NewPicker("departamento", minPickRows)
	department.Focus()

	m := ExplorerModel{
		ctx:        ctx,
		session:    session.New(loader, loading, mapView, logger),
		loading:    loading,
		mapView:    mapView,
		department: department,
		subregion:  components.NewPicker("subregion", minPickRows),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Loading)),
		focus:      focusDepartment,
	}
	m.buildTable()
	return m
}

func (m ExplorerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m ExplorerModel) loadCmd() tea.Cmd {
	sess := m.session
	ctx := m.ctx
	return func() tea.Msg {
		return dataLoadedMsg{OK: sess.Load(ctx)}
	}
}

func (m ExplorerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil

	case spinner.TickMsg:
		if m.loaded {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case dataLoadedMsg:
		m.loaded = true
		if !msg.OK {
			return m, nil
		}
		opts := m.session.Options()
		m.department.SetOptions(opts.Departments)
		m.subregion.SetOptions(opts.Subregions)
		m.applyFilter()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.routeToPicker(msg)
}

func (m ExplorerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	searching := m.department.Searching() || m.subregion.Searching()

	if !searching {
		switch key {
		case "q", "esc":
			return m, tea.Quit
		case "tab":
			m.setFocus((m.focus + 1) % focusCount)
			return m, nil
		case "shift+tab":
			m.setFocus((m.focus + focusCount - 1) % focusCount)
			return m, nil
		case "+", "=":
			m.mapView.ZoomIn()
			return m, nil
		case "-":
			m.mapView.ZoomOut()
			return m, nil
		case "0":
			m.mapView.ZoomReset()
			return m, nil
		case "f":
			m.mapView.FitOverlays()
			return m, nil
		case "shift+up":
			m.mapView.Pan(1, 0)
			return m, nil
		case "shift+down":
			m.mapView.Pan(-1, 0)
			return m, nil
		case "shift+left":
			m.mapView.Pan(0, -1)
			return m, nil
		case "shift+right":
			m.mapView.Pan(0, 1)
			return m, nil
		}
	}

	// Filtering is unusable until the load finished.
	if !m.loaded {
		return m, nil
	}

	switch m.focus {
	case focusDepartment, focusSubregion:
		return m.routeToPicker(msg)
	case focusTable:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		m.syncSelection()
		return m, cmd
	case focusMap:
		switch key {
		case "up", "k":
			m.mapView.Pan(1, 0)
		case "down", "j":
			m.mapView.Pan(-1, 0)
		case "left", "h":
			m.mapView.Pan(0, -1)
		case "right", "l":
			m.mapView.Pan(0, 1)
		}
	}
	return m, nil
}

func (m ExplorerModel) routeToPicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var changed bool
	var cmd tea.Cmd
	switch m.focus {
	case focusDepartment:
		m.department, changed, cmd = m.department.Update(msg)
	case focusSubregion:
		m.subregion, changed, cmd = m.subregion.Update(msg)
	}
	if changed {
		m.applyFilter()
	}
	return m, cmd
}

func (m *ExplorerModel) setFocus(f focusArea) {
	m.focus = f
	m.department.Blur()
	m.subregion.Blur()
	m.table.Blur()
	switch f {
	case focusDepartment:
		m.department.Focus()
	case focusSubregion:
		m.subregion.Focus()
	case focusTable:
		m.table.Focus()
	}
	m.table.SetStyles(tableStyles(f == focusTable))
}

// Criteria returns the filter selected in the pickers.
func (m ExplorerModel) Criteria() model.Criteria {
	return model.Criteria{
		Department: m.department.Value(),
		Subregion:  m.subregion.Value(),
	}
}

// Overlays returns the overlays currently drawn.
func (m ExplorerModel) Overlays() []*model.Overlay { return m.overlays }

func (m *ExplorerModel) applyFilter() {
	m.overlays = m.session.Apply(m.Criteria())
	m.mapView.FitOverlays()
	m.buildTable()
	m.syncSelection()
}

func (m *ExplorerModel) syncSelection() {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.overlays) {
		m.mapView.SetSelected(nil)
		return
	}
	m.mapView.SetSelected(m.overlays[cursor])
}

func (m *ExplorerModel) buildTable() {
	nameW := 26
	if m.width > 100 {
		nameW += (m.width - 100) / 2
	}
	columns := []table.Column{
		{Title: "Subregión", Width: nameW},
		{Title: "Cód. Subregión", Width: 14},
		{Title: "Depto", Width: 6},
		{Title: "Anillos", Width: 8},
		{Title: "Vértices", Width: 9},
	}

	rows := make([]table.Row, len(m.overlays))
	for i, o := range m.overlays {
		rows[i] = table.Row{
			o.Popup.SubregionName,
			o.Popup.SubregionCode,
			o.Popup.DepartmentCode,
			fmt.Sprintf("%d", len(o.Rings)),
			fmt.Sprintf("%d", o.Vertices()),
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(m.focus == focusTable),
		table.WithHeight(tableRows),
	)
	t.SetStyles(tableStyles(m.focus == focusTable))
	m.table = t
}

func tableStyles(focused bool) table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true)
	if focused {
		s.Header = s.Header.Foreground(styles.Secondary)
		s.Selected = s.Selected.
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(styles.Primary).
			Bold(true)
	} else {
		s.Header = s.Header.Foreground(styles.Muted)
		s.Selected = s.Selected.
			Foreground(styles.Text).
			Background(lipgloss.Color("#333333")).
			Bold(false)
	}
	return s
}

// mapRows is the number of text rows available to the map canvas.
func (m ExplorerModel) mapRows() int {
	// title, status bar, table (header + rows), panel borders
	h := m.height - 2 - 2 - (tableRows + 2) - 2
	if h < minMapRows {
		h = minMapRows
	}
	return h
}

func (m *ExplorerModel) updateLayout() {
	if m.width <= 0 {
		return
	}
	mapW := m.width - leftWidth - 6
	if mapW < 10 {
		mapW = 10
	}
	rows := m.mapRows()
	m.mapView.SetSize(mapW, rows)

	// Three bordered panels on the left: two pickers and the popup.
	pick := (rows + 2 - 3*2 - popupLines - 2) / 2
	if pick < minPickRows {
		pick = minPickRows
	}
	m.department.SetHeight(pick)
	m.subregion.SetHeight(pick)
	m.buildTable()
	m.syncSelection()
}

func (m ExplorerModel) View() string {
	var b strings.Builder

	title := styles.Title.Render("Subregiones de Colombia")
	if m.loaded {
		title += lipgloss.NewStyle().Foreground(styles.Muted).
			Render(fmt.Sprintf("  %d polígonos", len(m.overlays)))
	}
	if m.loading.Visible() {
		title += "  " + m.spinner.View() + styles.Loading.Render(" Cargando...")
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	panel := func(focused bool) lipgloss.Style {
		if focused {
			return styles.FocusedPanel
		}
		return styles.Panel
	}

	innerW := leftWidth - 4
	left := lipgloss.JoinVertical(lipgloss.Left,
		panel(m.focus == focusDepartment).Width(leftWidth-2).Render(m.department.View(innerW)),
		panel(m.focus == focusSubregion).Width(leftWidth-2).Render(m.subregion.View(innerW)),
		styles.Panel.Width(leftWidth-2).Render(m.viewPopup()),
	)
	right := panel(m.focus == focusMap).Render(m.mapView.View())

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")

	var statusText string
	switch {
	case m.department.Searching() || m.subregion.Searching():
		statusText = "type to search • ↑↓ move • enter/esc done"
	case m.focus == focusTable:
		statusText = "↑↓ select subregion • tab next • +/- zoom • f fit • q quit"
	case m.focus == focusMap:
		statusText = "↑↓←→ pan • +/- zoom • 0 reset • f fit • tab next • q quit"
		if label := m.centerLabel(); label != "" {
			statusText = "centro: " + label + " • " + statusText
		}
	default:
		statusText = "↑↓ choose • / search • tab next • +/- zoom • f fit • q quit"
	}
	b.WriteString(styles.StatusBar.Render(statusText))

	return b.String()
}

// centerLabel names the subregions under the centre of the map viewport.
// The store is written by the load command until dataLoadedMsg arrives, so
// it is not read before then.
func (m ExplorerModel) centerLabel() string {
	if !m.loaded {
		return ""
	}
	center := m.mapView.Viewport().Center()
	fs := m.session.Store().Features()
	var names []string
	for _, i := range geo.Locate(fs, center.Lat(), center.Lon()) {
		a := fs[i].Attributes
		names = append(names, fmt.Sprintf("%s (%s)", a.SubregionName, a.DepartmentCode))
	}
	return strings.Join(names, ", ")
}

func (m ExplorerModel) viewPopup() string {
	sel := m.mapView.Selected()
	if sel == nil {
		return lipgloss.NewStyle().Foreground(styles.Muted).Italic(true).
			Render("Seleccione una subregión\nen la tabla")
	}
	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(styles.Warning).Render(sel.Popup.SubregionName))
	rows := [][2]string{
		{"Subregión:", sel.Popup.SubregionName},
		{"Cód. Subregión:", sel.Popup.SubregionCode},
		{"Cód. Departamento:", sel.Popup.DepartmentCode},
	}
	for _, r := range rows {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Width(19).Render(r[0]))
		sb.WriteString(styles.Value.Render(r[1]))
	}
	return sb.String()
}
