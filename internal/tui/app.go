package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rendis/subregiones/internal/engine/features"
	"github.com/rendis/subregiones/internal/tui/views"
)

// App is the root bubbletea model.
type App struct {
	width    int
	height   int
	explorer views.ExplorerModel
}

func NewApp(ctx context.Context, loader features.Loader, logger *zap.Logger) App {
	return App{
		explorer: views.NewExplorerModel(ctx, loader, logger),
	}
}

func (a App) Init() tea.Cmd {
	return a.explorer.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
	}

	m, cmd := a.explorer.Update(msg)
	a.explorer = m.(views.ExplorerModel)
	return a, cmd
}

func (a App) View() string {
	return lipgloss.Place(
		a.width, a.height,
		lipgloss.Left, lipgloss.Top,
		a.explorer.View(),
	)
}

// Run starts the TUI. The context is cancelled when the program exits, which
// aborts a fetch still in flight.
func Run(ctx context.Context, loader features.Loader, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewApp(ctx, loader, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
