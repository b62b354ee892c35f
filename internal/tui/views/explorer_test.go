package views

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/subregiones/internal/model"
)

type stubLoader struct {
	features []model.Feature
	err      error
}

func (l stubLoader) Query(context.Context) ([]model.Feature, error) {
	return l.features, l.err
}

func ring(lon, lat float64) [][]model.Coord {
	return [][]model.Coord{{{lon, lat}, {lon + 0.5, lat}, {lon + 0.5, lat + 0.5}, {lon, lat + 0.5}, {lon, lat}}}
}

func fixture() []model.Feature {
	return []model.Feature{
		{
			Attributes: model.Attributes{DepartmentCode: "05", SubregionName: "Urabá", SubregionCode: "0501"},
			Geometry:   &model.Geometry{Rings: ring(-76.5, 7.5)},
		},
		{
			Attributes: model.Attributes{DepartmentCode: "05", SubregionName: "Norte", SubregionCode: "0502"},
			Geometry:   &model.Geometry{Rings: ring(-75.5, 7.0)},
		},
		{
			Attributes: model.Attributes{DepartmentCode: "08", SubregionName: "Costa", SubregionCode: "0801"},
			Geometry:   &model.Geometry{Rings: ring(-74.9, 10.8)},
		},
	}
}

func update(t *testing.T, m ExplorerModel, msg tea.Msg) ExplorerModel {
	t.Helper()
	next, _ := m.Update(msg)
	em, ok := next.(ExplorerModel)
	require.True(t, ok)
	return em
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, loader stubLoader) ExplorerModel {
	t.Helper()
	m := NewExplorerModel(context.Background(), loader, nil)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	msg := m.loadCmd()()
	return update(t, m, msg)
}

func TestExplorer_LoadPopulatesPickersAndDrawsAll(t *testing.T) {
	m := loaded(t, stubLoader{features: fixture()})

	assert.True(t, m.loaded)
	assert.False(t, m.loading.Visible())
	assert.Equal(t, []string{"05", "08"}, m.department.Options())
	assert.Equal(t, []string{"Urabá", "Norte", "Costa"}, m.subregion.Options())
	assert.Len(t, m.Overlays(), 3)
	assert.Len(t, m.mapView.Overlays(), 3)
	assert.Equal(t, model.Criteria{}, m.Criteria())
	require.NotNil(t, m.mapView.Selected())
	assert.Equal(t, "Urabá", m.mapView.Selected().Popup.SubregionName)
}

func TestExplorer_PickerMoveReappliesFilter(t *testing.T) {
	m := loaded(t, stubLoader{features: fixture()})

	m = update(t, m, key("down"))
	assert.Equal(t, model.Criteria{Department: "05"}, m.Criteria())
	assert.Len(t, m.Overlays(), 2)
	assert.Len(t, m.mapView.Overlays(), 2)

	m = update(t, m, key("tab"))
	assert.Equal(t, focusSubregion, m.focus)
	m = update(t, m, key("down"))
	m = update(t, m, key("down"))
	assert.Equal(t, model.Criteria{Department: "05", Subregion: "Norte"}, m.Criteria())
	require.Len(t, m.Overlays(), 1)
	assert.Equal(t, "0502", m.Overlays()[0].Popup.SubregionCode)

	m = update(t, m, key("down"))
	assert.Equal(t, "Costa", m.Criteria().Subregion)
	assert.Empty(t, m.Overlays())
	assert.Empty(t, m.mapView.Overlays())
	assert.Nil(t, m.mapView.Selected())
}

func TestExplorer_TableSelectsOverlay(t *testing.T) {
	m := loaded(t, stubLoader{features: fixture()})

	m = update(t, m, key("tab"))
	m = update(t, m, key("tab"))
	assert.Equal(t, focusTable, m.focus)

	m = update(t, m, key("down"))
	require.NotNil(t, m.mapView.Selected())
	assert.Equal(t, "Norte", m.mapView.Selected().Popup.SubregionName)
	assert.Contains(t, m.View(), "0502")
}

func TestExplorer_LoadFailureLeavesMapEmpty(t *testing.T) {
	m := loaded(t, stubLoader{err: errors.New("boom")})

	assert.True(t, m.loaded)
	assert.False(t, m.loading.Visible())
	assert.Empty(t, m.department.Options())
	assert.Empty(t, m.subregion.Options())
	assert.Empty(t, m.Overlays())
	assert.Empty(t, m.mapView.Overlays())
}

func TestExplorer_KeysIgnoredBeforeLoad(t *testing.T) {
	m := NewExplorerModel(context.Background(), stubLoader{features: fixture()}, nil)

	m = update(t, m, key("down"))
	assert.Equal(t, model.Criteria{}, m.Criteria())
	assert.Empty(t, m.Overlays())

	m = update(t, m, key("tab"))
	assert.Equal(t, focusSubregion, m.focus)
}

func TestExplorer_QuitKeys(t *testing.T) {
	m := loaded(t, stubLoader{features: fixture()})

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestExplorer_MapFocusNamesCenterSubregion(t *testing.T) {
	m := loaded(t, stubLoader{features: fixture()})

	// Narrow the filter to one polygon so fitting centres the map on it.
	m = update(t, m, key("tab"))
	for range 3 {
		m = update(t, m, key("down"))
	}
	require.Equal(t, "Costa", m.Criteria().Subregion)

	m = update(t, m, key("tab"))
	m = update(t, m, key("tab"))
	assert.Equal(t, focusMap, m.focus)
	assert.Equal(t, "Costa (08)", m.centerLabel())
	assert.Contains(t, m.View(), "centro: Costa (08)")
}

func TestExplorer_MapFocusWhileLoadingSkipsStore(t *testing.T) {
	m := NewExplorerModel(context.Background(), stubLoader{features: fixture()}, nil)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	for range 3 {
		m = update(t, m, key("tab"))
	}
	require.Equal(t, focusMap, m.focus)

	done := make(chan tea.Msg)
	load := m.loadCmd()
	go func() { done <- load() }()

	// View runs concurrently with the load and must not read the store.
	for range 50 {
		assert.Empty(t, m.centerLabel())
		assert.NotContains(t, m.View(), "centro:")
	}

	m = update(t, m, <-done)
	assert.True(t, m.loaded)
	assert.Len(t, m.Overlays(), 3)
}
