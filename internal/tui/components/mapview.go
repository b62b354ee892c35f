package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"

	"github.com/rendis/subregiones/internal/model"
	"github.com/rendis/subregiones/internal/tui/styles"
)

// MapView draws subregion polygons as Braille line art. It is the canvas the
// renderer adds overlays to and removes them from.
type MapView struct {
	width    int
	height   int
	overlays []*model.Overlay
	selected *model.Overlay
	// Viewport bounds
	minLat, maxLat float64
	minLng, maxLng float64
	// Base bounds (for zoom reference)
	basMinLat, basMaxLat float64
	basMinLng, basMaxLng float64
	zoomLevel            float64 // 1.0 = no zoom, >1 = zoomed in
	panLat, panLng       float64 // pan offset in degrees
}

func NewMapView(width, height int) *MapView {
	m := &MapView{
		width:     width,
		height:    height,
		zoomLevel: 1.0,
	}
	m.FitOverlays()
	return m
}

func (m *MapView) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *MapView) Size() (int, int) { return m.width, m.height }

func (m *MapView) AddOverlay(o *model.Overlay) {
	m.overlays = append(m.overlays, o)
}

func (m *MapView) RemoveOverlay(o *model.Overlay) {
	for i, cur := range m.overlays {
		if cur == o {
			m.overlays = append(m.overlays[:i], m.overlays[i+1:]...)
			break
		}
	}
	if m.selected == o {
		m.selected = nil
	}
}

// Overlays returns the overlays currently drawn.
func (m *MapView) Overlays() []*model.Overlay { return m.overlays }

func (m *MapView) SetSelected(o *model.Overlay) {
	m.selected = o
}

func (m *MapView) Selected() *model.Overlay { return m.selected }

func (m *MapView) ZoomIn() {
	m.zoomLevel *= 1.5
	if m.zoomLevel > 20 {
		m.zoomLevel = 20
	}
	m.applyZoom()
}

func (m *MapView) ZoomOut() {
	m.zoomLevel /= 1.5
	if m.zoomLevel < 0.5 {
		m.zoomLevel = 0.5
	}
	m.applyZoom()
}

func (m *MapView) ZoomReset() {
	m.zoomLevel = 1.0
	m.panLat = 0
	m.panLng = 0
	m.applyZoom()
}

func (m *MapView) Pan(dLat, dLng float64) {
	latRange := m.basMaxLat - m.basMinLat
	lngRange := m.basMaxLng - m.basMinLng
	m.panLat += dLat * latRange * 0.1 / m.zoomLevel
	m.panLng += dLng * lngRange * 0.1 / m.zoomLevel
	m.applyZoom()
}

// Viewport returns the visible bounds as lon/lat.
func (m *MapView) Viewport() orb.Bound {
	return orb.Bound{
		Min: orb.Point{m.minLng, m.minLat},
		Max: orb.Point{m.maxLng, m.maxLat},
	}
}

func (m *MapView) applyZoom() {
	centerLat := (m.basMinLat+m.basMaxLat)/2 + m.panLat
	centerLng := (m.basMinLng+m.basMaxLng)/2 + m.panLng
	halfLat := (m.basMaxLat - m.basMinLat) / 2 / m.zoomLevel
	halfLng := (m.basMaxLng - m.basMinLng) / 2 / m.zoomLevel
	m.minLat = centerLat - halfLat
	m.maxLat = centerLat + halfLat
	m.minLng = centerLng - halfLng
	m.maxLng = centerLng + halfLng
}

// FitOverlays resets zoom and pan and frames the drawn overlays. With
// nothing drawn it frames the default map centre.
func (m *MapView) FitOverlays() {
	var bound orb.Bound
	found := false
	for _, o := range m.overlays {
		if o.Bound.IsEmpty() {
			continue
		}
		if !found {
			bound = o.Bound
			found = true
			continue
		}
		bound = bound.Union(o.Bound)
	}

	if !found {
		c := model.DefaultMapOptions.Center
		// Roughly the extent of Colombia around the default centre.
		bound = orb.Bound{
			Min: orb.Point{c.Lng - 8, c.Lat - 9},
			Max: orb.Point{c.Lng + 8, c.Lat + 9},
		}
	}

	m.basMinLat = bound.Min.Lat()
	m.basMaxLat = bound.Max.Lat()
	m.basMinLng = bound.Min.Lon()
	m.basMaxLng = bound.Max.Lon()

	// Add padding
	latPad := (m.basMaxLat - m.basMinLat) * 0.05
	lngPad := (m.basMaxLng - m.basMinLng) * 0.05
	if latPad == 0 {
		latPad = 0.01
	}
	if lngPad == 0 {
		lngPad = 0.01
	}
	m.basMinLat -= latPad
	m.basMaxLat += latPad
	m.basMinLng -= lngPad
	m.basMaxLng += lngPad

	m.zoomLevel = 1.0
	m.panLat = 0
	m.panLng = 0
	m.applyZoom()
}

// Braille character encoding:
// Each braille char is a 2x4 dot grid.
// Dot positions:  0 3
//
//	1 4
//	2 5
//	6 7
//
// Unicode: 0x2800 + sum of raised dot bits
var brailleDots = [8]rune{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80}

var dotPositions = [8][2]int{
	{0, 0}, {1, 0}, {2, 0}, {0, 1},
	{1, 1}, {2, 1}, {3, 0}, {3, 1},
}

// projection maps geographic coordinates to dot coordinates.
type projection struct {
	minLat, maxLat, minLng, maxLng float64
	offsetX, offsetY               int
	effectiveW, effectiveH         int
	degPerDot                      float64
}

func (p projection) toDot(lat, lng float64) (int, int) {
	x := p.offsetX + int((lng-p.minLng)/(p.maxLng-p.minLng)*float64(p.effectiveW-1))
	y := p.offsetY + int((p.maxLat-lat)/(p.maxLat-p.minLat)*float64(p.effectiveH-1))
	return x, y
}

func (m *MapView) project(dotW, dotH int) (projection, bool) {
	latRange := m.maxLat - m.minLat
	lngRange := m.maxLng - m.minLng
	if latRange <= 0 || lngRange <= 0 {
		return projection{}, false
	}

	// Braille dots are roughly square on screen; correct for the shorter
	// degree of longitude away from the equator.
	avgLat := (m.minLat + m.maxLat) / 2
	cosLat := math.Cos(avgLat * math.Pi / 180)
	geoAspect := lngRange * cosLat / latRange
	dotAspect := float64(dotW) / float64(dotH)

	p := projection{
		minLat: m.minLat, maxLat: m.maxLat,
		minLng: m.minLng, maxLng: m.maxLng,
		effectiveW: dotW, effectiveH: dotH,
	}
	if geoAspect < dotAspect {
		p.effectiveW = int(float64(dotH) * geoAspect)
		if p.effectiveW < 4 {
			p.effectiveW = 4
		}
		p.offsetX = (dotW - p.effectiveW) / 2
	} else {
		p.effectiveH = int(float64(dotW) / geoAspect)
		if p.effectiveH < 4 {
			p.effectiveH = 4
		}
		p.offsetY = (dotH - p.effectiveH) / 2
	}
	p.degPerDot = latRange / float64(p.effectiveH)
	return p, true
}

// simplifyRing drops vertices closer than tolerance degrees to the line
// through their neighbours.
func simplifyRing(ring []model.LatLng, tolerance float64) orb.LineString {
	ls := make(orb.LineString, len(ring))
	for i, p := range ring {
		ls[i] = orb.Point{p.Lng, p.Lat}
	}
	if len(ls) <= 4 || tolerance <= 0 {
		return ls
	}
	s, ok := simplify.DouglasPeucker(tolerance).Simplify(ls).(orb.LineString)
	if !ok || len(s) < 2 {
		return ls
	}
	return s
}

func (m *MapView) drawOverlay(grid [][]bool, o *model.Overlay, p projection, dotW, dotH int) {
	for _, ring := range o.Rings {
		ls := simplifyRing(ring, p.degPerDot)
		if len(ls) == 0 {
			continue
		}
		if len(ls) == 1 {
			x, y := p.toDot(ls[0].Lat(), ls[0].Lon())
			if x >= 0 && x < dotW && y >= 0 && y < dotH {
				grid[y][x] = true
			}
			continue
		}
		for i := range ls {
			next := (i + 1) % len(ls)
			x0, y0 := p.toDot(ls[i].Lat(), ls[i].Lon())
			x1, y1 := p.toDot(ls[next].Lat(), ls[next].Lon())
			if offscreen(x0, y0, x1, y1, dotW, dotH) {
				continue
			}
			drawLine(grid, x0, y0, x1, y1, dotW, dotH)
		}
	}
}

// offscreen reports whether a segment lies entirely beyond one edge.
func offscreen(x0, y0, x1, y1, w, h int) bool {
	return (x0 < 0 && x1 < 0) || (y0 < 0 && y1 < 0) ||
		(x0 >= w && x1 >= w) || (y0 >= h && y1 >= h)
}

// Dots returns the raised-dot grids for the plain and the selected overlays.
func (m *MapView) Dots() (base, highlight [][]bool) {
	dotW := m.width * 2
	dotH := m.height * 4
	base = newGrid(dotW, dotH)
	highlight = newGrid(dotW, dotH)

	p, ok := m.project(dotW, dotH)
	if !ok {
		return base, highlight
	}
	for _, o := range m.overlays {
		if o == m.selected {
			continue
		}
		m.drawOverlay(base, o, p, dotW, dotH)
	}
	if m.selected != nil {
		m.drawOverlay(highlight, m.selected, p, dotW, dotH)
	}
	return base, highlight
}

func newGrid(w, h int) [][]bool {
	g := make([][]bool, h)
	for i := range g {
		g[i] = make([]bool, w)
	}
	return g
}

func (m *MapView) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	cols := m.width
	rows := m.height
	base, highlight := m.Dots()
	dotH := len(base)
	dotW := cols * 2

	baseStyle := lipgloss.NewStyle().Foreground(styles.Secondary)
	selStyle := lipgloss.NewStyle().Foreground(styles.Warning).Bold(true)

	var sb strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			var baseVal rune = 0x2800
			var selVal rune = 0x2800

			for dot := 0; dot < 8; dot++ {
				dy := row*4 + dotPositions[dot][0]
				dx := col*2 + dotPositions[dot][1]
				if dy < dotH && dx < dotW {
					if base[dy][dx] {
						baseVal |= brailleDots[dot]
					}
					if highlight[dy][dx] {
						selVal |= brailleDots[dot]
					}
				}
			}

			if selVal != 0x2800 {
				sb.WriteString(selStyle.Render(string(selVal)))
			} else if baseVal != 0x2800 {
				sb.WriteString(baseStyle.Render(string(baseVal)))
			} else {
				sb.WriteRune(' ')
			}
		}
		if row < rows-1 {
			sb.WriteRune('\n')
		}
	}

	return sb.String()
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(grid [][]bool, x0, y0, x1, y1, maxW, maxH int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 >= x1 {
		sx = -1
	}
	sy := 1
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if x0 >= 0 && x0 < maxW && y0 >= 0 && y0 < maxH {
			grid[y0][x0] = true
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
