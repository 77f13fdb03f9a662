package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series is a named percentage series in the range 0..100.
type Series struct {
	Name   string
	Values []float64
}

const (
	chartDefaultHeight = 8
	chartMinWidth      = 10
	chartFallbackWidth = 80
	chartGutter        = "100% ┤"
	ansiReset          = "\x1b[0m"
)

var seriesColors = []string{"\x1b[36m", "\x1b[35m", "\x1b[33m", "\x1b[32m"}

// ChartWidthFor returns the plot area width that fits in totalWidth columns.
func ChartWidthFor(totalWidth int) int {
	w := totalWidth - runewidth.StringWidth(chartGutter)
	if w < chartMinWidth {
		return chartMinWidth
	}
	return w
}

// Chart draws series on a shared 0..100 braille canvas. A width of 0 fits
// the terminal; color is used when forced or when w is a terminal.
func Chart(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	var drawn []Series
	for _, s := range series {
		if len(s.Values) > 0 {
			drawn = append(drawn, s)
		}
	}
	if len(drawn) == 0 {
		return nil
	}
	if width <= 0 {
		width = ChartWidthFor(stdoutWidth())
	}
	if height <= 0 {
		height = chartDefaultHeight
	}

	cv := newCanvas(width, height)
	for i, s := range drawn {
		points := bucket(s.Values, width*2)
		prevX, prevY := -1, -1
		for x, v := range points {
			y := cv.dotRow(v)
			if prevX < 0 {
				cv.set(x, y, i)
			} else {
				cv.line(prevX, prevY, x, y, i)
			}
			prevX, prevY = x, y
		}
	}

	color := wantColor(w, forceColor)
	var b strings.Builder
	if title != "" {
		b.WriteString(title)
		b.WriteByte('\n')
	}
	for row := 0; row < height; row++ {
		b.WriteString(gutterLabel(row, height))
		for col := 0; col < width; col++ {
			mask, owner := cv.cell(col, row)
			r := rune(0x2800 + int(mask))
			if color && owner >= 0 {
				b.WriteString(seriesColors[owner%len(seriesColors)])
				b.WriteRune(r)
				b.WriteString(ansiReset)
				continue
			}
			b.WriteRune(r)
		}
		b.WriteByte('\n')
	}
	legend := make([]string, 0, len(drawn))
	for i, s := range drawn {
		last := s.Values[len(s.Values)-1]
		item := fmt.Sprintf("%s %.1f%%", s.Name, last)
		if color {
			item = seriesColors[i%len(seriesColors)] + item + ansiReset
		}
		legend = append(legend, item)
	}
	b.WriteString(strings.Repeat(" ", runewidth.StringWidth(chartGutter)))
	b.WriteString(strings.Join(legend, "   "))
	b.WriteString("\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func gutterLabel(row, height int) string {
	label := ""
	switch {
	case row == 0:
		label = "100%"
	case row == height-1:
		label = "0%"
	case row == height/2:
		label = "50%"
	}
	return runewidth.FillLeft(label, 4) + " ┤"
}

// canvas is a grid of braille cells, 2x4 dots each.
type canvas struct {
	width, height int
	masks         [][]uint8
	owners        [][]int
}

func newCanvas(width, height int) *canvas {
	cv := &canvas{width: width, height: height}
	cv.masks = make([][]uint8, height)
	cv.owners = make([][]int, height)
	for y := range cv.masks {
		cv.masks[y] = make([]uint8, width)
		cv.owners[y] = make([]int, width)
		for x := range cv.owners[y] {
			cv.owners[y][x] = -1
		}
	}
	return cv
}

func (cv *canvas) dotRow(v float64) int {
	rows := cv.height * 4
	v = math.Max(0, math.Min(100, v))
	return int(math.Round((1 - v/100) * float64(rows-1)))
}

var dotBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

func (cv *canvas) set(x, y, owner int) {
	cx, cy := x/2, y/4
	if x < 0 || y < 0 || cx >= cv.width || cy >= cv.height {
		return
	}
	cv.masks[cy][cx] |= dotBits[y%4][x%2]
	if cv.owners[cy][cx] < 0 {
		cv.owners[cy][cx] = owner
	}
}

// line plots a Bresenham segment between two dots.
func (cv *canvas) line(x0, y0, x1, y1, owner int) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		cv.set(x0, y0, owner)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (cv *canvas) cell(x, y int) (uint8, int) {
	return cv.masks[y][x], cv.owners[y][x]
}

// bucket stretches or averages values onto n horizontal dots.
func bucket(values []float64, n int) []float64 {
	if n <= 0 || len(values) == 0 {
		return nil
	}
	out := make([]float64, n)
	if len(values) == 1 {
		for i := range out {
			out[i] = values[0]
		}
		return out
	}
	if len(values) >= n {
		for i := 0; i < n; i++ {
			lo := i * len(values) / n
			hi := (i + 1) * len(values) / n
			if hi <= lo {
				hi = lo + 1
			}
			var sum float64
			for _, v := range values[lo:hi] {
				sum += v
			}
			out[i] = sum / float64(hi-lo)
		}
		return out
	}
	for i := 0; i < n; i++ {
		pos := float64(i) * float64(len(values)-1) / float64(max(n-1, 1))
		lo := int(pos)
		if lo >= len(values)-1 {
			out[i] = values[len(values)-1]
			continue
		}
		frac := pos - float64(lo)
		out[i] = values[lo]*(1-frac) + values[lo+1]*frac
	}
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func stdoutWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return chartFallbackWidth
	}
	return width
}

func wantColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
