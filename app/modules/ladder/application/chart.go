package ladderservice

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	ladderdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette colours a rendered chart.
type ChartPalette struct {
	Background  drawing.Color
	PrimaryLine drawing.Color
	AccentLine  drawing.Color
	TextColor   drawing.Color
}

// DefaultChartPalette is a light theme.
var DefaultChartPalette = ChartPalette{
	Background:  drawing.ColorWhite,
	PrimaryLine: drawing.ColorFromHex("1f6f5c"),
	AccentLine:  drawing.ColorFromHex("d4a017"),
	TextColor:   drawing.ColorFromHex("333333"),
}

// HistoryChart renders a player's skill history as a PNG.
func (s *LadderService) HistoryChart(ctx context.Context, name, player string) ([]byte, error) {
	return withTelemetry(s, ctx, "HistoryChart", name, func(ctx context.Context) ([]byte, error) {
		ladder, err := s.getLadder(ctx, nil, name)
		if err != nil {
			return nil, err
		}
		history, err := s.history(ctx, name, player)
		if err != nil {
			return nil, err
		}
		return RenderHistoryChart(strings.TrimSpace(player), ladder.Params.Prior().Score(), history, DefaultChartPalette)
	})
}

// RenderHistoryChart draws the conservative score after each match, with the
// prior at match 0. The x axis counts the player's matches rather than
// timestamps, which may repeat.
func RenderHistoryChart(player string, prior float64, history []ladderdomain.HistoryEntry, palette ChartPalette) ([]byte, error) {
	if len(history) == 0 {
		return renderNoDataPlaceholder(palette)
	}

	xValues := make([]float64, len(history)+1)
	yValues := make([]float64, len(history)+1)
	upper := make([]float64, len(history)+1)
	xValues[0], yValues[0], upper[0] = 0, prior, prior

	lo, hi := prior, prior
	for i, entry := range history {
		xValues[i+1] = float64(i + 1)
		yValues[i+1] = entry.Skill()
		upper[i+1] = entry.Mu
		lo = min(lo, yValues[i+1])
		hi = max(hi, upper[i+1])
	}

	skill := chart.ContinuousSeries{
		Name:    "Skill",
		XValues: xValues,
		YValues: yValues,
		Style: chart.Style{
			StrokeColor: palette.PrimaryLine,
			StrokeWidth: 2,
			DotWidth:    3,
			DotColor:    palette.AccentLine,
		},
	}
	mean := chart.ContinuousSeries{
		Name:    "Mean",
		XValues: xValues,
		YValues: upper,
		Style: chart.Style{
			StrokeColor:     palette.AccentLine,
			StrokeWidth:     1,
			StrokeDashArray: []float64{4, 4},
		},
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s (%d matches)", player, len(history)),
		Width:  800,
		Height: 400,
		TitleStyle: chart.Style{
			FontColor: palette.TextColor,
		},
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{
			Name:           "Match",
			ValueFormatter: chart.IntValueFormatter,
			Style:          chart.Style{FontColor: palette.TextColor},
			Range:          &chart.ContinuousRange{Min: 0, Max: max(1, float64(len(history)))},
		},
		YAxis: chart.YAxis{
			Name:  "Skill",
			Style: chart.Style{FontColor: palette.TextColor},
			Range: &chart.ContinuousRange{Min: lo - 1, Max: hi + 1},
		},
		Series: []chart.Series{mean, skill},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render history chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// renderNoDataPlaceholder draws straight onto a renderer; a chart without
// series refuses to render.
func renderNoDataPlaceholder(palette ChartPalette) ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "No matches yet"
	)

	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, err
	}

	r.SetFillColor(palette.Background)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.Close()
	r.Fill()

	r.SetFont(font)
	r.SetFontColor(palette.TextColor)
	r.SetFontSize(12.0)
	tb := r.MeasureText(msg)
	r.Text(msg, (width-tb.Width())/2, (height+tb.Height())/2)

	buffer := bytes.NewBuffer([]byte{})
	if err := r.Save(buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
