package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
)

// Chart dimensions in pixels.
const (
	chartWidth  = 1024
	chartHeight = 512
)

// HistogramChart plots a 256-bin intensity histogram with the threshold
// drawn as a vertical line, and returns it as a base64 PNG.
//
// Parameters:
//   - hist: Pixel counts per intensity.
//   - threshold: Cut to mark, in 0..255. Negative values draw no line.
func HistogramChart(hist [256]int, threshold int) (*ImageResult, error) {
	xvalues := make([]float64, len(hist))
	yvalues := make([]float64, len(hist))
	peak := 1.0
	for i, n := range hist {
		xvalues[i] = float64(i)
		yvalues[i] = float64(n)
		if float64(n) > peak {
			peak = float64(n)
		}
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name: "pixels",
			Style: chart.Style{
				StrokeColor: chart.ColorBlue,
				FillColor:   chart.ColorAlternateBlue,
			},
			XValues: xvalues,
			YValues: yvalues,
		},
	}
	if threshold >= 0 && threshold <= 255 {
		series = append(series, chart.ContinuousSeries{
			Name: fmt.Sprintf("threshold %d", threshold),
			Style: chart.Style{
				StrokeColor:     chart.ColorRed,
				StrokeWidth:     2,
				StrokeDashArray: []float64{5.0, 5.0},
			},
			XValues: []float64{float64(threshold), float64(threshold)},
			YValues: []float64{0, peak},
		})
	}

	graph := chart.Chart{
		Title:  "Intensity histogram",
		Width:  chartWidth,
		Height: chartHeight,
		XAxis: chart.XAxis{
			Name: "Intensity",
			Range: &chart.ContinuousRange{
				Min: 0.0,
				Max: 255.0,
			},
		},
		YAxis: chart.YAxis{
			Name: "Pixels",
			Range: &chart.ContinuousRange{
				Min: 0.0,
				Max: peak,
			},
		},
		Series: series,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render histogram: %w", err)
	}

	return &ImageResult{
		Width:       chartWidth,
		Height:      chartHeight,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
