package render

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"math"
)

const (
	svgMarginLeft   = 50.0
	svgMarginRight  = 20.0
	svgMarginTop    = 50.0
	svgMarginBottom = 40.0
)

// WriteSVG writes fig as a standalone SVG document of the given size.
func WriteSVG(w io.Writer, fig *Figure, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid SVG size %dx%d", width, height)
	}
	bw := bufio.NewWriter(w)

	plotW := float64(width) - svgMarginLeft - svgMarginRight
	plotH := float64(height) - svgMarginTop - svgMarginBottom
	yMax := fig.PeakDensity * 1.1
	if yMax == 0 {
		yMax = 1
	}
	px := func(x float64) float64 {
		return svgMarginLeft + (x-fig.Min)/(fig.Max-fig.Min)*plotW
	}
	py := func(y float64) float64 {
		return svgMarginTop + plotH - y/yMax*plotH
	}

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="12">`+"\n",
		width, height, width, height)
	fmt.Fprintf(bw, `<rect width="%d" height="%d" fill="white"/>`+"\n", width, height)
	fmt.Fprintf(bw, `<text x="%d" y="20" text-anchor="middle" font-size="15">%s</text>`+"\n", width/2, html.EscapeString(fig.Title))
	fmt.Fprintf(bw, `<text x="%d" y="38" text-anchor="middle">%s</text>`+"\n", width/2, html.EscapeString(fig.Subtitle))

	// Rejection regions under the curve.
	for _, r := range fig.Regions {
		lo, hi, ok := fig.clip(r)
		if !ok {
			continue
		}
		fmt.Fprintf(bw, `<path fill="red" fill-opacity="0.2" d="M%.2f,%.2f`, px(lo), py(0))
		for _, p := range fig.Curve {
			if p.X >= lo && p.X <= hi {
				fmt.Fprintf(bw, " L%.2f,%.2f", px(p.X), py(p.Y))
			}
		}
		fmt.Fprintf(bw, ` L%.2f,%.2f Z"/>`+"\n", px(hi), py(0))
	}

	// Density curve.
	fmt.Fprint(bw, `<polyline fill="none" stroke="steelblue" stroke-width="2" points="`)
	for i, p := range fig.Curve {
		if i > 0 {
			bw.WriteByte(' ')
		}
		fmt.Fprintf(bw, "%.2f,%.2f", px(p.X), py(p.Y))
	}
	fmt.Fprint(bw, `"/>`+"\n")

	// Axes.
	fmt.Fprintf(bw, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="black"/>`+"\n",
		svgMarginLeft, py(0), svgMarginLeft+plotW, py(0))
	for tick := math.Ceil(fig.Min); tick <= fig.Max; tick++ {
		fmt.Fprintf(bw, `<text x="%.2f" y="%.2f" text-anchor="middle">%g</text>`+"\n", px(tick), py(0)+15, tick)
	}
	fmt.Fprintf(bw, `<text x="%.2f" y="%d" text-anchor="middle">%s</text>`+"\n",
		svgMarginLeft+plotW/2, height-5, html.EscapeString(fig.XLabel))

	// Observed statistic.
	if fig.Statistic >= fig.Min && fig.Statistic <= fig.Max {
		x := px(fig.Statistic)
		fmt.Fprintf(bw, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="blue" stroke-dasharray="6,4"/>`+"\n",
			x, svgMarginTop, x, py(0))
	}

	// Legend.
	legend := []struct{ color, label string }{
		{"steelblue", fig.CurveLabel},
		{"red", fig.RegionLabel},
		{"blue", fig.StatLabel},
	}
	for i, l := range legend {
		y := svgMarginTop + 10 + float64(i)*16
		fmt.Fprintf(bw, `<rect x="%.2f" y="%.2f" width="10" height="10" fill="%s"/>`, svgMarginLeft+plotW-190, y-9, l.color)
		fmt.Fprintf(bw, `<text x="%.2f" y="%.2f">%s</text>`+"\n", svgMarginLeft+plotW-175, y, html.EscapeString(l.label))
	}

	fmt.Fprint(bw, "</svg>\n")
	return bw.Flush()
}
