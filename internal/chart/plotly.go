package chart

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

const plotlyTimeLayout = "2006-01-02 15:04:05"

type plotlyDoc struct {
	Data   []map[string]any `json:"data"`
	Layout map[string]any   `json:"layout"`
}

// PlotlyJSON encodes the figure as a Plotly.js {data, layout} document.
// Panels share the x axis; panel i draws on y axis i+1. Undefined points
// become null.
func (f *Figure) PlotlyJSON() ([]byte, error) {
	doc := plotlyDoc{Layout: f.plotlyLayout()}
	for i, p := range f.Panels {
		yref := axisRef("y", i)
		for _, tr := range p.Traces {
			doc.Data = append(doc.Data, plotlyTrace(tr, yref))
		}
	}
	if doc.Data == nil {
		doc.Data = []map[string]any{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode figure: %w", err)
	}
	return data, nil
}

func plotlyTrace(tr Trace, yref string) map[string]any {
	out := map[string]any{
		"name":  tr.Name,
		"x":     plotlyTimes(tr.X),
		"xaxis": "x",
		"yaxis": yref,
	}
	switch tr.Kind {
	case KindCandlestick:
		out["type"] = "candlestick"
		out["open"] = tr.Open
		out["high"] = tr.High
		out["low"] = tr.Low
		out["close"] = tr.Close
		out["increasing"] = map[string]any{"line": map[string]any{"color": tr.Color}}
		out["decreasing"] = map[string]any{"line": map[string]any{"color": tr.FillColor}}
	case KindBar:
		out["type"] = "bar"
		out["y"] = tr.Y
		out["marker"] = map[string]any{"color": tr.Colors}
		out["opacity"] = tr.Opacity
	default:
		out["type"] = "scatter"
		out["mode"] = "lines"
		out["y"] = tr.Y
		out["line"] = map[string]any{"color": tr.Color, "width": tr.Width}
		if tr.Fill != "" {
			out["fill"] = tr.Fill
			out["fillcolor"] = tr.FillColor
		}
	}
	return out
}

// Grid styling shared by every axis.
const gridColor = "rgba(128,128,128,0.2)"

// plotlyLayout omits a figure title; the page header names the symbol.
func (f *Figure) plotlyLayout() map[string]any {
	layout := map[string]any{
		"height":        f.Height,
		"paper_bgcolor": f.Paper,
		"plot_bgcolor":  f.Plot,
		"font":          map[string]any{"color": f.Font},
		"showlegend":    true,
		"legend": map[string]any{
			"yanchor": "top", "y": 0.99,
			"xanchor": "left", "x": 0.01,
			"bgcolor": "rgba(0,0,0,0.5)",
		},
		"margin":    map[string]any{"l": 50, "r": 50, "t": 30, "b": 50},
		"hovermode": "x unified",
		"xaxis": map[string]any{
			"anchor":         axisRef("y", len(f.Panels)-1),
			"rangeslider":    map[string]any{"visible": false},
			"showgrid":       true,
			"gridwidth":      1,
			"gridcolor":      gridColor,
			"zeroline":       false,
			"showticklabels": true,
		},
	}
	var shapes, annotations []map[string]any
	for i, dom := range f.Domains() {
		p := f.Panels[i]
		axis := map[string]any{
			"domain":    []float64{dom[0], dom[1]},
			"anchor":    "x",
			"title":     map[string]any{"text": p.Title, "standoff": 10},
			"showgrid":  true,
			"gridwidth": 1,
			"gridcolor": gridColor,
			"zeroline":  false,
		}
		if p.YMin != nil && p.YMax != nil {
			axis["range"] = []float64{*p.YMin, *p.YMax}
		}
		layout[axisKey(i)] = axis
		for _, ref := range p.RefLines {
			shapes = append(shapes, map[string]any{
				"type": "line", "xref": "paper", "x0": 0, "x1": 1,
				"yref": axisRef("y", i), "y0": ref.Y, "y1": ref.Y,
				"line": map[string]any{"color": ref.Color, "dash": ref.Dash, "width": 1},
			})
			annotations = append(annotations, map[string]any{
				"xref": "paper", "x": 1, "xanchor": "right",
				"yref": axisRef("y", i), "y": ref.Y, "yanchor": "bottom",
				"text": ref.Label, "showarrow": false,
				"font": map[string]any{"color": ref.Color},
			})
		}
	}
	if shapes != nil {
		layout["shapes"] = shapes
		layout["annotations"] = annotations
	}
	return layout
}

// axisRef returns the trace reference for panel i: "y", "y2", "y3".
func axisRef(prefix string, i int) string {
	if i <= 0 {
		return prefix
	}
	return fmt.Sprintf("%s%d", prefix, i+1)
}

// axisKey returns the layout key for panel i: "yaxis", "yaxis2", "yaxis3".
func axisKey(i int) string {
	if i <= 0 {
		return "yaxis"
	}
	return fmt.Sprintf("yaxis%d", i+1)
}

func plotlyTimes(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Format(plotlyTimeLayout)
	}
	return out
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
