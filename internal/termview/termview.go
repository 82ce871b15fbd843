// Package termview renders analysis results as terminal tables.
package termview

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"StockLens/internal/dashboard"
	"StockLens/internal/model"
	"StockLens/internal/recorder"
)

// Options controls terminal rendering.
type Options struct {
	Color bool
	// MaxColWidth wraps long cells; 0 means 60.
	MaxColWidth int
}

func newWriter(w io.Writer, opts Options) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if opts.Color {
		tw.SetStyle(table.StyleColoredDark)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.Style().Options.SeparateRows = false
	tw.Style().Title.Format = text.FormatDefault
	return tw
}

func colorize(opts Options, class, s string) string {
	if !opts.Color {
		return s
	}
	switch class {
	case "up":
		return text.Colors{text.FgGreen}.Sprint(s)
	case "down":
		return text.Colors{text.FgRed}.Sprint(s)
	}
	return s
}

// RenderAnalysis prints the header metrics, the trailing indicator rows, key
// statistics, financial metrics, the profile and news.
func RenderAnalysis(w io.Writer, v dashboard.AnalysisView, opts Options) error {
	title := fmt.Sprintf("%s (%s)", v.Name, v.DisplaySymbol)
	if opts.Color {
		title = text.Bold.Sprint(title)
	}
	fmt.Fprintln(w, title)
	fmt.Fprintf(w, "%s · Market %s · fetched %s\n\n", v.RangeLabel, v.MarketStatus, v.FetchedAt)

	hdr := newWriter(w, opts)
	hdr.SetTitle("Overview")
	hdr.AppendHeader(table.Row{"Price", "Change", "52W High", "52W Low", "Market Cap", "Volume"})
	hdr.AppendRow(table.Row{
		v.Header.Price,
		colorize(opts, v.Header.ChangeClass, v.Header.Change),
		v.Header.High52, v.Header.Low52, v.Header.MarketCap, v.Header.Volume,
	})
	hdr.Render()
	fmt.Fprintln(w)

	ind := newWriter(w, opts)
	ind.SetTitle("Technical Indicators")
	ind.AppendHeader(table.Row{"Date", "Close", "SMA 20", "SMA 50", "RSI", "MACD", "Signal", "BB Upper", "BB Lower"})
	for _, r := range v.Indicators {
		ind.AppendRow(table.Row{r.Date, r.Close, r.SMA20, r.SMA50, r.RSI, r.MACD, r.SignalLine, r.BBUpper, r.BBLower})
	}
	alignRight(ind, 2, 9)
	ind.Render()
	fmt.Fprintln(w)

	renderRows(w, "Key Statistics", v.KeyStats, opts)
	fmt.Fprintln(w)
	renderRows(w, "Financial Metrics", v.Metrics, opts)
	fmt.Fprintln(w)
	renderProfile(w, v.Profile, opts)
	fmt.Fprintln(w)
	renderNews(w, v.News, opts)
	return nil
}

func renderRows(w io.Writer, title string, rows []dashboard.Row, opts Options) {
	tw := newWriter(w, opts)
	tw.SetTitle(title)
	for _, r := range rows {
		tw.AppendRow(table.Row{r.Label, r.Value})
	}
	alignRight(tw, 2, 2)
	tw.Render()
}

func renderProfile(w io.Writer, p dashboard.Profile, opts Options) {
	rows := []dashboard.Row{
		{Label: "Sector", Value: p.Sector},
		{Label: "Industry", Value: p.Industry},
		{Label: "Website", Value: p.Website},
		{Label: "Employees", Value: p.Employees},
		{Label: "Headquarters", Value: p.Headquarters},
		{Label: "Exchange", Value: p.Exchange},
		{Label: "Currency", Value: p.Currency},
		{Label: "Next Earnings", Value: p.EarningsDate},
		{Label: "Ex-Dividend Date", Value: p.ExDividendDate},
		{Label: "Last Fiscal Year End", Value: p.FiscalYearEnd},
	}
	if p.ESG != nil {
		rows = append(rows,
			dashboard.Row{Label: "ESG Total", Value: p.ESG.Total},
			dashboard.Row{Label: "ESG Environment", Value: p.ESG.Environment},
			dashboard.Row{Label: "ESG Social", Value: p.ESG.Social},
			dashboard.Row{Label: "ESG Governance", Value: p.ESG.Governance},
		)
	}
	tw := newWriter(w, opts)
	tw.SetTitle("Company Profile")
	for _, r := range rows {
		tw.AppendRow(table.Row{r.Label, r.Value})
	}
	tw.Render()
	if p.Summary != dashboard.NA && p.Summary != "" {
		fmt.Fprintln(w, text.WrapSoft(p.Summary, maxWidth(opts)))
	}
}

func renderNews(w io.Writer, news []dashboard.NewsRow, opts Options) {
	tw := newWriter(w, opts)
	tw.SetTitle("Latest News")
	tw.AppendHeader(table.Row{"Date", "Title", "Publisher"})
	if len(news) == 0 {
		tw.AppendRow(table.Row{"", "No recent news available.", ""})
	}
	for _, n := range news {
		tw.AppendRow(table.Row{n.Date, n.Title, n.Publisher})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: maxWidth(opts)}})
	tw.Render()
}

// RenderDigest prints one row per digest symbol.
func RenderDigest(w io.Writer, d *model.Digest, opts Options) {
	tw := newWriter(w, opts)
	tw.SetTitle(fmt.Sprintf("Digest %s (%s)", d.At.Format("2006-01-02 15:04"), d.Period.Label()))
	tw.AppendHeader(table.Row{"Symbol", "Close", "Change", "RSI", "MACD", "Bands", "Range", "Alerts"})
	for i := range d.Signals {
		s := &d.Signals[i]
		if s.Err != "" {
			tw.AppendRow(table.Row{s.Symbol, "", "", "", "", "", "", s.Err})
			continue
		}
		change, class := dashboard.FormatChange(s.ChangePct)
		rng := dashboard.NA
		if s.RangePosition != nil {
			rng = fmt.Sprintf("%.0f%%", *s.RangePosition*100)
		}
		macd := string(s.MACDState)
		if s.Crossover != "" {
			macd += " (" + strings.ReplaceAll(string(s.Crossover), "_", " ") + ")"
		}
		tw.AppendRow(table.Row{
			s.Symbol,
			fmt.Sprintf("%.2f", s.LastClose),
			colorize(opts, class, change),
			fmt.Sprintf("%s %s", dashboard.FormatPoint(s.RSI), s.RSIState),
			macd,
			string(s.BandState),
			rng,
			s.Alert(),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 8, WidthMax: maxWidth(opts)}})
	tw.Render()
}

// RenderTickers prints the configured ticker list.
func RenderTickers(w io.Writer, tickers []string, opts Options) {
	tw := newWriter(w, opts)
	tw.AppendHeader(table.Row{"#", "Symbol", "Display", "Currency"})
	for i, t := range tickers {
		tw.AppendRow(table.Row{i + 1, t, dashboard.DisplaySymbol(t), dashboard.CurrencySymbol(t)})
	}
	tw.Render()
}

// RenderRuns prints recent entries of the analysis run log.
func RenderRuns(w io.Writer, events []recorder.AnalysisEvent, opts Options) {
	tw := newWriter(w, opts)
	tw.AppendHeader(table.Row{"Time", "Symbol", "Range", "Source", "Bars", "Status", "Duration", "Error"})
	for _, e := range events {
		status := e.Status
		if status != recorder.StatusOK {
			status = colorize(opts, "down", status)
		}
		tw.AppendRow(table.Row{
			e.At.Format("2006-01-02 15:04:05"), e.Symbol, e.Range, e.Source, e.Bars, status, e.Duration, e.Error,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 8, WidthMax: maxWidth(opts)}})
	tw.Render()
}

// RenderJSON writes v as JSON.
func RenderJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func alignRight(tw table.Writer, from, to int) {
	cfgs := make([]table.ColumnConfig, 0, to-from+1)
	for n := from; n <= to; n++ {
		cfgs = append(cfgs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignRight})
	}
	tw.SetColumnConfigs(cfgs)
}

func maxWidth(opts Options) int {
	if opts.MaxColWidth > 0 {
		return opts.MaxColWidth
	}
	return 60
}
