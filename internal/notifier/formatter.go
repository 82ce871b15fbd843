package notifier

import (
	"fmt"
	"html"
	"strings"

	"StockLens/internal/dashboard"
	"StockLens/internal/model"
)

// FormatDigest formats a digest run into a Telegram message.
func FormatDigest(d *model.Digest) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>StockLens digest</b> | %s (%s)\n", d.At.Format("2006-01-02 15:04"), d.Period.Label()))
	if len(d.Signals) == 0 {
		b.WriteString("\nNo symbols configured.\n")
		return b.String()
	}

	for i := range d.Signals {
		s := &d.Signals[i]
		b.WriteString("\n")
		name := html.EscapeString(dashboard.DisplaySymbol(s.Symbol))
		if s.Err != "" {
			b.WriteString(fmt.Sprintf("<b>%s</b> ❌ %s\n", name, html.EscapeString(s.Err)))
			continue
		}
		b.WriteString(fmt.Sprintf("<b>%s</b> %s%.2f%s\n", name, dashboard.CurrencySymbol(s.Symbol), s.LastClose, changeSuffix(s.ChangePct)))
		b.WriteString("  " + indicatorLine(s) + "\n")
		if len(s.Alerts) > 0 {
			b.WriteString(fmt.Sprintf("  ⚠️ %s\n", html.EscapeString(s.Alert())))
		}
	}
	return b.String()
}

// FormatAnalysisSummary formats a single analysis for a chat reply.
func FormatAnalysisSummary(a *model.Analysis, sig *model.TechnicalSignal) string {
	var b strings.Builder
	cur := dashboard.CurrencySymbol(a.Symbol)

	title := a.Metadata.DisplayName()
	if title == "" || title == a.Symbol {
		title = a.Symbol
	} else {
		title = fmt.Sprintf("%s (%s)", title, a.Symbol)
	}
	b.WriteString(fmt.Sprintf("📈 <b>%s</b>\n\n", html.EscapeString(title)))

	var price, change, cap *float64
	if a.Metadata != nil {
		price, change, cap = a.Metadata.CurrentPrice, a.Metadata.ChangePercent, a.Metadata.MarketCap
	}
	changeText, _ := dashboard.FormatChange(change)
	b.WriteString(fmt.Sprintf("Price: %s | Change: %s\n", dashboard.FormatMoney(cur, price), changeText))
	b.WriteString(fmt.Sprintf("Market Cap: %s\n", dashboard.FormatMoney(cur, cap)))
	b.WriteString(fmt.Sprintf("Period: %s, %d sessions\n\n", a.Range.Label(), a.Table.Len()))

	if sig != nil && sig.Err == "" {
		b.WriteString(fmt.Sprintf("Last close: %s%.2f%s\n", cur, sig.LastClose, changeSuffix(sig.ChangePct)))
		b.WriteString(indicatorLine(sig) + "\n")
		if len(sig.Alerts) > 0 {
			b.WriteString(fmt.Sprintf("⚠️ %s\n", html.EscapeString(sig.Alert())))
		}
	}
	return b.String()
}

func changeSuffix(pct *float64) string {
	if pct == nil {
		return ""
	}
	return fmt.Sprintf(" (%+.2f%%)", *pct)
}

func indicatorLine(s *model.TechnicalSignal) string {
	parts := []string{
		fmt.Sprintf("RSI %s %s", dashboard.FormatPoint(s.RSI), s.RSIState),
		fmt.Sprintf("MACD %s", s.MACDState),
	}
	if s.Crossover != "" {
		parts[1] += fmt.Sprintf(" (%s)", strings.ReplaceAll(string(s.Crossover), "_", " "))
	}
	parts = append(parts, fmt.Sprintf("Bands %s", s.BandState))
	if s.RangePosition != nil {
		parts = append(parts, fmt.Sprintf("Range %.0f%%", *s.RangePosition*100))
	}
	return strings.Join(parts, " | ")
}
