package notifier

import (
	"fmt"
	"html"
	"strings"

	"DexSentinel/internal/model"
)

var tagStripper = strings.NewReplacer(
	"<b>", "", "</b>", "",
	"<i>", "", "</i>", "",
	"<code>", "", "</code>", "",
)

// FormatAlert renders an alert as a Telegram HTML message.
func FormatAlert(a *model.Alert) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("<b>%s</b>  (signals: %s)\n", html.EscapeString(a.Symbol), strings.Join(a.Rules, ", ")))

	vol := "n/a"
	if v, ok := a.AvgVolumeValue.Get(); ok {
		vol = fmt.Sprintf("%.0f", v)
	}
	b.WriteString(fmt.Sprintf("Price: %.6f | Vol20avg: %s USD\n", a.Price, vol))

	roc := "n/a"
	if v, ok := a.MarketCapROC.Get(); ok {
		roc = fmt.Sprintf("%.2f%%", v)
	}
	b.WriteString(fmt.Sprintf("Liq: %d USD  |  Mcap ROC(%d): %s\n", int64(a.Liquidity.OrElse(0)), a.ROCWindow, roc))

	b.WriteString("Playbook: TP +20% | TSL 0.87x")
	return b.String()
}

// PlainText strips the HTML markup used in Telegram messages.
func PlainText(s string) string {
	return html.UnescapeString(tagStripper.Replace(s))
}
