package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"CoinSentinel/internal/model"
)

const (
	MsgAlertSent      = "Telegram message sent."
	MsgNoCandidates   = "No overbought coins found."
	MsgDeliveryFailed = " (delivery failed; see logs)"
)

// FormatAlert renders the ranked list as a Telegram Markdown message.
func FormatAlert(alerts model.RankedAlertList, at time.Time) string {
	var b strings.Builder

	b.WriteString("📊 *Crypto Alert: Overbought Coins Detected* 📊\n")
	b.WriteString(fmt.Sprintf("🕒 *Time*: %s\n\n", at.Format("2006-01-02 15:04:05")))
	b.WriteString("The following coins have high 24-hour price changes and are near their 24-hour highs, " +
		"indicating potential overbought conditions (RSI included).\n\n")

	b.WriteString("🔍 *Coin Details*:\n")
	for _, c := range alerts {
		b.WriteString(fmt.Sprintf("• *%s*\n", c.Symbol))
		b.WriteString(fmt.Sprintf("  💰 Price: $%s\n", formatPrice(c.Price)))
		b.WriteString(fmt.Sprintf("  📈 24h Change: %.2f%%\n", c.ChangePercent))
		b.WriteString(fmt.Sprintf("  🎯 24h High: $%s\n", formatPrice(c.High24h)))
		b.WriteString(fmt.Sprintf("  ⚖️ RSI: %.2f\n\n", c.RSI))
	}

	b.WriteString("📝 *Note*: High RSI (>70) may suggest overbought conditions. " +
		"Always conduct your own research before trading.\n")
	return b.String()
}

// FormatOutcome is the short reply for a finished run.
func FormatOutcome(res *model.RunResult) string {
	switch res.Status {
	case model.RunAlertSent:
		if !res.Delivered {
			return MsgAlertSent + MsgDeliveryFailed
		}
		return MsgAlertSent
	case model.RunNoCandidates:
		return MsgNoCandidates
	default:
		return fmt.Sprintf("Error: %v", res.Err)
	}
}

func formatPrice(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(6)
}
