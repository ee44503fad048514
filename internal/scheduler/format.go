package scheduler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"DexSentinel/internal/model"
	"DexSentinel/internal/recorder"
	"DexSentinel/internal/strategy"
)

const helpText = "Available commands:\n" +
	"• /status  last cycle and counters\n" +
	"• /rules   active rules and thresholds\n" +
	"• /digest  stats digest now"

// FormatStatus reports uptime, the last cycle and running totals.
func FormatStatus(s recorder.Stats) string {
	var b strings.Builder
	b.WriteString("📡 <b>DexSentinel status</b>\n\n")
	b.WriteString(fmt.Sprintf("Uptime: %s\n", time.Since(s.StartedAt).Truncate(time.Second)))
	if c := s.LastCycle; c != nil {
		b.WriteString(fmt.Sprintf("Last cycle: %s at %s (%s)\n",
			c.Status, c.FinishedAt.Format("2006-01-02 15:04:05"), c.Duration().Truncate(time.Millisecond)))
		b.WriteString(fmt.Sprintf("  pairs %d | evaluated %d | skipped %d | rejected %d | alerts %d\n",
			c.Candidates, c.Evaluated, c.Skipped, c.Rejected, c.Alerts))
		for _, r := range c.Reasons {
			b.WriteString(fmt.Sprintf("  ⚠️ %s\n", r))
		}
	} else {
		b.WriteString("Last cycle: none yet\n")
	}
	b.WriteString(fmt.Sprintf("Cycles: %d | Alerts: %d", s.TotalCycles(), s.Alerts))
	return b.String()
}

// FormatDigest summarizes activity since startup.
func FormatDigest(s recorder.Stats) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗞 <b>DexSentinel digest</b> | %s\n\n", time.Now().Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Cycles: %d (ok %d, partial %d, failed %d)\n",
		s.TotalCycles(), s.Cycles[model.CycleSuccess], s.Cycles[model.CyclePartial], s.Cycles[model.CycleFailed]))
	b.WriteString(fmt.Sprintf("Pairs: evaluated %d | skipped %d | rejected %d\n", s.Evaluated, s.Skipped, s.Rejected))
	b.WriteString(fmt.Sprintf("Alerts: %d\n", s.Alerts))

	if len(s.RuleHits) > 0 {
		names := make([]string, 0, len(s.RuleHits))
		for n := range s.RuleHits {
			names = append(names, n)
		}
		sort.Slice(names, func(i, j int) bool {
			if s.RuleHits[names[i]] != s.RuleHits[names[j]] {
				return s.RuleHits[names[i]] > s.RuleHits[names[j]]
			}
			return names[i] < names[j]
		})
		hits := make([]string, len(names))
		for i, n := range names {
			hits[i] = fmt.Sprintf("%s %d", n, s.RuleHits[n])
		}
		b.WriteString(fmt.Sprintf("Rule hits: %s\n", strings.Join(hits, ", ")))
	}

	if len(s.RecentAlerts) > 0 {
		b.WriteString("\n<b>Recent alerts</b>\n")
		for i := len(s.RecentAlerts) - 1; i >= 0 && i >= len(s.RecentAlerts)-5; i-- {
			a := s.RecentAlerts[i]
			b.WriteString(fmt.Sprintf("• %s %s (%s)\n", a.CreatedAt.Format("15:04"), a.Symbol, strings.Join(a.Rules, ", ")))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatRules lists the active rules and thresholds.
func FormatRules(p strategy.Params, rules []string) string {
	var b strings.Builder
	b.WriteString("📐 <b>Active rules</b>\n\n")
	b.WriteString(fmt.Sprintf("Guard: avg%d volume ≥ %.0f USD, liquidity ≥ %.0f USD\n", p.VolumeWindow, p.MinVolume, p.MinLiquidity))
	for _, r := range rules {
		b.WriteString("• " + describeRule(r, p) + "\n")
	}
	b.WriteString(fmt.Sprintf("Alert when ≥ %d rules pass", p.MinSignals))
	return b.String()
}

func describeRule(name string, p strategy.Params) string {
	switch name {
	case strategy.RuleEMACross:
		return fmt.Sprintf("%s: EMA%d crosses above EMA%d, volume > %.1fx avg%d", name, p.EMAFast, p.EMASlow, p.VolMultConfirm, p.VolumeWindow)
	case strategy.RuleBollBreakout:
		return fmt.Sprintf("%s: BB(%d, %.1f) squeeze ≤ p%.0f of last %d, close above upper", name, p.BollWindow, p.BollK, p.SqueezePercentile, p.SqueezeLookback)
	case strategy.RuleRSIReclaim:
		return fmt.Sprintf("%s: RSI(%d) > %.0f", name, p.RSIWindow, p.RSILevel)
	case strategy.RuleOBVLeads:
		return fmt.Sprintf("%s: OBV new %d-bar high without price", name, p.OBVLookback)
	case strategy.RuleMcapROC:
		return fmt.Sprintf("%s: market cap +%.1f%% over %d bars", name, p.ROCThreshold, p.ROCWindow)
	default:
		return name
	}
}
