package notifier

import (
	"fmt"
	"strings"
	"time"

	"StreakSentinel/internal/model"
)

// Subject returns the email subject / headline for an outcome.
func Subject(o *model.Outcome) string {
	switch o.Kind {
	case model.OutcomePurchased:
		return "✅ Streak Freeze Purchased Successfully"
	case model.OutcomeAlreadyOwned:
		if o.Severity == model.SeverityLow {
			return "⚠️ Duolingo Gems Running Low"
		}
		return "✓ Streak Freeze Already Equipped"
	case model.OutcomeInsufficientFunds:
		return "🚨 Out of Gems - Streak At Risk!"
	case model.OutcomeStreakBroken:
		return "💔 Duolingo Streak Broken"
	case model.OutcomeDryRun:
		return "🧪 Dry Run - No Purchase Made"
	default:
		return "❌ Streak Keeper Error"
	}
}

// FormatText renders the plain-text notification body for an outcome.
func FormatText(o *model.Outcome) string {
	var b strings.Builder

	b.WriteString(Subject(o))
	b.WriteString("\n\n")

	switch o.Kind {
	case model.OutcomePurchased:
		b.WriteString("A streak freeze has been purchased and equipped.\n\n")
		fmt.Fprintf(&b, "Cost: %d gems\n", o.PurchaseCost)
		fmt.Fprintf(&b, "Remaining Balance: %d gems\n", o.Balance)
	case model.OutcomeAlreadyOwned:
		b.WriteString("A streak freeze is already equipped. No purchase needed.\n\n")
		fmt.Fprintf(&b, "Gem Balance: %d\n", o.Balance)
	case model.OutcomeInsufficientFunds:
		b.WriteString("Not enough gems to purchase a streak freeze!\n\n")
		fmt.Fprintf(&b, "Current Balance: %d gems\n", o.Balance)
		fmt.Fprintf(&b, "Required: %d gems\n", o.PurchaseCost)
		fmt.Fprintf(&b, "Shortage: %d gems\n\n", o.PurchaseCost-o.Balance)
		b.WriteString("Your streak is at risk. Complete lessons to earn gems.\n")
	case model.OutcomeStreakBroken:
		b.WriteString("Unfortunately, your Duolingo streak has been broken.\n\n")
		b.WriteString("Status: streak reset to 0 days\n\n")
		b.WriteString("This may have happened due to:\n")
		b.WriteString("- Insufficient gems to purchase a streak freeze\n")
		b.WriteString("- No streak freeze equipped when a day was missed\n\n")
		b.WriteString("You can start building your streak again by completing a lesson today.\n")
	case model.OutcomeDryRun:
		fmt.Fprintf(&b, "Decision: %s\n", o.Decision)
		fmt.Fprintf(&b, "Gem Balance: %d\n", o.Balance)
		fmt.Fprintf(&b, "Balance after purchase would be: %d\n", o.Balance-o.PurchaseCost)
		b.WriteString("No purchase call was made.\n")
	case model.OutcomeError:
		fmt.Fprintf(&b, "The run failed before reaching a decision:\n\n%v\n", o.Err)
	}

	fmt.Fprintf(&b, "\nStreak: %d days\n", o.Streak)

	switch o.Severity {
	case model.SeverityLow:
		fmt.Fprintf(&b, "\nWarning: gem balance is below the %d threshold. "+
			"You may not afford future streak freezes.\n", o.LowThreshold)
	case model.SeverityOut:
		b.WriteString("\nWarning: gem balance cannot cover a streak freeze.\n")
	}

	b.WriteString("\n---\nAutomated notification from StreakSentinel.\n")
	fmt.Fprintf(&b, "Time: %s\n", o.At.Format("2006-01-02 15:04:05"))
	return b.String()
}

// FormatHTML renders the HTML alternative for email delivery.
func FormatHTML(o *model.Outcome) string {
	color, box := "#28a745", "#d4edda"
	switch o.Kind {
	case model.OutcomeInsufficientFunds, model.OutcomeStreakBroken, model.OutcomeError:
		color, box = "#dc3545", "#f8d7da"
	case model.OutcomeAlreadyOwned:
		if o.Severity != model.SeverityHealthy {
			color, box = "#ff9600", "#fff3cd"
		}
	case model.OutcomeDryRun:
		color, box = "#6c757d", "#e2e3e5"
	}

	var detail strings.Builder
	switch o.Kind {
	case model.OutcomePurchased:
		fmt.Fprintf(&detail, "<strong>Cost:</strong> %d 💎<br><strong>Remaining Balance:</strong> %d 💎", o.PurchaseCost, o.Balance)
	case model.OutcomeInsufficientFunds:
		fmt.Fprintf(&detail, "<strong>Current Balance:</strong> %d 💎<br><strong>Required:</strong> %d 💎<br><strong>Shortage:</strong> %d 💎",
			o.Balance, o.PurchaseCost, o.PurchaseCost-o.Balance)
	case model.OutcomeStreakBroken:
		detail.WriteString("<strong>Status:</strong> streak reset to 0 days")
	case model.OutcomeError:
		fmt.Fprintf(&detail, "<span style=\"font-family: monospace;\">%v</span>", o.Err)
	default:
		fmt.Fprintf(&detail, "<strong>Gem Balance:</strong> %d 💎<br><strong>Streak:</strong> %d days", o.Balance, o.Streak)
	}

	return fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; padding: 20px;">
	<h2 style="color: %s;">%s</h2>
	<div style="background-color: %s; border-left: 4px solid %s; padding: 15px; margin: 20px 0;">
		%s
	</div>
	<p style="color: #666; font-size: 12px; margin-top: 30px;">
		Automated notification from StreakSentinel.<br>
		Time: %s
	</p>
</body>
</html>`, color, Subject(o), box, color, detail.String(), o.At.Format("2006-01-02 15:04:05"))
}

// FormatSummary renders the console summary printed at the end of a run.
func FormatSummary(o *model.Outcome) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString("SUMMARY\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	if o.Completed() {
		b.WriteString("Status: ✓ Success\n")
	} else {
		b.WriteString("Status: ✗ Failed\n")
	}
	fmt.Fprintf(&b, "Outcome: %s\n", o.Kind)
	fmt.Fprintf(&b, "Streak: %d days\n", o.Streak)
	if o.HasFreeze {
		b.WriteString("Freeze: ✓ Equipped\n")
	} else {
		b.WriteString("Freeze: ✗ Not equipped\n")
	}
	fmt.Fprintf(&b, "Gems: %d (%s)\n", o.Balance, o.Severity)
	b.WriteString(strings.Repeat("=", 60))
	return b.String()
}

// FormatStatusReport renders the boxed --status report.
func FormatStatusReport(streak int, extendedToday, hasFreeze bool, balance int, severity model.Severity) string {
	freeze := "✗ Not equipped"
	if hasFreeze {
		freeze = "✓ Equipped"
	}
	extended := "✗ Not yet"
	if extendedToday {
		extended = "✓ Done"
	}
	health := "✓ Healthy"
	switch severity {
	case model.SeverityLow:
		health = "⚠️ LOW GEMS"
	case model.SeverityOut:
		health = "🚨 OUT OF GEMS"
	}

	var b strings.Builder
	b.WriteString("╔══════════════════════════════════════════════════════════╗\n")
	b.WriteString("║         DUOLINGO STREAK STATUS REPORT                    ║\n")
	b.WriteString("╠══════════════════════════════════════════════════════════╣\n")
	fmt.Fprintf(&b, "║ Streak:         %d days\n", streak)
	fmt.Fprintf(&b, "║ Extended Today: %s\n", extended)
	fmt.Fprintf(&b, "║ Streak Freeze:  %s\n", freeze)
	fmt.Fprintf(&b, "║ Gem Balance:    %d 💎\n", balance)
	fmt.Fprintf(&b, "║ Status:         %s\n", health)
	fmt.Fprintf(&b, "║ Checked:        %s\n", time.Now().Format("2006-01-02 15:04"))
	b.WriteString("╚══════════════════════════════════════════════════════════╝")
	return b.String()
}
