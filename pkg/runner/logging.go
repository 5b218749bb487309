package runner

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/copytx/pkg/status"
)

func init() {
	// Enable debug output for development
	pterm.EnableDebugMessages()
}

// 📢 UserLogger provides user-friendly feedback about transaction progress.
// Every method is safe on a nil receiver so library callers can simply not
// wire one.
type UserLogger struct {
	log zerolog.Logger // for debug/error logging
}

// 🎯 NewUserLogger creates a new user logger
func NewUserLogger(ctx context.Context) *UserLogger {
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
	}
}

// 🖼️ StepReport describes one phase outcome for a single step
type StepReport struct {
	Name   string
	Phase  string
	Result status.Result
}

// 📝 LogStepReport logs a phase outcome with appropriate emoji and formatting
func (u *UserLogger) LogStepReport(report StepReport) {
	if u == nil {
		return
	}

	var prefix, action string
	var printer *pterm.PrefixPrinter
	switch {
	case !report.Result.Code.Success():
		prefix = "❌"
		action = "Failed"
		printer = pterm.Error.WithPrefix(pterm.Prefix{Text: prefix})
	case report.Result.Code == status.NoChange:
		prefix = "⏭️"
		action = "Skipped"
		printer = pterm.Debug.WithPrefix(pterm.Prefix{Text: prefix})
	case report.Phase == "fix":
		prefix = "✅"
		action = "Applied"
		printer = pterm.Success.WithPrefix(pterm.Prefix{Text: prefix})
	case report.Phase == "rollback":
		prefix = "🗑️"
		action = "Reversed"
		printer = pterm.Warning.WithPrefix(pterm.Prefix{Text: prefix})
	default:
		prefix = "👀"
		action = "Approved"
		printer = pterm.Info.WithPrefix(pterm.Prefix{Text: prefix})
	}

	msg := fmt.Sprintf("%s %s (%s)", action, report.Name, report.Result)
	printer.Println(msg)
	u.log.Info().Msg(msg) // Also log to zerolog for debugging
}

// ⚠️ LogRollback announces that queued undo actions are being invoked
func (u *UserLogger) LogRollback(actions int) {
	if u == nil {
		return
	}

	pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Printf("Rolling back %d undo action(s)\n", actions)
	u.log.Warn().Msgf("Rolling back %d undo action(s)", actions)
}

// 🔍 LogValidation logs validation results
func (u *UserLogger) LogValidation(valid bool, description string, err error) {
	if u == nil {
		return
	}

	if valid {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println(description)
		u.log.Info().Msg(description)
	} else {
		if err != nil {
			pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println(description)
			pterm.Error.Println(err)
			u.log.Error().Err(err).Msg(description)
		} else {
			pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(description)
			u.log.Warn().Msg(description)
		}
	}
}

// 📊 LogTransaction logs a change to the overall transaction
func (u *UserLogger) LogTransaction(description string) {
	if u == nil {
		return
	}

	printer := pterm.Info.WithPrefix(pterm.Prefix{Text: "📦"})
	printer.Println(description)
	u.log.Info().Msg(description)
}
