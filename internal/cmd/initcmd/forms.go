package initcmd

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/certwatch-app/certcheck/internal/ui"
)

// NewWelcomeForm creates the welcome and file configuration form.
func NewWelcomeForm(state *WizardState) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to certcheck setup!").
				Description("This wizard will help you create a configuration file for certcheck.\n\n"+
					"You'll need:\n"+
					"  • The domains whose certificates you want to check\n"+
					"  • A Pushover application token and user key for notifications (optional)"),

			huh.NewInput().
				Title("Config file path").
				Description("Where to save the configuration file").
				Placeholder("./certcheck.yaml").
				Value(&state.ConfigPath).
				Validate(ValidateConfigPath),
		),
	).WithTheme(ui.CreateTheme())
}

// NewCheckForm creates the certificate check configuration form.
func NewCheckForm(state *WizardState) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Check Configuration").
				Description("Configure how certificates are checked"),

			huh.NewInput().
				Title("Grace Period (days)").
				Description("Certificates expiring within this many days are reported as a warning").
				Placeholder("7").
				Value(&state.Grace).
				Validate(ValidateGrace),

			huh.NewSelect[string]().
				Title("Timeout").
				Description("Maximum time for connecting to one domain").
				Options(
					huh.NewOption("5 seconds", "5s"),
					huh.NewOption("10 seconds (recommended)", "10s"),
					huh.NewOption("30 seconds", "30s"),
				).
				Value(&state.Timeout),

			huh.NewSelect[string]().
				Title("Log Level").
				Description("Logging verbosity").
				Options(
					huh.NewOption("Debug (verbose)", "debug"),
					huh.NewOption("Info (recommended)", "info"),
					huh.NewOption("Warn", "warn"),
					huh.NewOption("Error (quiet)", "error"),
				).
				Value(&state.LogLevel),
		),
	).WithTheme(ui.CreateTheme())
}

// NewServerForm creates the HTTP service configuration form.
func NewServerForm(state *WizardState) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("HTTP Service").
				Description("Settings for 'certcheck serve'"),

			huh.NewInput().
				Title("Listen Address").
				Description("Address the HTTP service binds to").
				Placeholder("127.0.0.1:9292").
				Value(&state.Bind).
				Validate(ValidateBind),
		),
	).WithTheme(ui.CreateTheme())
}

// NewPushForm creates the push notification configuration form.
func NewPushForm(state *WizardState) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Push Notifications").
				Description("Check domains on a schedule and send the results to Pushover"),

			huh.NewConfirm().
				Title("Enable push notifications?").
				Value(&state.EnablePush).
				Affirmative("Yes").
				Negative("No"),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Schedule").
				Description("When to run the checks (cron with seconds)").
				Options(
					huh.NewOption("Every 5 minutes", "0 */5 * * * *"),
					huh.NewOption("Every hour", "0 0 * * * *"),
					huh.NewOption("Daily at 08:00 (recommended)", "0 0 8 * * *"),
					huh.NewOption("Weekly on Monday at 08:00", "0 0 8 * * 1"),
				).
				Value(&state.Schedule),

			huh.NewInput().
				Title("Pushover Application Token").
				Placeholder("azGDORePK8gMaC0QOYAMyEEuzJnyUi").
				Value(&state.PushoverToken).
				EchoMode(huh.EchoModePassword).
				Validate(ValidatePushoverKey),

			huh.NewInput().
				Title("Pushover User Key").
				Placeholder("uQiRzpo4DXghDmr9QzzfQu27cmVRsG").
				Value(&state.PushoverUser).
				EchoMode(huh.EchoModePassword).
				Validate(ValidatePushoverKey),

			huh.NewConfirm().
				Title("Only notify about failing certificates?").
				Description("Skip notifications for certificates in the OK state").
				Value(&state.OnlyFailing).
				Affirmative("Yes").
				Negative("No"),
		).WithHideFunc(func() bool { return !state.EnablePush }),
	).WithTheme(ui.CreateTheme())
}

// NewDomainForm creates a domain entry form.
func NewDomainForm(state *WizardState, domainNum int) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(fmt.Sprintf("Domain #%d", domainNum)).
				Description("Add a domain to check on every run"),

			huh.NewInput().
				Title("Domain").
				Description("The domain to check (e.g., example.com)").
				Placeholder("example.com").
				Value(&state.CurrentDomain).
				Validate(ValidateDomain),

			huh.NewConfirm().
				Title("Add another domain?").
				Value(&state.AddAnother).
				Affirmative("Yes").
				Negative("No"),
		),
	).WithTheme(ui.CreateTheme())
}

// NewOverwriteConfirmForm creates a form to confirm file overwrite.
func NewOverwriteConfirmForm(state *WizardState, path string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("File '%s' already exists. Overwrite?", path)).
				Description("The existing file will be replaced with the new configuration.").
				Value(&state.OverwriteFile).
				Affirmative("Yes, overwrite").
				Negative("No, cancel"),
		),
	).WithTheme(ui.CreateTheme())
}
