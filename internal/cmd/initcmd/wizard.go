package initcmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/certwatch-app/certcheck/internal/ui"
)

// Wizard manages the interactive configuration wizard.
type Wizard struct {
	state      *WizardState
	outputPath string
}

// NewWizard creates a new wizard instance.
func NewWizard() *Wizard {
	return &Wizard{
		state: NewWizardState(),
	}
}

// SetOutputPath sets the output path (from command line flag).
func (w *Wizard) SetOutputPath(path string) {
	w.outputPath = path
	if path != "" {
		w.state.ConfigPath = path
	}
}

// Run executes the wizard flow.
func (w *Wizard) Run() error {
	// Setup signal handling for graceful Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		fmt.Println()
		fmt.Println(ui.RenderWarning("Setup canceled by user"))
		os.Exit(0)
	}()

	fmt.Println()
	fmt.Println(ui.RenderHeader("certcheck setup"))
	fmt.Println()

	// Step 1: Welcome and file configuration
	if err := NewWelcomeForm(w.state).Run(); err != nil {
		return w.handleError(err)
	}

	// Step 2: Check for existing file
	if err := w.handleExistingFile(); err != nil {
		return err
	}

	// Step 3: Check configuration
	fmt.Println(ui.RenderSection("Check Configuration"))
	if err := NewCheckForm(w.state).Run(); err != nil {
		return w.handleError(err)
	}

	// Step 4: HTTP service
	fmt.Println(ui.RenderSection("HTTP Service"))
	if err := NewServerForm(w.state).Run(); err != nil {
		return w.handleError(err)
	}

	// Step 5: Push notifications and their domains
	fmt.Println(ui.RenderSection("Push Notifications"))
	if err := NewPushForm(w.state).Run(); err != nil {
		return w.handleError(err)
	}

	if w.state.EnablePush {
		fmt.Println(ui.RenderSection("Domains to Check"))
		if err := w.runDomainForms(); err != nil {
			return w.handleError(err)
		}
	}

	// Step 6: Generate and validate config
	cfg, err := w.state.ToConfig()
	if err != nil {
		return w.handleError(fmt.Errorf("failed to create configuration: %w", err))
	}

	if err := w.state.Validate(cfg); err != nil {
		return w.handleValidationError(err)
	}

	// Step 7: Write config file
	fmt.Println()
	if err := WriteConfig(cfg, w.state.ConfigPath); err != nil {
		return w.handleError(err)
	}

	w.showSuccess()

	return nil
}

func (w *Wizard) runDomainForms() error {
	domainNum := 1

	for {
		w.state.ResetCurrentDomain()

		if err := NewDomainForm(w.state, domainNum).Run(); err != nil {
			return err
		}

		w.state.SaveCurrentDomain()

		if !w.state.AddAnother {
			break
		}

		domainNum++
	}

	if len(w.state.Domains) == 0 {
		return fmt.Errorf("at least one domain is required")
	}

	return nil
}

func (w *Wizard) handleExistingFile() error {
	if !FileExists(w.state.ConfigPath) {
		return nil
	}

	form := NewOverwriteConfirmForm(w.state, w.state.ConfigPath)
	if err := form.Run(); err != nil {
		return w.handleError(err)
	}

	if !w.state.OverwriteFile {
		fmt.Println(ui.RenderWarning("Setup canceled: file already exists"))
		os.Exit(0)
	}

	return nil
}

func (w *Wizard) handleError(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		fmt.Println()
		fmt.Println(ui.RenderWarning("Setup canceled"))
		os.Exit(0)
	}
	fmt.Println()
	fmt.Println(ui.RenderError(err.Error()))
	return err
}

func (w *Wizard) handleValidationError(err error) error {
	fmt.Println()
	fmt.Println(ui.RenderError("Configuration validation failed:"))
	fmt.Println(ui.RenderError("  " + err.Error()))
	fmt.Println()
	fmt.Println(ui.RenderInfo("Please run 'certcheck init' again with corrected values."))
	return err
}

func (w *Wizard) showSuccess() {
	fmt.Println()
	fmt.Println(ui.RenderSuccess("Config written to " + w.state.ConfigPath))
	fmt.Println(ui.RenderSuccess("Validated successfully"))
	fmt.Println()

	fmt.Println(ui.TitleStyle.Render("Configuration Summary:"))
	fmt.Println(ui.MutedStyle.Render("  Grace:    ") + w.state.Grace + " days")
	fmt.Println(ui.MutedStyle.Render("  Timeout:  ") + w.state.Timeout)
	fmt.Println(ui.MutedStyle.Render("  Bind:     ") + w.state.Bind)
	if w.state.EnablePush {
		fmt.Println(ui.MutedStyle.Render("  Domains:  ") + fmt.Sprintf("%d", len(w.state.Domains)))
		fmt.Println(ui.MutedStyle.Render("  Schedule: ") + w.state.Schedule)
	}
	fmt.Println()

	fmt.Println(ui.TitleStyle.Render("Next steps:"))
	fmt.Println()
	fmt.Println("  To check a domain now:")
	fmt.Println("    " + ui.RenderCode("certcheck check example.com -c "+w.state.ConfigPath))
	fmt.Println()
	fmt.Println("  To start the HTTP service:")
	fmt.Println("    " + ui.RenderCode("certcheck serve -c "+w.state.ConfigPath))
	if w.state.EnablePush {
		fmt.Println()
		fmt.Println("  To start push notifications:")
		fmt.Println("    " + ui.RenderCode("certcheck push -c "+w.state.ConfigPath))
	}
	fmt.Println()
}

// firstEnv returns the value of the first non-empty environment variable.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// RunNonInteractive runs the wizard in non-interactive mode using environment variables.
func RunNonInteractive(outputPath string) error {
	state, err := stateFromEnv(outputPath)
	if err != nil {
		return err
	}

	cfg, err := state.ToConfig()
	if err != nil {
		return fmt.Errorf("failed to create configuration: %w", err)
	}

	if err := state.Validate(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := WriteConfig(cfg, state.ConfigPath); err != nil {
		return err
	}

	fmt.Println(ui.RenderSuccess("Config written to " + state.ConfigPath))
	return nil
}

// stateFromEnv fills a WizardState from CW_ variables, falling back to the
// variable names of the standalone push tool. Push is enabled when domains
// are given.
func stateFromEnv(outputPath string) (*WizardState, error) {
	state := NewWizardState()
	state.ConfigPath = outputPath

	if grace := os.Getenv("CW_CHECK_GRACE"); grace != "" {
		state.Grace = grace
	}

	if timeout := os.Getenv("CW_CHECK_TIMEOUT"); timeout != "" {
		state.Timeout = timeout
	}

	if level := os.Getenv("CW_LOG_LEVEL"); level != "" {
		state.LogLevel = level
	}

	if bind := os.Getenv("CW_SERVER_BIND"); bind != "" {
		state.Bind = bind
	}

	state.Domains = parseDomains(firstEnv("CW_PUSH_DOMAINS", "DOMAIN_NAMES"))
	if len(state.Domains) == 0 {
		return state, nil
	}

	state.EnablePush = true
	if sched := firstEnv("CW_PUSH_SCHEDULE", "CRON"); sched != "" {
		state.Schedule = sched
	}
	state.PushoverToken = firstEnv("CW_PUSH_PUSHOVER_TOKEN", "PUSHOVER_TOKEN")
	state.PushoverUser = firstEnv("CW_PUSH_PUSHOVER_USER", "PUSHOVER_USER")
	state.OnlyFailing = strings.EqualFold(os.Getenv("CW_PUSH_ONLY_FAILING"), "true")

	if state.PushoverToken == "" || state.PushoverUser == "" {
		return nil, fmt.Errorf("PUSHOVER_TOKEN and PUSHOVER_USER are required when domains are set")
	}

	return state, nil
}
