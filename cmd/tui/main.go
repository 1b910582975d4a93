package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tally/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/dialog"
	"github.com/MrJamesThe3rd/tally/internal/entry"
	"github.com/MrJamesThe3rd/tally/internal/entry/gemini"
	"github.com/MrJamesThe3rd/tally/internal/http/auth"
	"github.com/MrJamesThe3rd/tally/internal/identity"
	identityStore "github.com/MrJamesThe3rd/tally/internal/identity/store"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/tally/internal/ledger/store"
	"github.com/MrJamesThe3rd/tally/internal/ledgersync"
	"github.com/MrJamesThe3rd/tally/internal/logging"
	"github.com/MrJamesThe3rd/tally/internal/sheet"
	"github.com/MrJamesThe3rd/tally/internal/sheet/google"
	"github.com/MrJamesThe3rd/tally/internal/sheet/memory"
)

type model struct {
	console *view.Console
	machine *dialog.Machine

	chatting  bool
	size      tea.WindowSizeMsg
	loginView view.LoginModel
	chatView  view.ChatModel
}

func initialModel(console *view.Console) model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := os.OpenFile("tally-tui.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}

	logging.New(logFile, cfg.App.LogLevel, false)

	ctx := context.Background()

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	classifier, err := gemini.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		slog.Error("failed to create classifier", "error", err)
		os.Exit(1)
	}

	sheets, err := sheetStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to create sheet store", "error", err)
		os.Exit(1)
	}

	var (
		ledgerSvc   = ledger.NewService(ledgerStore.New(db))
		identitySvc = identity.NewService(identityStore.New(db), cfg.Identity.CacheTTL)
		parser      = entry.NewParser(classifier, cfg.Gemini.Timeout)
		syncer      = ledgersync.New(ledgerSvc, sheets, ledgersync.WithShareRole(cfg.Sheets.ShareRole))
	)

	opts := []dialog.Option{
		dialog.WithPageSize(cfg.Dialog.PageSize),
		dialog.WithCurrency(cfg.Dialog.Currency),
	}

	if len(cfg.Auth.JWTSecret) >= config.MinJWTSecretLength {
		opts = append(opts, dialog.WithTokens(auth.NewIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)))
	}

	machine := dialog.New(console, identitySvc, ledgerSvc, parser, syncer, opts...)

	return model{
		console:   console,
		machine:   machine,
		loginView: view.NewLoginModel(os.Getenv("USER")),
	}
}

// sheetStore uses Google Sheets when a service-account key is present and an
// in-memory store otherwise.
func sheetStore(ctx context.Context, cfg *config.Config) (sheet.Store, error) {
	if _, err := os.Stat(cfg.Sheets.CredentialsFile); errors.Is(err, fs.ErrNotExist) {
		slog.Warn("no sheets credentials, using in-memory sheets", "file", cfg.Sheets.CredentialsFile)
		return memory.New(), nil
	}

	return google.New(ctx, google.Config{
		CredentialsFile: cfg.Sheets.CredentialsFile,
		ParentFolderID:  cfg.Sheets.ParentFolderID,
		TimeZone:        cfg.Sheets.TimeZone,
		Locale:          cfg.Sheets.Locale,
		Timeout:         cfg.Sheets.Timeout,
	})
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = msg
	case view.LoggedInMsg:
		m.chatting = true
		m.chatView = view.NewChatModel(m.console, m.machine, msg.Handle)

		if m.size.Width > 0 {
			var newModel tea.Model
			newModel, cmd = m.chatView.Update(m.size)
			m.chatView = newModel.(view.ChatModel)
		}

		return m, tea.Batch(cmd, m.chatView.Init())
	case view.BackMsg:
		m.chatting = false
		m.loginView = view.NewLoginModel("")

		return m, m.loginView.Init()
	}

	var newModel tea.Model

	if m.chatting {
		newModel, cmd = m.chatView.Update(msg)
		m.chatView = newModel.(view.ChatModel)
	} else {
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	}

	return m, cmd
}

func (m model) View() string {
	if m.chatting {
		return m.chatView.View()
	}

	return m.loginView.View()
}

func main() {
	console := view.NewConsole()

	p := tea.NewProgram(initialModel(console), tea.WithAltScreen())
	console.Attach(p.Send)

	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
