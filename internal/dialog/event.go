package dialog

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Kind is the classified meaning of an inbound event.
type Kind int

const (
	KindText Kind = iota
	KindUnknownCommand
	KindStart
	KindHelp
	KindStatus
	KindCancel
	KindCreateLedger
	KindCreateEntry
	KindToken
	KindConfirmLedgerYes
	KindConfirmLedgerNo
	KindLedgerPage
	KindSelectLedger
	KindConfirmEntryYes
	KindConfirmEntryNo
	KindEditEntry
	KindRetryEntry
	KindUnknownButton
)

var kindNames = [...]string{
	KindText:             "text",
	KindUnknownCommand:   "unknown_command",
	KindStart:            "start",
	KindHelp:             "help",
	KindStatus:           "status",
	KindCancel:           "cancel",
	KindCreateLedger:     "create_ledger",
	KindCreateEntry:      "create_entry",
	KindToken:            "token",
	KindConfirmLedgerYes: "confirm_ledger_yes",
	KindConfirmLedgerNo:  "confirm_ledger_no",
	KindLedgerPage:       "ledger_page",
	KindSelectLedger:     "select_ledger",
	KindConfirmEntryYes:  "confirm_entry_yes",
	KindConfirmEntryNo:   "confirm_entry_no",
	KindEditEntry:        "edit_entry",
	KindRetryEntry:       "retry_entry",
	KindUnknownButton:    "unknown_button",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}

	return kindNames[k]
}

func (k Kind) isButton() bool {
	return k >= KindConfirmLedgerYes
}

// Callback tokens carried by inline buttons.
const (
	TokenConfirmLedgerYes = "confirm_ledger_yes"
	TokenConfirmLedgerNo  = "confirm_ledger_no"
	TokenConfirmEntryYes  = "confirm_entry_yes"
	TokenConfirmEntryNo   = "confirm_entry_no"
	TokenEditEntry        = "edit_entry"
	TokenRetryEntry       = "retry_entry"

	prefixLedgerPage   = "ledger_page:"
	prefixSelectLedger = "select_ledger:"
)

func PageToken(page int) string {
	return prefixLedgerPage + strconv.Itoa(page)
}

func SelectToken(id uuid.UUID) string {
	return prefixSelectLedger + id.String()
}

var commands = map[string]Kind{
	"start":      KindStart,
	"help":       KindHelp,
	"status":     KindStatus,
	"cancel":     KindCancel,
	"new_l":      KindCreateLedger,
	"new_ledger": KindCreateLedger,
	"new_e":      KindCreateEntry,
	"new_entry":  KindCreateEntry,
	"token":      KindToken,
}

var buttons = map[string]Kind{
	TokenConfirmLedgerYes: KindConfirmLedgerYes,
	TokenConfirmLedgerNo:  KindConfirmLedgerNo,
	TokenConfirmEntryYes:  KindConfirmEntryYes,
	TokenConfirmEntryNo:   KindConfirmEntryNo,
	TokenEditEntry:        KindEditEntry,
	TokenRetryEntry:       KindRetryEntry,
}

// input is a classified event with its parsed argument.
type input struct {
	Kind   Kind
	Page   int
	Ledger uuid.UUID
}

func classify(ev Event) input {
	if ev.Callback != "" {
		return classifyButton(ev.Callback)
	}

	text := strings.TrimSpace(ev.Text)
	if !strings.HasPrefix(text, "/") {
		return input{Kind: KindText}
	}

	name := strings.TrimPrefix(strings.Fields(text)[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}

	if kind, ok := commands[strings.ToLower(name)]; ok {
		return input{Kind: kind}
	}

	return input{Kind: KindUnknownCommand}
}

func classifyButton(data string) input {
	if kind, ok := buttons[data]; ok {
		return input{Kind: kind}
	}

	if arg, ok := strings.CutPrefix(data, prefixLedgerPage); ok {
		if page, err := strconv.Atoi(arg); err == nil {
			return input{Kind: KindLedgerPage, Page: page}
		}
	}

	if arg, ok := strings.CutPrefix(data, prefixSelectLedger); ok {
		if id, err := uuid.Parse(arg); err == nil {
			return input{Kind: KindSelectLedger, Ledger: id}
		}
	}

	return input{Kind: KindUnknownButton}
}
