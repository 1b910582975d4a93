package dialog

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/MrJamesThe3rd/tally/internal/entry"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/ledgersync"
	"github.com/MrJamesThe3rd/tally/internal/pagination"
)

const commandList = "🆕 /new_l - Create a new ledger\n" +
	"📝 /new_e - Create a new ledger entry\n\n" +
	"🔧 Other Commands:\n" +
	"/start - Welcome message\n" +
	"/help - Show help\n" +
	"/status - Check bot status\n" +
	"/token - Get an API token\n" +
	"/cancel - Cancel current operation"

const cancelHint = "\n\nFor Cancel /cancel"

const entryExamples = "Examples:\n" +
	"• \"Paid 500 for materials\"\n" +
	"• \"Received 1000 from client John\"\n" +
	"• \"Bought office supplies for 250\"\n" +
	"• \"Cash deposit 2000\""

const (
	msgUnknownCommand   = "🤖 I didn't understand that command.\n\n📋 Available Commands:\n\n" + commandList
	msgNoActiveOp       = "ℹ️ No active operation.\n\nYou can start with:\n🆕 /new_l - Create a new ledger\n📝 /new_e - Add a new entry"
	msgNothingToCancel  = "ℹ️ No active operation to cancel.\n\nAvailable commands:\n🆕 /new_l - Create a new ledger\n📝 /new_e - Add a new entry"
	msgCancelled        = "❌ Current operation cancelled.\n\nYou can start fresh with:\n🆕 /new_l - Create a new ledger\n📝 /new_e - Add a new entry"
	msgAskLedgerName    = "📝 Please enter your ledger name:\n\nExample: \"ABC Building Work Ledger\"" + cancelHint
	msgLedgerDeclined   = "❌ Ledger creation cancelled."
	msgCreatingLedger   = "✅ Creating your ledger...\n\n📊 Setting up Google Sheet..."
	msgNoAccount        = "❌ I cannot find your account. Please make sure your chat username is registered and try again."
	msgNoLedgers        = "📭 You don't have any ledgers yet.\n\nCreate one first with /new_l"
	msgLedgerGone       = "❌ That ledger is no longer available. Start again with /new_e"
	msgProcessingEntry  = "🤖 Processing your entry..."
	msgAddingEntry      = "✅ Entry confirmed!\n\n📊 Adding entry to Google Sheet..."
	msgEntryDeclined    = "❌ Entry cancelled.\n\n📝 Please send a new entry text:" + cancelHint
	msgEditEntry        = "✏️ Let's try again.\n\n📝 Please send your entry text:" + cancelHint
	msgEmptyEntry       = "📝 Please send the entry as text." + cancelHint
	msgMalformedReply   = "⚠️ I couldn't read the AI's answer for that entry.\n\nPlease rephrase it and send it again." + cancelHint
	msgClassifierDown   = "⚠️ The AI service is unavailable right now.\n\nTap Retry to send the same text again, or send a new entry." + cancelHint
	msgSystemError      = "🚨 Unexpected error: the operation failed due to a system issue.\n\nPlease try again or contact support."
	msgLedgerSelectHead = "📚 Choose a ledger to add an entry:"
	msgTokensDisabled   = "ℹ️ API access is not enabled on this bot."
)

var printer = message.NewPrinter(language.English)

// formatAmount renders a currency amount with digit grouping and at most two decimals.
func formatAmount(currency string, d decimal.Decimal) string {
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return currency + d.String()
	}

	return currency + printer.Sprint(number.Decimal(f, number.MaxFractionDigits(2)))
}

func welcomeText(handle string) string {
	name := handle
	if name == "" {
		name = "there"
	}

	return fmt.Sprintf("Welcome %s! 🎉\n\nI'm your Personal Ledger Bot! 📊\n\n📋 What I can do:\n%s\n\n💡 Start by creating your first ledger with /new_l", name, commandList)
}

func tokenText(token string, expires time.Time) string {
	return fmt.Sprintf("🔑 Your API token (valid until %s UTC):\n\n%s\n\nSend it as \"Authorization: Bearer <token>\". Do not share it.",
		expires.UTC().Format("2006-01-02 15:04"), token)
}

func helpText() string {
	return "🤖 Ledger Bot Help:\n\n📋 Main Commands:\n" + commandList +
		"\n\n💡 Tips:\n• Use /new_l first to create your ledgers\n• Then use /new_e to add entries to them\n• You can cancel any operation with /cancel"
}

func statusText(conv *Conversation) string {
	current := Idle
	if conv != nil {
		current = conv.Step
	}

	return fmt.Sprintf("🤖 Bot Status: Active ✅\n\n📊 Available Features:\n• Create ledgers with Google Sheets\n• Add entries with AI processing\n• Automatic balance calculation\n\n🧭 Your current operation: %s", current)
}

func invalidNameText(name string) string {
	reason := fmt.Sprintf("the name must be at most %d characters", ledger.MaxTitleLength)
	if ledger.NormalizeTitle(name) == "" {
		reason = "the name cannot be empty"
	}

	return "⚠️ Please choose another ledger name: " + reason + "." + cancelHint
}

func confirmLedgerMessage(name string) Message {
	return Message{
		Text: fmt.Sprintf("📋 You want to create a ledger named:\n\n🏷️ \"%s\"\n\nIs this correct?", name),
		Buttons: [][]Button{{
			{Text: "✅ Yes, Create", Data: TokenConfirmLedgerYes},
			{Text: "❌ No, Cancel", Data: TokenConfirmLedgerNo},
		}},
	}
}

func ledgerConflictText(name string, reprompt bool) string {
	text := fmt.Sprintf("⚠️ A ledger named \"%s\" already exists.", name)
	if reprompt {
		text += "\n\n📝 Please enter a different ledger name:" + cancelHint
	}

	return text
}

func ledgerCreatedText(res *ledgersync.CreateResult, handle string) string {
	l := res.Ledger

	return fmt.Sprintf("✅ Ledger & Google Sheet Created Successfully!\n\n"+
		"🏷️ Name: \"%s\"\n🆔 ID: %s\n👤 Created by: %s\n📅 Created at: %s\n\n"+
		"📊 Google Sheet: %s\n\n🎉 Your ledger is ready to use! Add entries with /new_e",
		l.Title, l.ID, handle, l.CreatedAt.Format("02-01-2006 15:04"), res.SheetURL)
}

func partialFailureText(pf *ledgersync.PartialFailureError) string {
	text := fmt.Sprintf("⚠️ Ledger \"%s\" was not fully created: the Google Sheet could not be set up.\n\n"+
		"Nothing was kept, so the ledger is not usable. Please try again with /new_l", pf.Title)

	if !pf.Compensated {
		text += "\n\nSome leftovers could not be removed right away and will be cleaned up automatically."
	}

	return text
}

func ledgerPageMessage(page pagination.Page[*ledger.Ledger]) Message {
	var rows [][]Button

	for _, l := range page.Items {
		rows = append(rows, []Button{{Text: "📘 " + l.Title, Data: SelectToken(l.ID)}})
	}

	var nav []Button
	if page.HasPrev {
		nav = append(nav, Button{Text: "⬅️ Prev", Data: PageToken(page.Index - 1)})
	}

	if page.HasNext {
		nav = append(nav, Button{Text: "Next ➡️", Data: PageToken(page.Index + 1)})
	}

	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	return Message{
		Text:    fmt.Sprintf("%s\n\nPage %d of %d%s", msgLedgerSelectHead, page.Index+1, page.TotalPages, cancelHint),
		Buttons: rows,
	}
}

func ledgerSelectedText(l *ledger.Ledger) string {
	return fmt.Sprintf("✅ Ledger selected: %s\n\n📝 Now send your entry text:\n\n%s%s", l.Title, entryExamples, cancelHint)
}

func amountLine(currency string, e *entry.ParsedEntry) string {
	if e.IsDebit() {
		return formatAmount(currency, e.Debit) + " (Debit)"
	}

	return formatAmount(currency, e.Credit) + " (Credit)"
}

func confirmEntryMessage(currency string, e *entry.ParsedEntry) Message {
	voucher := e.VoucherName
	if e.VoucherNumber != "" {
		voucher += " #" + e.VoucherNumber
	}

	party := e.PartyName
	if party == "" {
		party = "-"
	}

	text := fmt.Sprintf("🤖 AI processed your entry:\n\n"+
		"📅 Date: %s\n🧾 Voucher: %s\n📝 Description: %s\n💰 Amount: %s\n👤 Party: %s\n\n"+
		"🤖 AI Confidence: %d%%\n💭 Reasoning: %s\n\nIs this correct?",
		e.FormattedDate(), voucher, e.Description, amountLine(currency, e), party,
		int(math.Round(e.Confidence*100)), e.Reasoning)

	return Message{
		Text: text,
		Buttons: [][]Button{
			{
				{Text: "✅ Yes, Add Entry", Data: TokenConfirmEntryYes},
				{Text: "❌ No, Cancel", Data: TokenConfirmEntryNo},
			},
			{
				{Text: "✏️ Edit Entry", Data: TokenEditEntry},
			},
		},
	}
}

func lowConfidenceText(reason string) string {
	return fmt.Sprintf("⚠️ AI couldn't understand your entry clearly.\n\n🤖 Reasoning: %s\n\n"+
		"Please try again with a clearer entry like:\n"+
		"• \"Paid 500 for materials\"\n• \"Received 1000 from client\"\n• \"Bought supplies for 250\"%s", reason, cancelHint)
}

func classifierDownMessage() Message {
	return Message{
		Text:    msgClassifierDown,
		Buttons: [][]Button{{{Text: "🔁 Retry", Data: TokenRetryEntry}}},
	}
}

func entryAddedText(currency string, res *ledgersync.AppendResult, e *entry.ParsedEntry) string {
	return fmt.Sprintf("✅ Entry Added Successfully!\n\n"+
		"📊 Ledger: %s\n📅 Date: %s\n📝 Description: %s\n💰 Amount: %s\n💳 New Balance: %s\n\n"+
		"🎉 Entry has been added to your Google Sheet!\n\nFor New Entry /new_e\nFor New Ledger /new_l",
		res.Ledger.Title, e.FormattedDate(), e.Description, amountLine(currency, e),
		formatAmount(currency, res.Row.Balance))
}

const msgAppendFailed = "⚠️ Entry processed but failed to add to Google Sheet.\n\n" +
	"💡 Nothing was written. Please try again with /new_e or check your sheet permissions."
