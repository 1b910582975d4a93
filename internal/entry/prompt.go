package entry

import (
	"fmt"
	"strings"
	"time"
)

const promptTemplate = `You are a ledger entry processor. Analyze the following entry text and extract structured data for a financial ledger. Return ONLY valid JSON (no markdown, no code blocks, no additional text):

Entry Text: %q

Respond with a JSON object containing:
{
  "isValid": boolean,        // true if this looks like a valid financial entry
  "date": "DD-MM-YYYY",      // the date mentioned in the text, or today's date
  "vchName": "string",       // voucher type, e.g. "Payment", "Receipt", "Purchase", "Sale"
  "vchNumber": "string",     // voucher or bill number if one is mentioned, otherwise ""
  "description": "string",   // clean description of the transaction
  "debit": number,           // amount if money goes out (expense), otherwise 0
  "credit": number,          // amount if money comes in (income), otherwise 0
  "partyName": "string",     // person or entity involved in the transaction
  "confidence": number,      // 0-1 score of how confident you are in this parsing
  "reasoning": "string"      // brief explanation of your parsing
}

Rules:
1. Only ONE of debit or credit has a value, the other is 0
2. If someone "paid" or "spent" money, it is usually a debit
3. If someone "received" or "earned" money, it is usually a credit
4. Extract amounts from text (handle formats like "200", "₹200", "Rs.200", "200 rupees")
5. Generate appropriate voucher names like "Payment", "Receipt", "Purchase", "Sale"
6. Use today's date if no date is mentioned
7. Be conservative: if you are not sure, set isValid to false

Current date: %s

Respond with ONLY the JSON object, no additional text.`

// BuildPrompt renders the fixed-schema classification prompt for text.
func BuildPrompt(text string, today time.Time) string {
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(text), today.Format(DateLayout))
}
