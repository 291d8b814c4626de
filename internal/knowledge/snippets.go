// Package knowledge holds the canned reference snippets handed to the
// generation backend when drafting complaint replies, and used verbatim
// as the deterministic fallback when the backend is unavailable.
// Retrieval is a plain category lookup, not semantic search.
package knowledge

import "strings"

// snippetsByCategory maps complaint categories to reference notes.
var snippetsByCategory = map[string][]string{
	"connectivity": {
		"Outage credits: customers receive one day of service credit per full day of verified outage.",
		"A technician visit can be scheduled within 2 business days for unresolved connectivity faults.",
		"Router replacements are free of charge when hardware diagnostics fail.",
	},
	"broadcast_service": {
		"Channel lineup changes are announced 30 days in advance; missing channels are usually a re-scan issue.",
		"Picture or sound faults that survive a receiver restart qualify for a technician visit.",
		"Receiver swaps are free within the warranty period.",
	},
	"device": {
		"Devices that fail to power on are eligible for replacement under the 24-month warranty.",
		"A factory reset clears most persistent device faults; settings can be restored from account backup.",
	},
	"billing": {
		"Disputed charges are reviewed within 5 business days and frozen during the review.",
		"Refunds for verified billing errors are issued to the original payment method within 10 business days.",
	},
	"account": {
		"Account changes require identity verification via the registered email or phone number.",
		"Plan changes take effect at the start of the next billing cycle unless requested otherwise.",
	},
	"other": {
		"Complaints are acknowledged within 1 business day and resolved or escalated within 5.",
	},
}

// SnippetsFor returns the reference snippets for a category, falling
// back to the general set for unknown categories.
func SnippetsFor(category string) []string {
	key := strings.ToLower(strings.TrimSpace(category))
	if snippets, ok := snippetsByCategory[key]; ok {
		return snippets
	}
	return snippetsByCategory["other"]
}

// FallbackReply builds the deterministic customer reply used when the
// generation backend is down. It is assembled only from canned
// snippets, so it is safe to show an agent but never auto-trusted.
func FallbackReply(category string) string {
	var sb strings.Builder
	sb.WriteString("Thank you for raising this with us, and we're sorry for the trouble. ")
	sb.WriteString("Here is what we can tell you right away:\n")
	for _, snippet := range SnippetsFor(category) {
		sb.WriteString("- ")
		sb.WriteString(snippet)
		sb.WriteString("\n")
	}
	sb.WriteString("An agent is reviewing your complaint and will follow up with specifics.")
	return sb.String()
}
