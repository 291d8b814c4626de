package triage

import "strings"

// RemedyCategory keys a troubleshooting playbook.
type RemedyCategory string

const (
	CategoryConnectivity RemedyCategory = "connectivity"
	CategoryBroadcast    RemedyCategory = "broadcast_service"
	CategoryDeviceBoot   RemedyCategory = "device_boot"
	CategoryGeneric      RemedyCategory = "generic"
)

// lexicon is a named, versioned keyword table. Single-word terms match
// on word boundaries ("no" must not match "now"); multi-word terms
// match as case-insensitive substrings. Categories are additive, so
// new vocabularies extend these tables rather than the rule evaluator.
type lexicon struct {
	name    string
	version int
	terms   []string
}

func (l lexicon) matches(message string) bool {
	msg := strings.ToLower(message)
	words := tokenize(msg)
	for _, term := range l.terms {
		if strings.ContainsRune(term, ' ') || strings.ContainsRune(term, '-') {
			if strings.Contains(msg, term) {
				return true
			}
			continue
		}
		for _, w := range words {
			if w == term {
				return true
			}
		}
	}
	return false
}

// tokenize lowercases and splits a message into words, trimming
// punctuation but keeping in-word apostrophes ("didn't").
func tokenize(msg string) []string {
	return strings.FieldsFunc(msg, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '\'':
			return false
		}
		return true
	})
}

// Technical lexicons are evaluated in order; the first matching
// category wins, with the generic table as the catch-all for service
// trouble that names no specific subsystem.
var technicalLexicons = []struct {
	category RemedyCategory
	lexicon  lexicon
}{
	{CategoryConnectivity, lexicon{
		name:    "connectivity",
		version: 2,
		terms: []string{
			"internet", "wifi", "wi-fi", "broadband", "connection",
			"router", "modem", "no signal", "disconnect", "offline",
			"slow speed", "speed is slow",
		},
	}},
	{CategoryBroadcast, lexicon{
		name:    "broadcast-service",
		version: 2,
		terms: []string{
			"tv", "television", "channel", "cable", "broadcast",
			"picture", "black screen", "no sound", "streaming",
		},
	}},
	{CategoryDeviceBoot, lexicon{
		name:    "device-boot",
		version: 1,
		terms: []string{
			"won't turn on", "wont turn on", "not turning on",
			"won't start", "wont start", "power", "boot", "restart",
			"reboot", "frozen", "stuck", "set-top box", "receiver",
		},
	}},
	{CategoryGeneric, lexicon{
		name:    "generic-service",
		version: 1,
		terms: []string{
			"not working", "stopped working", "doesn't work",
			"doesnt work", "broken", "outage", "down", "error",
		},
	}},
}

var greetingLexicon = lexicon{
	name:    "greeting",
	version: 1,
	terms: []string{
		"hello", "hi", "hey", "good morning", "good afternoon",
		"good evening", "greetings",
	},
}

var affirmativeLexicon = lexicon{
	name:    "affirmative",
	version: 1,
	terms: []string{
		"yes", "yep", "yeah", "yup", "it worked", "that worked",
		"fixed", "solved", "resolved", "all good", "working now",
	},
}

var negationLexicon = lexicon{
	name:    "negation",
	version: 1,
	terms: []string{
		"no", "not", "nope", "still", "didn't", "didnt", "doesn't",
		"doesnt", "won't", "wont", "same problem", "same issue",
	},
}

var complaintIntentLexicon = lexicon{
	name:    "complaint-intent",
	version: 1,
	terms: []string{
		"file a complaint", "complaint", "ticket", "escalate",
		"speak to a human", "talk to an agent", "supervisor",
	},
}

// matchTechnicalCategory returns the remedy category for a message, or
// false when no technical lexicon matches.
func matchTechnicalCategory(message string) (RemedyCategory, bool) {
	for _, entry := range technicalLexicons {
		if entry.lexicon.matches(message) {
			return entry.category, true
		}
	}
	return "", false
}

// isGreetingOnly reports whether the message is a greeting and nothing
// substantive. Greetings embedded in longer problem reports do not
// count.
func isGreetingOnly(message string) bool {
	if !greetingLexicon.matches(message) {
		return false
	}
	return len(strings.Fields(message)) <= 4
}
