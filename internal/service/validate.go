package service

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// RequestDraft describes a submission payload before validation.
type RequestDraft struct {
	Name        string
	Handle      string
	Email       string
	Service     string
	Description string
	Budget      string
	ContactInfo string
}

const (
	minNameLen        = 2
	minDescriptionLen = 10
	maxDescriptionLen = 1000
)

// validateDraft returns per-field reasons for rejection, empty when valid.
// Spam heuristics reject as a validation failure, not a security event.
func validateDraft(draft RequestDraft) map[string]any {
	details := map[string]any{}

	if utf8.RuneCountInString(strings.TrimSpace(draft.Name)) < minNameLen {
		details["name"] = "name must be at least 2 characters"
	}
	if !validEmail(draft.Email) {
		details["email"] = "email address is not valid"
	}
	if strings.TrimSpace(draft.Service) == "" {
		details["service"] = "service category is required"
	}
	if strings.TrimSpace(draft.ContactInfo) == "" {
		details["contact_info"] = "contact info is required"
	}

	desc := strings.TrimSpace(draft.Description)
	descLen := utf8.RuneCountInString(desc)
	switch {
	case descLen < minDescriptionLen:
		details["description"] = "description must be at least 10 characters"
	case descLen > maxDescriptionLen:
		details["description"] = "description must be at most 1000 characters"
	default:
		if reason := spamReason(desc); reason != "" {
			details["description"] = reason
		}
	}

	if len(details) == 0 {
		return nil
	}
	return details
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// reject display-name forms like "Al <a@b.com>"
	return addr.Address == email
}

var placeholderWords = map[string]struct{}{
	"test": {}, "testing": {}, "asdf": {}, "asdasd": {}, "lorem": {},
	"ipsum": {}, "qwerty": {}, "foo": {}, "bar": {}, "baz": {},
	"aaa": {}, "abc": {}, "xyz": {}, "sample": {}, "placeholder": {},
}

// spamReason applies the free-text spam heuristics: repeated-character runs,
// placeholder words above 30% of word count, and low word-uniqueness ratio.
func spamReason(text string) string {
	if longestRun(text) >= 6 {
		return "description looks like repeated characters"
	}

	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return ""
	}

	placeholders := 0
	unique := make(map[string]struct{}, len(words))
	for _, word := range words {
		word = strings.Trim(word, ".,!?;:()\"'")
		if word == "" {
			continue
		}
		unique[word] = struct{}{}
		if _, ok := placeholderWords[word]; ok {
			placeholders++
		}
	}

	if float64(placeholders)/float64(len(words)) > 0.3 {
		return "description looks like placeholder text"
	}
	if len(words) >= 5 && float64(len(unique))/float64(len(words)) < 0.5 {
		return "description has too little variety"
	}
	return ""
}

func longestRun(text string) int {
	var prev rune
	run, max := 0, 0
	for _, r := range text {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run > max {
			max = run
		}
	}
	return max
}
