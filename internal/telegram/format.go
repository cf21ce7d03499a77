package telegram

import (
	"fmt"
	"strings"
	"time"

	errs "chat-translator/internal/errors"
	"chat-translator/internal/history"
)

// describeError turns a coordinator error into a reply; the user may retry.
func describeError(err error) string {
	switch errs.Code(err) {
	case errs.CodeUnknownUser:
		return "You are not registered yet. Choose a target language with /lang <code>, for example /lang es."
	case errs.CodeInvalidInput:
		return "Invalid input: " + err.Error()
	case errs.CodeDetection:
		return "Could not detect the language of your message. Please rephrase and try again."
	case errs.CodeTranslation:
		return "Translation failed. Please try again."
	default:
		return "Sorry, something went wrong. Please try again."
	}
}

// formatHistory renders the latest limit entries, oldest first.
func formatHistory(entries []history.SessionEntry, limit int) string {
	if len(entries) == 0 {
		return "No translations yet."
	}
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Last %d translations:\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(&b, "\n[%s] %s -> %s\n%s\n%s\n",
			e.Timestamp.Format(time.RFC3339), e.SourceLanguage, e.TargetLanguage, e.SourceText, e.TranslatedText)
	}
	return b.String()
}
