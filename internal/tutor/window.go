package tutor

import "github.com/proglot/tutor/internal/transcript"

// Window derives the bounded slice of a transcript used to seed a live
// conversation. At most the last maxLen messages, order preserved; the
// identical slice comes back when it already fits. Messages outside the
// window stay recoverable through the transcript store.
func Window(t transcript.Transcript, maxLen int) transcript.Transcript {
	if maxLen <= 0 || len(t) <= maxLen {
		return t
	}
	return t[len(t)-maxLen:]
}
