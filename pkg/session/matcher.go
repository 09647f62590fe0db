package session

import "strings"

// silenceCommands are the spoken phrases that silence the assistant.
// Matched case-insensitively as substrings of the input transcript.
var silenceCommands = []string{"ai quiet", "ai silent", "shut up", "stop", "silent"}

// IsSilenceCommand reports whether the user's transcript asks the
// assistant to stop speaking.
func IsSilenceCommand(text string) bool {
	lowered := strings.ToLower(text)
	for _, cmd := range silenceCommands {
		if strings.Contains(lowered, cmd) {
			return true
		}
	}
	return false
}

// IsHazardWarning reports whether the assistant's transcript is a hazard
// interruption. Only the literal "Stop." / "Stop!" opener counts, so
// ordinary words like "Stopwatch" never trigger the haptic alert.
func IsHazardWarning(text string) bool {
	return strings.HasPrefix(text, "Stop.") || strings.HasPrefix(text, "Stop!")
}
