package analysis

import (
	"fmt"
	"strings"
	"unicode"
)

// Filler prefixes models tend to produce when answering from memory contexts.
// Matched case-insensitively and stripped before any other post-processing.
var fillerPrefixes = []string{
	"based on the memories,",
	"based on the memories",
	"according to your memories,",
	"according to your memories",
	"from the memory contexts,",
	"from the memory contexts",
}

// NoInformationAnswer is the fixed response when an answer is missing or too
// short to be useful.
func NoInformationAnswer(question string) string {
	return fmt.Sprintf("I don't have specific information to answer '%s' in your memories yet.", question)
}

// GatewayApologyAnswer is the fixed response when the language model could
// not be reached at all.
const GatewayApologyAnswer = "I'm sorry, I wasn't able to process your question right now. Please try again in a moment."

// PostProcessAnswer normalizes a raw model answer: strips filler prefixes,
// capitalizes the first letter, guarantees terminal punctuation, and replaces
// answers under ten characters with the fixed no-information response.
func PostProcessAnswer(raw, question string) string {
	answer := strings.TrimSpace(raw)

	for changed := true; changed; {
		changed = false
		lowered := strings.ToLower(answer)
		for _, prefix := range fillerPrefixes {
			if strings.HasPrefix(lowered, prefix) {
				answer = strings.TrimSpace(answer[len(prefix):])
				changed = true
				break
			}
		}
	}

	if len(answer) < 10 {
		return NoInformationAnswer(question)
	}

	runes := []rune(answer)
	if unicode.IsLower(runes[0]) {
		runes[0] = unicode.ToUpper(runes[0])
		answer = string(runes)
	}

	if !strings.ContainsRune(".!?", rune(answer[len(answer)-1])) {
		answer += "."
	}
	return answer
}
