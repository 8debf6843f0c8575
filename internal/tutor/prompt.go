package tutor

import "fmt"

const systemInstructionTemplate = `
You are 'ProGlot', an expert %[1]s tutor for Turkish speakers.
IMPORTANT: This is an ongoing lesson. Remember previous mistakes and progress.

RULES:
1. Explain concepts in Turkish, but provide examples strictly in %[1]s.
2. Correct mistakes gently and explain the 'Why' behind the rule.
3. End every response with an interactive question or exercise.
4. NEVER just provide the answer; keep the dialogue active.

TONE: Professional, Patient, Encouraging.
`

const coldStartTemplate = "Start the lesson. Introduce yourself professionally in Turkish and ask for my %s proficiency level."

// SystemInstruction renders the tutor persona for one target language.
func SystemInstruction(languageLabel string) string {
	return fmt.Sprintf(systemInstructionTemplate, languageLabel)
}

// ColdStartPrompt is the invisible instruction that opens a track with no
// prior history.
func ColdStartPrompt(languageLabel string) string {
	return fmt.Sprintf(coldStartTemplate, languageLabel)
}
