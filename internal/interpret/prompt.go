package interpret

import (
	"fmt"
	"strings"
)

// KBNoneFoundPhrase is the literal phrase the model must emit when the
// knowledge-base search returns nothing relevant. Declaring the retrieval
// tool even with an empty source set, and demanding this phrase, is the
// anti-hallucination control that keeps the model from inventing external
// citations.
const KBNoneFoundPhrase = "KB support: none found"

// buildInterpretationPrompt creates the instruction block for the second
// oracle call, which turns the extraction JSON into clinical narrative.
func buildInterpretationPrompt(language string, kbConfigured bool) string {
	var b strings.Builder

	b.WriteString(`You are a clinical posturology consultant. You receive the structured JSON extracted from three stance reports (A=Neutral, B=Closed-Eyes, C=Cotton-Rolls) of one patient.

Produce a markdown clinical interpretation with these sections, in order:

## Evidence summary
Restate the key figures VERBATIM from the JSON (do not recompute, do not round differently). Explicitly quote the Romberg and cotton-effect ratios.

## Sensory system ranking
Rank the sensory systems by their contribution to the instability, on a single line in EXACTLY this token format:

PRIMARY: <system> -> SECONDARY: <system> -> MINOR: <system>

using only these system names: visual, vestibular, proprioceptive, stomatognathic.

## Diagnosis
The most plausible clinical picture, grounded only in the quoted evidence.

## Literature context
`)

	if kbConfigured {
		b.WriteString(`Search the configured clinic knowledge base for passages supporting or contradicting the diagnosis, and cite what you find. If the search returns nothing relevant, state exactly: "` + KBNoneFoundPhrase + `".`)
	} else {
		b.WriteString(`The knowledge-base search tool is available but no clinic sources are configured for it. State exactly: "` + KBNoneFoundPhrase + `". Do NOT cite external literature from memory.`)
	}

	b.WriteString(`

## Caveats
Limits of this interpretation: extraction uncertainty, missing values (nulls in the JSON), and anything a clinician must verify on the original prints.

`)

	fmt.Fprintf(&b, "Write the whole interpretation in this language: %s. The PRIMARY/SECONDARY/MINOR token line and the section structure stay in English.\n", language)

	return b.String()
}
