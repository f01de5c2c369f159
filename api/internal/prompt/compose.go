package prompt

import "strings"

// OutputPrefix is the literal phrase every generated prompt must start with.
const OutputPrefix = "animate this image "

// Compose returns the detail paragraph for the level followed by the clauses
// of the set style flags. It is pure and never fails.
func Compose(level DetailLevel, flags StyleFlags) string {
	var b strings.Builder
	b.WriteString(Detail(level))
	if clauses := flags.Clauses(); len(clauses) > 0 {
		b.WriteString("\n\nApply the following style modifications: ")
		b.WriteString(strings.Join(clauses, " "))
	}
	return b.String()
}

// Instruction wraps Compose into the full text sent next to the image.
func Instruction(level DetailLevel, flags StyleFlags) string {
	var b strings.Builder
	b.WriteString("Analyze this image meticulously. Your goal is to create an effective 'Text to Video' animation prompt in English.\n")
	b.WriteString("The prompt MUST begin with the exact phrase: '" + OutputPrefix + "'.\n\n")
	b.WriteString("Based on the image, follow this specific instruction for detail:\n")
	b.WriteString(Compose(level, flags))
	b.WriteString("\n\n")
	b.WriteString("For all described movements, ensure they are smooth and fluid (unless a specific style like Anime or " +
		"Green Screen mode dictates otherwise, for example, static hair movement or specific object vs. background behavior). " +
		"Incorporate English phrases like 'with smooth movement', 'slowly drifting', 'gently flowing', 'swaying softly', " +
		"'fluidly animating', or similar descriptive terms to emphasize this smoothness where appropriate for the overall requested style.\n")
	b.WriteString("The final output should be a single string in English, ready to be used as a video animation prompt. " +
		"Do not add any conversational fluff or explanations outside of the prompt itself.")
	return b.String()
}
