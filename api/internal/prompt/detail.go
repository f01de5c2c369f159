package prompt

// DetailLevel controls how many animatable elements the generated prompt
// covers and how much elaboration it asks for.
type DetailLevel int

const (
	DetailSimple DetailLevel = iota + 1
	DetailConcise
	DetailModerate
	DetailDetailed
	DetailVeryDetailed
)

// DefaultDetail is used for any value outside 1..5.
const DefaultDetail = DetailModerate

var detailTemplates = map[DetailLevel]string{
	DetailSimple: "Focus on 1-2 primary objects and their most obvious simple movements. " +
		"Keep the prompt very concise and high-level (e.g., 'man walks', 'car drives').",
	DetailConcise: "Describe movements for a few key objects (around 2-3). " +
		"The prompt should be concise but capture essential animations " +
		"(e.g., 'man walking briskly down the street', 'red car driving past trees').",
	DetailModerate: "Identify several key objects or elements (around 3-5) that could plausibly be animated. " +
		"For each, describe a simple and natural animation. Combine these into a coherent prompt " +
		"(e.g., 'man walks down a sunlit street, leaves on trees gently sway, a distant bird flies across the sky').",
	DetailDetailed: "Provide a detailed animation prompt. Describe movements for multiple objects (around 4-6), " +
		"including some secondary elements. Suggest variations in speed or intensity of movements if appropriate " +
		"(e.g., 'man strolls casually, his shadow stretching behind him; leaves on the oak tree rustle vigorously " +
		"in a sudden gust of wind; a flock of birds wheels in the distance; sunlight glints off a passing car window').",
	DetailVeryDetailed: "Create a very detailed and comprehensive animation prompt. " +
		"Describe movements for as many plausible objects as possible (5+), including subtle background elements " +
		"(e.g., distant clouds drifting lazily, subtle fabric rustles on clothing, minor reflections changing on " +
		"wet pavement, blades of grass swaying individually). If applicable, suggest interactions between moving " +
		"elements or subtle changes in lighting/shadows caused by movement. The prompt should be rich and " +
		"evocative, painting a full picture of the animated scene.",
}

// Valid reports whether l is one of the five known levels.
func (l DetailLevel) Valid() bool {
	return l >= DetailSimple && l <= DetailVeryDetailed
}

// Normalize returns l, or DefaultDetail when l is out of range.
func (l DetailLevel) Normalize() DetailLevel {
	if l.Valid() {
		return l
	}
	return DefaultDetail
}

// Detail returns the fixed instruction paragraph for the level.
func Detail(l DetailLevel) string {
	return detailTemplates[l.Normalize()]
}

// LevelInfo describes a level for front ends (slider labels).
type LevelInfo struct {
	Level DetailLevel `json:"level"`
	Label string      `json:"label"`
}

var levelLabels = []LevelInfo{
	{DetailSimple, "Simple (Wan AI)"},
	{DetailConcise, "Concise (PIKA)"},
	{DetailModerate, "Moderate (Kling AI)"},
	{DetailDetailed, "Detailed (VEO 2)"},
	{DetailVeryDetailed, "Very Detailed (Kling2.1 Or VEO 3)"},
}

// Levels returns the level descriptors in ascending order.
func Levels() []LevelInfo {
	return append([]LevelInfo(nil), levelLabels...)
}

// Label returns the display label of the (normalized) level.
func (l DetailLevel) Label() string {
	return levelLabels[l.Normalize()-1].Label
}
