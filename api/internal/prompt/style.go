package prompt

import (
	"fmt"
	"strings"
)

// StyleFlags is the set of independent style toggles. Any combination is valid;
// contradictory styles are left to the model to reconcile.
type StyleFlags struct {
	Realistic3D    bool `json:"realistic_3d" yaml:"realistic_3d"`
	NaturalEffects bool `json:"natural_effects" yaml:"natural_effects"`
	Anime          bool `json:"anime" yaml:"anime"`
	GreenScreen    bool `json:"green_screen" yaml:"green_screen"`
}

// Style identifiers, in clause order.
const (
	Style3D          = "3d"
	StyleNatural     = "natural"
	StyleAnime       = "anime"
	StyleGreenScreen = "greenscreen"
)

// StyleInfo describes a toggle for front ends.
type StyleInfo struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

type styleClause struct {
	info   StyleInfo
	clause string
	get    func(StyleFlags) bool
	set    func(*StyleFlags, bool)
}

// styleClauses is ordered; Compose appends clauses in exactly this order.
var styleClauses = []styleClause{
	{
		info: StyleInfo{Style3D, "Model 3D", "Realistic, photorealistic style."},
		clause: "Incorporate a Realistic (Photorealistic) style: This style strives to mimic the look of the real world " +
			"as realistically as possible. Details in textures, lighting, shadows, and reflections should be carefully " +
			"considered to create an illusion of depth and authenticity.",
		get: func(f StyleFlags) bool { return f.Realistic3D },
		set: func(f *StyleFlags, v bool) { f.Realistic3D = v },
	},
	{
		info:   StyleInfo{StyleNatural, "Model Asli", "Visual effects, smooth & natural motion."},
		clause: "Emphasize rich visual effects and ensure all movements are particularly smooth and natural.",
		get:    func(f StyleFlags) bool { return f.NaturalEffects },
		set:    func(f *StyleFlags, v bool) { f.NaturalEffects = v },
	},
	{
		info:   StyleInfo{StyleAnime, "Model Anime", "Static hair, light particle overlay."},
		clause: "Apply an Anime style: Include static and repetitive movements for hair. Add a soft light particle overlay effect.",
		get:    func(f StyleFlags) bool { return f.Anime },
		set:    func(f *StyleFlags, v bool) { f.Anime = v },
	},
	{
		info: StyleInfo{StyleGreenScreen, "Mode Green Screen", "Vivid object motion, static green screen."},
		clause: "For a Green Screen mode: Make the primary object's movement very vivid and dynamic. " +
			"The green screen background itself MUST remain static, unchanged, and clearly identifiable as a standard green screen.",
		get: func(f StyleFlags) bool { return f.GreenScreen },
		set: func(f *StyleFlags, v bool) { f.GreenScreen = v },
	},
}

// Styles returns the toggle descriptors in clause order.
func Styles() []StyleInfo {
	out := make([]StyleInfo, 0, len(styleClauses))
	for _, s := range styleClauses {
		out = append(out, s.info)
	}
	return out
}

// Clauses returns the clauses for the set flags, in declared order.
func (f StyleFlags) Clauses() []string {
	var out []string
	for _, s := range styleClauses {
		if s.get(f) {
			out = append(out, s.clause)
		}
	}
	return out
}

// Enabled returns the ids of the set flags, in declared order.
func (f StyleFlags) Enabled() []string {
	var out []string
	for _, s := range styleClauses {
		if s.get(f) {
			out = append(out, s.info.ID)
		}
	}
	return out
}

// Has reports whether the toggle with the given id is set.
func (f StyleFlags) Has(id string) bool {
	for _, s := range styleClauses {
		if s.info.ID == id {
			return s.get(f)
		}
	}
	return false
}

// Toggle returns a copy of f with the named flag flipped.
func (f StyleFlags) Toggle(id string) (StyleFlags, error) {
	s, err := lookupStyle(id)
	if err != nil {
		return f, err
	}
	s.set(&f, !s.get(f))
	return f, nil
}

// ParseStyles builds flags from toggle ids (case-insensitive, "-"/"_" ignored).
func ParseStyles(ids ...string) (StyleFlags, error) {
	var f StyleFlags
	for _, id := range ids {
		s, err := lookupStyle(id)
		if err != nil {
			return StyleFlags{}, err
		}
		s.set(&f, true)
	}
	return f, nil
}

func lookupStyle(id string) (styleClause, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	switch key {
	case "realistic3d", "realistic", "model3d":
		key = Style3D
	case "naturaleffects", "asli", "modelasli":
		key = StyleNatural
	case "green", "modelgreenscreen":
		key = StyleGreenScreen
	case "modelanime":
		key = StyleAnime
	}
	for _, s := range styleClauses {
		if s.info.ID == key {
			return s, nil
		}
	}
	return styleClause{}, fmt.Errorf("unknown style %q", id)
}
