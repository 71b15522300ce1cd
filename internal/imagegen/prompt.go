package imagegen

import "strings"

// DefaultOutfitDescription dresses the subject when the caller leaves the
// outfit blank: traditional Indonesian attire in the colors of the flag.
const DefaultOutfitDescription = "elegant traditional Indonesian attire in red and white, a classic kebaya or beskap with batik accents"

// BuildPrompt turns a free-text outfit description into the full instruction
// for the image model. Blank input falls back to DefaultOutfitDescription;
// anything else is embedded verbatim. Same input, same output.
func BuildPrompt(outfitDescription string) string {
	outfit := strings.TrimSpace(outfitDescription)
	if outfit == "" {
		outfit = DefaultOutfitDescription
	}
	parts := []string{
		"Edit this photo so the person is dressed in " + outfit + ".",
		"Keep the person's face, likeness, and body shape exactly as they appear in the original photo.",
		"Pose them in a respectful patriotic stance, either giving a formal salute or holding the right hand over the heart.",
		"Set the scene as an Indonesian Independence Day celebration, with the red-and-white flag flying in the background.",
		"Do not render any text, letters, or numbers anywhere in the image.",
		"The result must look like a real photograph with natural lighting and sharp detail.",
	}
	return strings.Join(parts, " ")
}
