package render

import (
	"log"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// Faces are the cached font faces used for overlays and labels.
// Loaded once at startup, never per frame.
type Faces struct {
	Small font.Face
	Large font.Face
}

// LoadFaces parses the TTF at path, or the bundled Go Bold face when path is
// empty or unreadable. Falls back to the fixed 7x13 bitmap face if parsing fails.
func LoadFaces(path string, small, large float64) Faces {
	data := gobold.TTF
	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			data = b
		} else {
			log.Printf("⚠️ Failed to read font file %s, using bundled font: %v", path, err)
		}
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		log.Printf("⚠️ Failed to parse font: %v", err)
		return Faces{Small: basicfont.Face7x13, Large: basicfont.Face7x13}
	}

	newFace := func(size float64) font.Face {
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			log.Printf("⚠️ Failed to create %.0fpt font face: %v", size, err)
			return basicfont.Face7x13
		}
		return face
	}

	return Faces{Small: newFace(small), Large: newFace(large)}
}
