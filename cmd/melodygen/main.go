// Command melodygen writes a small set of deterministic JSONC melody
// fixtures to disk, for manual exercise of the compositor and for test
// inputs (SPEC_FULL §12, adapted from the teacher's cmd/fixturegen).
package main

import (
	"flag"
	"log"

	"github.com/cartomix/maestro/internal/fixtures"
)

func main() {
	outDir := flag.String("out", "./melodies", "output directory for generated melody fixtures")
	flag.Parse()

	manifest, err := fixtures.Generate(fixtures.Config{
		OutputDir:         *outDir,
		IncludeTwoNote:    true,
		IncludeChord:      true,
		IncludePolymetric: true,
		IncludeEdgeCases:  true,
	})
	if err != nil {
		log.Fatalf("generate melody fixtures: %v", err)
	}

	log.Printf("melodygen wrote %d melody files to %s", len(manifest.Files), *outDir)
}
