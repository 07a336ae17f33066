// Package application contains use-case orchestration services.
package application

import (
	"regexp"
	"strings"

	"github.com/ericfisherdev/iconbot/internal/domain/model"
)

var spriteDiffLine = regexp.MustCompile(`^diff --git a/(.*` + regexp.QuoteMeta(model.SpriteExtension) + `) b/`)

// ExtractSpritePaths returns the sprite paths named by "diff --git" headers in
// a unified diff, in order of appearance. Duplicates are preserved.
func ExtractSpritePaths(diff string) []string {
	var paths []string
	for _, line := range strings.Split(diff, "\n") {
		m := spriteDiffLine.FindStringSubmatch(strings.TrimSuffix(line, "\r"))
		if m == nil {
			continue
		}
		paths = append(paths, m[1])
	}
	return paths
}
