package pausedapply

import (
	"strings"

	"github.com/edelwud/jin/internal/jinerr"
)

// Contribution is one layer's full text for a conflicted path, recovered
// from a `.jinmerge` marker artefact in ascending precedence order (the
// last entry is the highest-precedence layer).
type Contribution struct {
	Layer string
	Text  string
}

// ParseMarker reverses WriteMarker, recovering the ordered list of
// per-layer contributions from a `.jinmerge` artefact. It lets tooling
// offer the operator a choice between whole contributions instead of
// requiring a hand edit of the marker file.
func ParseMarker(data []byte) ([]Contribution, error) {
	content := string(data)
	if !strings.HasPrefix(content, MarkerHeader) {
		return nil, jinerr.New(jinerr.KindParse, "not a jinmerge marker artefact")
	}
	content = strings.TrimPrefix(content, MarkerHeader)
	content = strings.TrimPrefix(content, "\n")

	lines := strings.Split(content, "\n")
	var contribs []Contribution
	i := 0
	for i < len(lines) {
		line := lines[i]
		if !strings.HasPrefix(line, "<<<<<<< ") {
			i++
			continue
		}
		lowerLayer := strings.TrimPrefix(line, "<<<<<<< ")
		i++
		var lower []string
		for i < len(lines) && lines[i] != "=======" {
			lower = append(lower, lines[i])
			i++
		}
		if i >= len(lines) {
			return nil, jinerr.New(jinerr.KindParse, "marker artefact missing ======= separator")
		}
		i++ // skip =======
		var higher []string
		for i < len(lines) && !strings.HasPrefix(lines[i], ">>>>>>> ") {
			higher = append(higher, lines[i])
			i++
		}
		if i >= len(lines) {
			return nil, jinerr.New(jinerr.KindParse, "marker artefact missing >>>>>>> trailer")
		}
		higherLayer := strings.TrimPrefix(lines[i], ">>>>>>> ")
		i++

		if len(contribs) == 0 {
			contribs = append(contribs, Contribution{Layer: lowerLayer, Text: strings.Join(lower, "\n")})
		}
		contribs = append(contribs, Contribution{Layer: higherLayer, Text: strings.Join(higher, "\n")})
	}
	if len(contribs) < 2 {
		return nil, jinerr.New(jinerr.KindParse, "no conflict blocks found in marker artefact")
	}
	return contribs, nil
}
