package document

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Strategy selects how a marker is written into a file. Write-side only: the
// read side is a byte scan and never depends on how the marker got there.
type Strategy int

const (
	StrategyAppend Strategy = iota
	StrategyPDF
)

func (s Strategy) String() string {
	switch s {
	case StrategyAppend:
		return "append"
	case StrategyPDF:
		return "pdf"
	default:
		return "unknown"
	}
}

// MarkerProperty is the metadata key the marker is filed under when the PDF
// container path succeeds.
const MarkerProperty = "NotarySignature"

// DetectStrategy picks the embedding strategy from the filename extension.
// Unknown extensions fall back to plain append.
func DetectStrategy(filename string) Strategy {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return StrategyPDF
	default:
		return StrategyAppend
	}
}

// Embed writes the marker into content using the strategy detected from the
// filename and returns the signed bytes. Container failures degrade silently
// to the append path; Embed itself never fails.
func Embed(content []byte, filename string, marker string) []byte {
	switch DetectStrategy(filename) {
	case StrategyPDF:
		return embedPDF(content, marker)
	default:
		return appendMarker(content, marker)
	}
}

// appendMarker leaves the original bytes as an exact prefix of the result.
func appendMarker(content []byte, marker string) []byte {
	out := make([]byte, 0, len(content)+len(marker)+3)
	out = append(out, content...)
	out = append(out, "\n\n"...)
	out = append(out, marker...)
	out = append(out, '\n')
	return out
}

// embedPDF copies the container and attaches the marker as a named document
// property. Whether or not that works, the marker is also appended as a
// trailing comment: metadata embedding helps interoperability, the comment is
// the reliability floor for viewers and parsers that strip custom properties.
func embedPDF(content []byte, marker string) []byte {
	var buf bytes.Buffer
	err := api.AddProperties(bytes.NewReader(content), &buf, map[string]string{MarkerProperty: marker}, nil)
	if err != nil {
		slog.Debug(
			"pdf property embedding failed, using comment fallback",
			slog.String("error", err.Error()),
			slog.String("module", "document"),
		)
		return appendComment(content, marker)
	}
	return appendComment(buf.Bytes(), marker)
}

func appendComment(content []byte, marker string) []byte {
	out := make([]byte, 0, len(content)+len(marker)+4)
	out = append(out, content...)
	out = append(out, "\n% "...)
	out = append(out, marker...)
	out = append(out, '\n')
	return out
}
