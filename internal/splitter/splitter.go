package splitter

import "strings"

const defaultChunkSize = 1000

// separators in break-preference order: paragraph, line, space, then hard
// rune cuts when nothing else fits under the size limit.
var separators = []string{"\n\n", "\n", " "}

// Piece is one output segment of Split. Start is the rune offset of the
// piece within the input text.
type Piece struct {
	Text  string
	Start int
}

// Splitter cuts text into segments of at most ChunkSize runes, preferring
// semantically coherent break points, with adjacent segments sharing up to
// Overlap runes so context survives the cut.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func New(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}
	return &Splitter{ChunkSize: chunkSize, Overlap: overlap}
}

// Split returns the pieces of text in order. Whitespace-only input yields
// nil. Every rune of the input belongs to at least one piece.
func (s *Splitter) Split(text string) []Piece {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	var pieces []Piece
	start := 0
	for start < len(runes) {
		end := start + s.ChunkSize
		if end >= len(runes) {
			pieces = append(pieces, Piece{Text: string(runes[start:]), Start: start})
			break
		}

		cut := s.findCut(runes, start, end)
		pieces = append(pieces, Piece{Text: string(runes[start:cut]), Start: start})

		next := cut - s.Overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return pieces
}

// findCut picks the break point for a chunk spanning [start, start+ChunkSize).
// It tries each separator in preference order and takes the last occurrence
// inside the window; if none occurs, it cuts at the window end. Occurrences
// within the first Overlap runes are ignored: the window starts Overlap runes
// before the previous cut, so a cut there would re-select the previous break
// and emit a piece contained in its predecessor.
func (s *Splitter) findCut(runes []rune, start, end int) int {
	window := string(runes[start:end])
	for _, sep := range separators {
		if i := strings.LastIndex(window, sep); i > 0 {
			// cut after the separator so the break text stays with the
			// leading chunk
			cut := start + len([]rune(window[:i+len(sep)]))
			if cut <= start+s.Overlap {
				continue
			}
			return cut
		}
	}
	return end
}
