package model

// Chunk is one contiguous text segment of a document, bounded by the
// splitter's chunk size. Page and Offset locate it in the source PDF.
type Chunk struct {
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Page   int    `json:"page"`
	Offset int    `json:"offset"`
}
