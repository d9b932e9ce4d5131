// Package segmenter splits extracted document text into fixed-size windows
// for embedding. Splitting is by character count only; no sentence or
// paragraph awareness.
package segmenter

// Split cuts text into consecutive, non-overlapping slices of exactly
// chunkSize characters. The final slice is shorter when the length does not
// divide evenly. Empty text or a non-positive chunkSize yields nil.
// Concatenating the result reproduces text exactly.
//
// Windows are counted in runes, not bytes, so multi-byte text is never cut
// mid-character.
func Split(text string, chunkSize int) []string {
	if chunkSize <= 0 || len(text) == 0 {
		return nil
	}
	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+chunkSize-1)/chunkSize)
	for i := 0; i < len(runes); i += chunkSize {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
