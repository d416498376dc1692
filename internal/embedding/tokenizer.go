package embedding

// Tokenizer produces padded token IDs for the text tower of the embedding model.
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs []int64)
}

// SimpleTokenizer is a word-split tokenizer with hash-based token IDs
// (for testing or as a fallback when no real vocabulary is available).
type SimpleTokenizer struct{}

// Tokenize splits text into words and produces padded token IDs up to maxTokens.
func (t *SimpleTokenizer) Tokenize(text string, maxTokens int) []int64 {
	words := SplitWords(text)
	if maxTokens <= 0 {
		maxTokens = 64
	}
	inputIDs := make([]int64, maxTokens)
	pos := 0
	for _, word := range words {
		if pos >= maxTokens {
			break
		}
		inputIDs[pos] = int64(HashString(word) % 30000)
		pos++
	}
	return inputIDs
}

// SplitWords splits text on whitespace and returns non-empty words.
func SplitWords(text string) []string {
	var words []string
	word := ""
	for _, r := range text {
		if r == ' ' || r == '\n' || r == '\t' {
			if word != "" {
				words = append(words, word)
				word = ""
			}
		} else {
			word += string(r)
		}
	}
	if word != "" {
		words = append(words, word)
	}
	return words
}

// HashString returns a deterministic hash for use as a simple token ID or seed.
func HashString(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	return h
}
