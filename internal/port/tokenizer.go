package port

type Tokenizer interface {
	Words(text string) []string

	WordSet(text string) map[string]struct{}
}
