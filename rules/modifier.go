package rules

const (
	modDelete = '-'
	modKeep   = '.'
)

// ApplyModifier decodes a compact edit instruction and applies it to word.
// Every '-' removes one trailing rune of the word, '.' does nothing and any
// other rune is collected into a postfix. The postfix is appended once the
// whole modifier has been read, so literals never shield the word from
// deletions that follow them.
func ApplyModifier(word string, modifier string) string {
	runes := []rune(word)
	postfix := make([]rune, 0, len(modifier))
	for _, c := range modifier {
		switch c {
		case modDelete:
			if len(runes) > 0 {
				runes = runes[:len(runes)-1]
			}
		case modKeep:
		default:
			postfix = append(postfix, c)
		}
	}
	return string(append(runes, postfix...))
}
