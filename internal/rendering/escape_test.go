package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeReserved_EmptyString(t *testing.T) {
	assert.Equal(t, "", EscapeReserved(""))
}

func TestEscapeReserved_NoSpecialCharacters(t *testing.T) {
	text := "This is normal text with no special characters"
	assert.Equal(t, text, EscapeReserved(text))
}

func TestEscapeReserved_Ampersand(t *testing.T) {
	assert.Equal(t, `R\&D`, EscapeReserved("R&D"))
}

func TestEscapeReserved_Percent(t *testing.T) {
	assert.Equal(t, `cut costs by 76\%`, EscapeReserved("cut costs by 76%"))
}

func TestEscapeReserved_DollarAndHash(t *testing.T) {
	assert.Equal(t, `saved \$1M across issue \#12`, EscapeReserved("saved $1M across issue #12"))
}

func TestEscapeReserved_AlreadyEscaped(t *testing.T) {
	text := `GD\&T with 99.9\% uptime`
	assert.Equal(t, text, EscapeReserved(text))
}

func TestEscapeReserved_LineBreakBeforeReserved(t *testing.T) {
	// \\ is a line break, so the & after it is bare
	assert.Equal(t, `a \\\& b`, EscapeReserved(`a \\& b`))
}

func TestEscapeReserved_CommentLinesUntouched(t *testing.T) {
	text := "  % layout tweak: 50% width\n\\item 50% faster"
	assert.Equal(t, "  % layout tweak: 50% width\n\\item 50\\% faster", EscapeReserved(text))
}

func TestEscapeReserved_URLArgumentsUntouched(t *testing.T) {
	text := `\href{https://example.com/a?x=1&y=50%25#top}{Docs & more} \url{https://e.com/#a}`
	expected := `\href{https://example.com/a?x=1&y=50%25#top}{Docs \& more} \url{https://e.com/#a}`
	assert.Equal(t, expected, EscapeReserved(text))
}

func TestEscapeReserved_UnterminatedURLProtectsRestOfLine(t *testing.T) {
	text := "\\url{https://e.com/?a=1&b\nnext & line"
	assert.Equal(t, "\\url{https://e.com/?a=1&b\nnext \\& line", EscapeReserved(text))
}

// idempotenceSeeds cover escape runs, comments, URL arguments and multibyte text
var idempotenceSeeds = []string{
	"R&D & more",
	`already \& escaped`,
	`odd \\& run`,
	`triple \\\& run`,
	"100% of $5 for #1",
	"% comment & stuff\nbody & text",
	`\href{mailto:a@b.c}{a&b} 5% \url{x#y}`,
	`\\url{not & protected}`,
	"\\url{https://e.com/?a=1&b\nnext & line",
	"trailing backslash \\",
	"résumé – unicode & symbols",
}

func TestEscapeReserved_Idempotent(t *testing.T) {
	for _, in := range idempotenceSeeds {
		once := EscapeReserved(in)
		twice := EscapeReserved(once)
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func FuzzEscapeReserved(f *testing.F) {
	for _, seed := range idempotenceSeeds {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, in string) {
		once := EscapeReserved(in)
		if twice := EscapeReserved(once); twice != once {
			t.Fatalf("EscapeReserved is not idempotent for %q:\nonce:  %q\ntwice: %q", in, once, twice)
		}
	})
}
