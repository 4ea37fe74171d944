package services

import (
	"regexp"
	"strings"

	"cardpile-backend/internal/models"
)

// ExportService renders a deck as CSV. Every value is double-quote
// wrapped with embedded quotes doubled, so exported decks re-import
// byte-for-byte through the CSV parser.
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

func (s *ExportService) CSV(deck models.FlashcardDeck) []byte {
	var b strings.Builder
	b.WriteString("Question,Answer,ImageUrl\n")

	for _, card := range deck.Cards {
		image := ""
		if card.ImageURL != nil {
			image = *card.ImageURL
		}
		b.WriteString(quoteField(card.Question))
		b.WriteByte(',')
		b.WriteString(quoteField(card.Answer))
		b.WriteByte(',')
		b.WriteString(quoteField(image))
		b.WriteByte('\n')
	}

	return []byte(b.String())
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// FileName derives the download name from the deck name, collapsing
// runs of non-alphanumeric characters to a single underscore.
func (s *ExportService) FileName(deckName string) string {
	base := nonAlphanumeric.ReplaceAllString(deckName, "_")
	base = strings.Trim(base, "_")
	if base == "" {
		base = "deck"
	}
	return base + "_flashcards.csv"
}

func quoteField(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
