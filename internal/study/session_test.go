package study

import (
	"fmt"
	"testing"

	"github.com/google/uuid"

	"cardpile-backend/internal/models"
)

func testDeck(n int) *models.FlashcardDeck {
	cards := make([]models.Flashcard, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, models.Flashcard{
			ID:       uuid.New(),
			Question: fmt.Sprintf("Q%d", i+1),
			Answer:   fmt.Sprintf("A%d", i+1),
		})
	}
	return &models.FlashcardDeck{
		ID:    uuid.New(),
		Name:  "Test Deck",
		Cards: cards,
	}
}

func pileIDs(cards []GridCard) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.Card.ID)
	}
	return ids
}

func TestMoveCurrentKeepsPilesDisjoint(t *testing.T) {
	deck := testDeck(4)
	s := NewSession(deck)

	moved, _ := s.Current()
	if !s.MoveCurrent(PileReview) {
		t.Fatal("Expected move to review to succeed")
	}

	grid := s.Grid()
	total := len(grid.Study) + len(grid.Review) + len(grid.Mastered)
	if total != 4 {
		t.Errorf("Expected 4 cards across all piles, got %d", total)
	}

	seen := 0
	for _, c := range grid.Review {
		if c.Card.ID == moved.ID {
			seen++
		}
	}
	if seen != 1 {
		t.Errorf("Expected moved card exactly once in review, found %d times", seen)
	}
	for _, c := range grid.Study {
		if c.Card.ID == moved.ID {
			t.Error("Moved card still present in study pile")
		}
	}
}

func TestMoveCurrentClampsIndex(t *testing.T) {
	s := NewSession(testDeck(3))

	// Position on the last card, then move it away. The index would run
	// past the shrunken pile, so it resets to 0.
	s.Next()
	s.Next()
	if got := s.State().Index; got != 2 {
		t.Fatalf("Expected index 2, got %d", got)
	}

	s.MoveCurrent(PileMastered)
	if got := s.State().Index; got != 0 {
		t.Errorf("Expected index clamped to 0, got %d", got)
	}
}

func TestMoveCurrentRejectsActivePile(t *testing.T) {
	s := NewSession(testDeck(2))
	if s.MoveCurrent(PileStudy) {
		t.Error("Expected move into the active pile to fail")
	}
}

func TestMoveCurrentEmptyPile(t *testing.T) {
	s := NewSession(testDeck(1))
	s.SwitchPile(PileReview)
	if s.MoveCurrent(PileMastered) {
		t.Error("Expected move from an empty pile to fail")
	}
}

func TestMoveCurrentResetsFlip(t *testing.T) {
	s := NewSession(testDeck(2))
	s.Flip()
	if !s.State().ShowAnswer {
		t.Fatal("Expected answer face after flip")
	}

	s.MoveCurrent(PileReview)
	if s.State().ShowAnswer {
		t.Error("Expected question face after a move")
	}
}

func TestNextPrevWrapAround(t *testing.T) {
	s := NewSession(testDeck(3))

	s.Next()
	s.Next()
	s.Next()
	if got := s.State().Index; got != 0 {
		t.Errorf("Expected next to wrap to 0, got %d", got)
	}

	s.Prev()
	if got := s.State().Index; got != 2 {
		t.Errorf("Expected prev to wrap to 2, got %d", got)
	}
}

func TestNextPrevSingleCard(t *testing.T) {
	s := NewSession(testDeck(1))

	s.Next()
	s.Prev()
	if got := s.State().Index; got != 0 {
		t.Errorf("Expected index to stay 0 on a pile of one, got %d", got)
	}
}

func TestNavigationOnEmptyPile(t *testing.T) {
	s := NewSession(testDeck(2))
	s.SwitchPile(PileMastered)

	s.Next()
	s.Prev()
	s.Flip()

	state := s.State()
	if state.Index != 0 || state.ShowAnswer {
		t.Errorf("Expected navigation no-ops on empty pile, got index=%d showAnswer=%v",
			state.Index, state.ShowAnswer)
	}
	if state.Current != nil {
		t.Error("Expected no current card on an empty pile")
	}
}

func TestSwitchPileResetsIndex(t *testing.T) {
	s := NewSession(testDeck(3))
	s.Next()
	s.Flip()

	s.SwitchPile(PileReview)
	state := s.State()
	if state.ActivePile != PileReview || state.Index != 0 || state.ShowAnswer {
		t.Errorf("Expected review pile at index 0 with question face, got %+v", state)
	}
}

func TestResetRestoresOriginalOrder(t *testing.T) {
	deck := testDeck(4)
	s := NewSession(deck)

	s.MoveCurrent(PileReview)
	s.MoveCurrent(PileMastered)
	s.Next()
	s.Flip()

	s.Reset()

	grid := s.Grid()
	if len(grid.Review) != 0 || len(grid.Mastered) != 0 {
		t.Fatalf("Expected empty review and mastered piles after reset, got %d and %d",
			len(grid.Review), len(grid.Mastered))
	}

	ids := pileIDs(grid.Study)
	if len(ids) != len(deck.Cards) {
		t.Fatalf("Expected %d cards in study pile, got %d", len(deck.Cards), len(ids))
	}
	for i, card := range deck.Cards {
		if ids[i] != card.ID {
			t.Errorf("Expected card %d to be %s, got %s", i, card.ID, ids[i])
		}
	}

	state := s.State()
	if state.ActivePile != PileStudy || state.Index != 0 || state.ShowAnswer {
		t.Errorf("Expected fresh study state after reset, got %+v", state)
	}
}

func TestCompletionDeckSorted(t *testing.T) {
	s := NewSession(testDeck(6))

	// Sort everything: two to review, four to mastered.
	s.MoveCurrent(PileReview)
	s.MoveCurrent(PileReview)
	for i := 0; i < 4; i++ {
		s.MoveCurrent(PileMastered)
	}

	c := s.State().Completion
	if c == nil {
		t.Fatal("Expected a completion once the study pile drained")
	}
	if c.Kind != "deck_sorted" {
		t.Fatalf("Expected kind deck_sorted, got %q", c.Kind)
	}
	if len(c.Review) != 2 {
		t.Errorf("Expected 2 review cards in the summary, got %d", len(c.Review))
	}
	if len(c.MasteredRecent) != masteredSummaryLimit {
		t.Errorf("Expected mastered summary capped at %d, got %d",
			masteredSummaryLimit, len(c.MasteredRecent))
	}

	// The summary shows the most recently mastered cards.
	grid := s.Grid()
	mastered := grid.Mastered
	recent := mastered[len(mastered)-masteredSummaryLimit:]
	for i, gc := range recent {
		if c.MasteredRecent[i].ID != gc.Card.ID {
			t.Errorf("Expected recent mastered card %d to be %s, got %s",
				i, gc.Card.ID, c.MasteredRecent[i].ID)
		}
	}
}

func TestCompletionPileEmpty(t *testing.T) {
	s := NewSession(testDeck(2))
	s.SwitchPile(PileReview)

	c := s.State().Completion
	if c == nil || c.Kind != "pile_empty" {
		t.Fatalf("Expected pile_empty completion, got %+v", c)
	}
	if len(c.Review) != 0 || len(c.MasteredRecent) != 0 {
		t.Error("Expected no card summary on an empty selected pile")
	}
}

func TestNoCompletionWhileCardsRemain(t *testing.T) {
	s := NewSession(testDeck(2))
	if s.State().Completion != nil {
		t.Error("Expected no completion while the study pile has cards")
	}
}

func TestPointerDragMovesCard(t *testing.T) {
	s := NewSession(testDeck(3))
	review := Rect{X: 0, Y: 300, Width: 100, Height: 80}
	mastered := Rect{X: 200, Y: 300, Width: 100, Height: 80}

	s.PointerDown(Point{X: 150, Y: 150}, review, mastered)
	s.PointerMove(Point{X: 180, Y: 250})

	if !s.State().Dragging {
		t.Fatal("Expected dragging state after crossing the threshold")
	}

	s.PointerMove(Point{X: 250, Y: 340})
	if got := s.State().HoverTarget; got != PileMastered {
		t.Errorf("Expected hover over mastered, got %q", got)
	}

	result := s.PointerUp(Point{X: 250, Y: 340})
	if !result.Moved || result.Target != PileMastered {
		t.Fatalf("Expected drop onto mastered, got %+v", result)
	}

	state := s.State()
	if state.PileCounts[PileMastered] != 1 || state.PileCounts[PileStudy] != 2 {
		t.Errorf("Expected pile counts study=2 mastered=1, got %v", state.PileCounts)
	}
	if state.Dragging {
		t.Error("Expected gesture discarded after release")
	}
}

func TestPointerClickFlipsCard(t *testing.T) {
	s := NewSession(testDeck(2))
	review := Rect{X: 0, Y: 300, Width: 100, Height: 80}
	mastered := Rect{X: 200, Y: 300, Width: 100, Height: 80}

	s.PointerDown(Point{X: 150, Y: 150}, review, mastered)
	s.PointerMove(Point{X: 154, Y: 153})
	result := s.PointerUp(Point{X: 154, Y: 153})

	if !result.Clicked || result.Moved {
		t.Fatalf("Expected a click result, got %+v", result)
	}
	if !s.State().ShowAnswer {
		t.Error("Expected click to flip to the answer face")
	}
}

func TestPointerDragMissesTargets(t *testing.T) {
	s := NewSession(testDeck(2))
	review := Rect{X: 0, Y: 300, Width: 100, Height: 80}
	mastered := Rect{X: 200, Y: 300, Width: 100, Height: 80}

	s.PointerDown(Point{X: 150, Y: 150}, review, mastered)
	s.PointerMove(Point{X: 150, Y: 250})
	result := s.PointerUp(Point{X: 150, Y: 250})

	if result.Clicked || result.Moved {
		t.Errorf("Expected a missed drag to do nothing, got %+v", result)
	}
	if s.State().PileCounts[PileStudy] != 2 {
		t.Error("Expected study pile unchanged after a missed drag")
	}
}

func TestPointerUpWithoutDown(t *testing.T) {
	s := NewSession(testDeck(1))
	result := s.PointerUp(Point{X: 10, Y: 10})
	if result.Clicked || result.Moved {
		t.Errorf("Expected no-op pointer up without a gesture, got %+v", result)
	}
}

func TestSelectCardFromGrid(t *testing.T) {
	deck := testDeck(3)
	s := NewSession(deck)
	s.MoveCurrent(PileReview)
	s.MoveCurrent(PileReview)

	target := deck.Cards[1]
	if !s.Select(PileReview, target.ID) {
		t.Fatal("Expected select to find the card in review")
	}

	state := s.State()
	if state.ActivePile != PileReview || state.Current == nil || state.Current.ID != target.ID {
		t.Errorf("Expected selected card current in review, got %+v", state)
	}

	if s.Select(PileMastered, target.ID) {
		t.Error("Expected select to fail for a pile the card is not in")
	}
}

func TestGridFlipIndependentOfCardView(t *testing.T) {
	deck := testDeck(2)
	s := NewSession(deck)
	id := deck.Cards[0].ID

	s.ToggleGridFlip(id)
	grid := s.Grid()
	if !grid.Study[0].Flipped || grid.Study[1].Flipped {
		t.Error("Expected only the toggled card flipped in the grid")
	}
	if s.State().ShowAnswer {
		t.Error("Expected single-card view unaffected by grid flips")
	}

	s.ToggleGridFlip(id)
	if s.Grid().Study[0].Flipped {
		t.Error("Expected second toggle to flip the card back")
	}
}

func TestFinishCounts(t *testing.T) {
	deck := testDeck(5)
	s := NewSession(deck)

	s.MoveCurrent(PileMastered)
	s.MoveCurrent(PileMastered)
	s.MoveCurrent(PileReview)

	record := s.Finish()
	if record.DeckID != deck.ID {
		t.Errorf("Expected deck ID %s, got %s", deck.ID, record.DeckID)
	}
	if record.CorrectCount != 2 {
		t.Errorf("Expected 2 correct, got %d", record.CorrectCount)
	}
	if record.TotalCount != 5 {
		t.Errorf("Expected total 5, got %d", record.TotalCount)
	}
	if len(record.StudiedCardIDs) != 3 {
		t.Errorf("Expected 3 studied cards, got %d", len(record.StudiedCardIDs))
	}
}

func TestManagerReplacesSession(t *testing.T) {
	m := NewManager()
	userID := uuid.New()

	first := m.Start(userID, testDeck(2))
	second := m.Start(userID, testDeck(3))
	if first == second {
		t.Fatal("Expected a fresh session on restart")
	}

	got, ok := m.Get(userID)
	if !ok || got != second {
		t.Error("Expected the manager to return the latest session")
	}

	ended, ok := m.End(userID)
	if !ok || ended != second {
		t.Error("Expected end to return the active session")
	}
	if _, ok := m.Get(userID); ok {
		t.Error("Expected no session after end")
	}
}
