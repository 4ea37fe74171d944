package study

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"cardpile-backend/internal/models"
)

type Pile string

const (
	PileStudy    Pile = "study"
	PileReview   Pile = "review"
	PileMastered Pile = "mastered"
)

func ParsePile(s string) (Pile, error) {
	switch Pile(s) {
	case PileStudy, PileReview, PileMastered:
		return Pile(s), nil
	}
	return "", fmt.Errorf("unknown pile %q", s)
}

// How many recently mastered cards the completion summary shows. The
// grid view still exposes every card, so older entries stay reachable.
const masteredSummaryLimit = 3

// Session owns the in-memory partition of one deck's cards into three
// piles for the duration of a study run. It borrows a copy of the
// deck's card slice; nothing here touches persistence, and abandoning
// the session discards all pile state.
//
// Invariant: the piles are disjoint and their union equals the deck's
// card set at session start. A move removes a card from exactly one
// pile and appends it to exactly one other.
type Session struct {
	mu sync.Mutex

	DeckID    uuid.UUID
	DeckName  string
	StartedAt time.Time

	original []models.Flashcard
	piles    map[Pile][]models.Flashcard

	active     Pile
	index      int
	showAnswer bool

	gesture   *Gesture
	gridFlips map[uuid.UUID]bool

	studiedOrder []uuid.UUID
	studiedSet   map[uuid.UUID]bool
}

func NewSession(deck *models.FlashcardDeck) *Session {
	original := make([]models.Flashcard, len(deck.Cards))
	copy(original, deck.Cards)

	s := &Session{
		DeckID:    deck.ID,
		DeckName:  deck.Name,
		StartedAt: time.Now(),
		original:  original,
	}
	s.reset()
	return s
}

func (s *Session) reset() {
	studyPile := make([]models.Flashcard, len(s.original))
	copy(studyPile, s.original)

	s.piles = map[Pile][]models.Flashcard{
		PileStudy:    studyPile,
		PileReview:   {},
		PileMastered: {},
	}
	s.active = PileStudy
	s.index = 0
	s.showAnswer = false
	s.gesture = nil
	s.gridFlips = make(map[uuid.UUID]bool)
	s.studiedOrder = nil
	s.studiedSet = make(map[uuid.UUID]bool)
}

// Reset is a full reinitialization: the study pile is repopulated from
// the original deck order and the other piles are emptied. Not a merge.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) Current() (models.Flashcard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

func (s *Session) current() (models.Flashcard, bool) {
	pile := s.piles[s.active]
	if len(pile) == 0 {
		return models.Flashcard{}, false
	}
	return pile[s.index], true
}

// Flip toggles the question/answer face of the current card.
func (s *Session) Flip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.piles[s.active]) == 0 {
		return
	}
	s.showAnswer = !s.showAnswer
}

// Next advances the index modulo the active pile length. No-op on an
// empty pile; on a pile of one the index stays at 0.
func (s *Session) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	pile := s.piles[s.active]
	if len(pile) == 0 {
		return
	}
	s.index = (s.index + 1) % len(pile)
	s.showAnswer = false
}

func (s *Session) Prev() {
	s.mu.Lock()
	defer s.mu.Unlock()
	pile := s.piles[s.active]
	if len(pile) == 0 {
		return
	}
	s.index = (s.index - 1 + len(pile)) % len(pile)
	s.showAnswer = false
}

// SwitchPile makes another pile active. The index resets to 0 on every
// switch.
func (s *Session) SwitchPile(p Pile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = p
	s.index = 0
	s.showAnswer = false
	s.gesture = nil
}

// MoveCurrent moves the current card of the active pile to target.
// Returns false when there is no current card or target is the active
// pile.
func (s *Session) MoveCurrent(target Pile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveCurrent(target)
}

func (s *Session) moveCurrent(target Pile) bool {
	if target == s.active {
		return false
	}
	pile := s.piles[s.active]
	if len(pile) == 0 {
		return false
	}

	card := pile[s.index]
	s.piles[s.active] = append(pile[:s.index], pile[s.index+1:]...)
	s.piles[target] = append(s.piles[target], card)

	// Clamp the index; reset to 0 once it runs past the shrunken pile.
	if s.index >= len(s.piles[s.active]) {
		s.index = 0
	}
	s.showAnswer = false

	if !s.studiedSet[card.ID] {
		s.studiedSet[card.ID] = true
		s.studiedOrder = append(s.studiedOrder, card.ID)
	}

	return true
}

// PointerDown begins a gesture at origin with the on-screen boxes of
// the two drop targets.
func (s *Session) PointerDown(origin Point, review, mastered Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gesture = NewGesture(origin, []Target{
		{Pile: PileReview, Rect: review},
		{Pile: PileMastered, Rect: mastered},
	})
}

func (s *Session) PointerMove(p Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gesture == nil {
		return
	}
	s.gesture.Move(p)
}

type PointerResult struct {
	Clicked bool `json:"clicked"`
	Moved   bool `json:"moved"`
	Target  Pile `json:"target,omitempty"`
}

// PointerUp ends the gesture. A release inside a target pile's box
// moves the current card there; a release that never crossed the drag
// threshold counts as a click and flips the card. The gesture is
// discarded either way.
func (s *Session) PointerUp(p Point) PointerResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.gesture
	if g == nil {
		return PointerResult{}
	}
	s.gesture = nil

	if target, dropped := g.Release(p); dropped {
		if s.moveCurrent(target) {
			return PointerResult{Moved: true, Target: target}
		}
		return PointerResult{}
	}

	if !g.Dragging() {
		if len(s.piles[s.active]) > 0 {
			s.showAnswer = !s.showAnswer
		}
		return PointerResult{Clicked: true}
	}

	return PointerResult{}
}

// Select makes the given card current in its pile and returns to
// single-card view state.
func (s *Session) Select(pile Pile, cardID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, card := range s.piles[pile] {
		if card.ID == cardID {
			s.active = pile
			s.index = i
			s.showAnswer = false
			return true
		}
	}
	return false
}

// ToggleGridFlip flips one card in the grid view. Grid flips are keyed
// by card ID and independent of the single-card flip state.
func (s *Session) ToggleGridFlip(cardID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gridFlips[cardID] = !s.gridFlips[cardID]
}

type GridCard struct {
	Card    models.Flashcard `json:"card"`
	Flipped bool             `json:"flipped"`
}

type GridView struct {
	Study    []GridCard `json:"study"`
	Review   []GridCard `json:"review"`
	Mastered []GridCard `json:"mastered"`
}

// Grid is a read-only projection of the three piles.
func (s *Session) Grid() GridView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return GridView{
		Study:    s.gridCards(PileStudy),
		Review:   s.gridCards(PileReview),
		Mastered: s.gridCards(PileMastered),
	}
}

func (s *Session) gridCards(p Pile) []GridCard {
	cards := make([]GridCard, 0, len(s.piles[p]))
	for _, card := range s.piles[p] {
		cards = append(cards, GridCard{Card: card, Flipped: s.gridFlips[card.ID]})
	}
	return cards
}

type Completion struct {
	// "deck_sorted" when the study pile drained; "pile_empty" when an
	// empty review/mastered pile was selected directly.
	Kind           string             `json:"kind"`
	Review         []models.Flashcard `json:"review,omitempty"`
	MasteredRecent []models.Flashcard `json:"mastered_recent,omitempty"`
}

type State struct {
	DeckID      uuid.UUID         `json:"deck_id"`
	DeckName    string            `json:"deck_name"`
	ActivePile  Pile              `json:"active_pile"`
	Index       int               `json:"index"`
	ShowAnswer  bool              `json:"show_answer"`
	Current     *models.Flashcard `json:"current,omitempty"`
	PileCounts  map[Pile]int      `json:"pile_counts"`
	Dragging    bool              `json:"dragging"`
	HoverTarget Pile              `json:"hover_target,omitempty"`
	Completion  *Completion       `json:"completion,omitempty"`
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := State{
		DeckID:     s.DeckID,
		DeckName:   s.DeckName,
		ActivePile: s.active,
		Index:      s.index,
		ShowAnswer: s.showAnswer,
		PileCounts: map[Pile]int{
			PileStudy:    len(s.piles[PileStudy]),
			PileReview:   len(s.piles[PileReview]),
			PileMastered: len(s.piles[PileMastered]),
		},
	}

	if card, ok := s.current(); ok {
		state.Current = &card
	}

	if s.gesture != nil {
		state.Dragging = s.gesture.Dragging()
		if hover, ok := s.gesture.Hover(); ok {
			state.HoverTarget = hover
		}
	}

	state.Completion = s.completion()

	return state
}

func (s *Session) completion() *Completion {
	if len(s.piles[s.active]) > 0 {
		return nil
	}

	if s.active == PileStudy {
		mastered := s.piles[PileMastered]
		recent := mastered
		if len(recent) > masteredSummaryLimit {
			recent = recent[len(recent)-masteredSummaryLimit:]
		}
		c := &Completion{
			Kind:           "deck_sorted",
			Review:         append([]models.Flashcard{}, s.piles[PileReview]...),
			MasteredRecent: append([]models.Flashcard{}, recent...),
		}
		return c
	}

	return &Completion{Kind: "pile_empty"}
}

// Finish produces the session record for the study log: mastered cards
// count as correct answers, and studied cards are those that left a
// pile at least once.
func (s *Session) Finish() models.StudySessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.StudySessionRecord{
		DeckID:         s.DeckID,
		StartedAt:      s.StartedAt,
		EndedAt:        time.Now(),
		CorrectCount:   len(s.piles[PileMastered]),
		TotalCount:     len(s.original),
		StudiedCardIDs: append([]uuid.UUID{}, s.studiedOrder...),
	}
}
