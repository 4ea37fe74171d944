package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"cardpile-backend/internal/models"
)

// ImportError is the structured result of a failed import. It never
// escapes the importer as anything other than a value the caller can
// show to the user.
type ImportError struct {
	Code     string
	Message  string
	FileName string
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("%s: %s", e.FileName, e.Message)
}

// Header synonyms, checked in priority order per field.
var (
	questionHeaders = []string{"question", "q", "front"}
	answerHeaders   = []string{"answer", "a", "back"}
	imageHeaders    = []string{"imageurl", "image", "img"}
)

// BIFF8 caps a sheet at 65536 rows, so reading up to that many loses
// nothing from a legacy workbook.
const xlsRowLimit = 65536

type ImportService struct{}

func NewImportService() *ImportService {
	return &ImportService{}
}

// Parse dispatches on the file extension. Unsupported extensions fail
// immediately without inspecting the content.
func (s *ImportService) Parse(fileName string, data []byte) ([]models.Flashcard, error) {
	ext := strings.ToLower(fileName)
	idx := strings.LastIndex(ext, ".")
	if idx >= 0 {
		ext = ext[idx+1:]
	} else {
		ext = ""
	}

	switch ext {
	case "csv":
		return s.parseCSV(fileName, data)
	case "xlsx":
		return s.parseXLSX(fileName, data)
	case "xls":
		return s.parseXLS(fileName, data)
	default:
		return nil, &ImportError{
			Code:     "UNSUPPORTED_FORMAT",
			Message:  fmt.Sprintf("Unsupported file type %q. Please upload a .csv, .xlsx or .xls file.", ext),
			FileName: fileName,
		}
	}
}

func (s *ImportService) parseCSV(fileName string, data []byte) ([]models.Flashcard, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err != nil {
		return nil, &ImportError{
			Code:     "UNREADABLE_FILE",
			Message:  "Could not read the file",
			FileName: fileName,
		}
	}

	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	qCol, qOK := findColumn(header, questionHeaders, false)
	aCol, aOK := findColumn(header, answerHeaders, false)
	imgCol, imgOK := findColumn(header, imageHeaders, false)

	var cards []models.Flashcard
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ImportError{
				Code:     "UNREADABLE_FILE",
				Message:  "Could not read the file",
				FileName: fileName,
			}
		}

		question, answer, image := "", "", ""
		if qOK && qCol < len(row) {
			question = strings.TrimSpace(row[qCol])
		}
		if aOK && aCol < len(row) {
			answer = strings.TrimSpace(row[aCol])
		}
		if imgOK && imgCol < len(row) {
			image = strings.TrimSpace(row[imgCol])
		}

		if card, ok := buildCard(question, answer, image); ok {
			cards = append(cards, card)
		}
	}

	if len(cards) == 0 {
		return nil, &ImportError{
			Code:     "NO_VALID_CARDS",
			Message:  "no valid flashcards found",
			FileName: fileName,
		}
	}

	return cards, nil
}

func (s *ImportService) parseXLSX(fileName string, data []byte) ([]models.Flashcard, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ImportError{
			Code:     "UNREADABLE_FILE",
			Message:  "Could not read the file",
			FileName: fileName,
		}
	}
	defer f.Close()

	// First sheet only
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ImportError{
			Code:     "UNREADABLE_FILE",
			Message:  "Spreadsheet has no sheets",
			FileName: fileName,
		}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil || len(rows) == 0 {
		return nil, &ImportError{
			Code:     "UNREADABLE_FILE",
			Message:  "Could not read rows from the first sheet",
			FileName: fileName,
		}
	}

	return s.cardsFromRows(fileName, rows)
}

// parseXLS handles legacy OLE-container workbooks, which excelize does
// not read. ReadAllCells flattens the workbook; row 0 is still the
// header.
func (s *ImportService) parseXLS(fileName string, data []byte) ([]models.Flashcard, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, &ImportError{
			Code:     "UNREADABLE_FILE",
			Message:  "Could not read the file",
			FileName: fileName,
		}
	}

	rows := wb.ReadAllCells(xlsRowLimit)
	if len(rows) == 0 {
		return nil, &ImportError{
			Code:     "UNREADABLE_FILE",
			Message:  "Could not read rows from the first sheet",
			FileName: fileName,
		}
	}

	return s.cardsFromRows(fileName, rows)
}

// cardsFromRows applies the spreadsheet rules to raw cell rows: row 0
// is the header, columns are located by substring match, and the
// question and answer columns are required before any data row is
// touched.
func (s *ImportService) cardsFromRows(fileName string, rows [][]string) ([]models.Flashcard, error) {
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	qCol, qOK := findColumn(header, questionHeaders, true)
	aCol, aOK := findColumn(header, answerHeaders, true)
	imgCol, imgOK := findColumn(header, imageHeaders, true)

	if !qOK {
		return nil, &ImportError{
			Code:     "MISSING_COLUMN",
			Message:  "Could not find a Question column (Question, Q or Front)",
			FileName: fileName,
		}
	}
	if !aOK {
		return nil, &ImportError{
			Code:     "MISSING_COLUMN",
			Message:  "Could not find an Answer column (Answer, A or Back)",
			FileName: fileName,
		}
	}

	var cards []models.Flashcard
	for _, row := range rows[1:] {
		question, answer, image := "", "", ""
		if qCol < len(row) {
			question = strings.TrimSpace(row[qCol])
		}
		if aCol < len(row) {
			answer = strings.TrimSpace(row[aCol])
		}
		if imgOK && imgCol < len(row) {
			image = strings.TrimSpace(row[imgCol])
		}

		if card, ok := buildCard(question, answer, image); ok {
			cards = append(cards, card)
		}
	}

	if len(cards) == 0 {
		return nil, &ImportError{
			Code:     "NO_VALID_CARDS",
			Message:  "no valid flashcards found",
			FileName: fileName,
		}
	}

	return cards, nil
}

// findColumn returns the index of the first header matching one of the
// candidates, checked in priority order. substring switches between the
// CSV rule (exact match) and the spreadsheet rule (substring match).
func findColumn(header []string, candidates []string, substring bool) (int, bool) {
	for _, candidate := range candidates {
		for i, h := range header {
			if h == candidate || (substring && strings.Contains(h, candidate)) {
				return i, true
			}
		}
	}
	return 0, false
}

// buildCard accepts a row only if both question and answer survived
// trimming. Counters start at zero; no dedup against existing decks.
func buildCard(question, answer, image string) (models.Flashcard, bool) {
	if question == "" || answer == "" {
		return models.Flashcard{}, false
	}

	card := models.Flashcard{
		ID:       uuid.New(),
		Question: question,
		Answer:   answer,
	}
	if image != "" {
		card.ImageURL = &image
	}
	return card, true
}
