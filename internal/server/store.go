package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/at-ishikawa/parentstudy/internal/worksheet"
)

// worksheetStore keeps the most recent worksheets in memory. Grading does not remove a worksheet,
// so it can be graded again.
// The oldest worksheet is evicted once the store holds more than limit.
type worksheetStore struct {
	mu     sync.Mutex
	limit  int
	sheets map[string]worksheet.Worksheet
	order  []string
}

func newWorksheetStore(limit int) *worksheetStore {
	if limit <= 0 {
		limit = 1
	}
	return &worksheetStore{
		limit:  limit,
		sheets: make(map[string]worksheet.Worksheet),
	}
}

func (s *worksheetStore) Put(ws worksheet.Worksheet) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sheets[id] = ws
	s.order = append(s.order, id)
	for len(s.order) > s.limit {
		delete(s.sheets, s.order[0])
		s.order = s.order[1:]
	}
	return id
}

func (s *worksheetStore) Get(id string) (worksheet.Worksheet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws, ok := s.sheets[id]
	return ws, ok
}

func (s *worksheetStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sheets)
}
