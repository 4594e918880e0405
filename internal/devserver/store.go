// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"sort"
	"strings"
	"sync"
	"time"
)

type user struct {
	ID           int
	Email        string
	Name         string
	PasswordHash []byte
	Phone        string
	Country      string
	State        string
	CreatedAt    time.Time
	LastActive   time.Time
}

type chatSession struct {
	ID        int
	Email     string
	Title     string
	CreatedAt time.Time
	EndedAt   time.Time
	EmailSent bool
}

type qaPair struct {
	ID        int
	SessionID int
	Email     string
	Question  string
	Answer    string
	Category  string
	Rating    int
	Helpful   *bool
	Feedback  string
	CreatedAt time.Time
}

// memStore holds all server state behind one mutex.
type memStore struct {
	mu       sync.Mutex
	nextID   int
	users    map[string]*user
	sessions map[int]*chatSession
	qa       map[int]*qaPair
}

func newMemStore() *memStore {
	return &memStore{
		nextID:   1,
		users:    make(map[string]*user),
		sessions: make(map[int]*chatSession),
		qa:       make(map[int]*qaPair),
	}
}

func (s *memStore) id() int {
	id := s.nextID
	s.nextID++
	return id
}

func userKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// sessionsOf returns the user's sessions, newest first.
func (s *memStore) sessionsOf(email string) []*chatSession {
	var out []*chatSession
	for _, cs := range s.sessions {
		if userKey(cs.Email) == userKey(email) {
			out = append(out, cs)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// pairsOf returns the session's exchanges in order.
func (s *memStore) pairsOf(sessionID int) []*qaPair {
	var out []*qaPair
	for _, p := range s.qa {
		if p.SessionID == sessionID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) allPairs() []*qaPair {
	out := make([]*qaPair, 0, len(s.qa))
	for _, p := range s.qa {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// Tax categories assigned to questions.
const (
	CategoryGST          = "gst"
	CategoryIncomeTax    = "income_tax"
	CategoryCorporateTax = "corporate_tax"
	CategoryTaxPlanning  = "tax_planning"
	CategoryCompliance   = "compliance"
	CategoryAccounting   = "accounting"
	CategoryGeneral      = "general"
)

var categoryTerms = []struct {
	category string
	terms    []string
}{
	{CategoryGST, []string{"gst", "goods and service tax", "input tax", "output tax"}},
	{CategoryIncomeTax, []string{"income tax", "itr", "form 16", "tds"}},
	{CategoryCorporateTax, []string{"corporate", "company tax", "business tax"}},
	{CategoryTaxPlanning, []string{"plan", "saving", "deduction", "exemption"}},
	{CategoryCompliance, []string{"comply", "deadline", "file", "return"}},
	{CategoryAccounting, []string{"account", "book", "record", "balance"}},
}

// Categorize assigns a tax category by keyword, first match wins.
func Categorize(question string) string {
	q := strings.ToLower(question)
	for _, c := range categoryTerms {
		for _, term := range c.terms {
			if strings.Contains(q, term) {
				return c.category
			}
		}
	}
	return CategoryGeneral
}
