// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/advith-tui/internal/model"
	"github.com/jeranaias/advith-tui/internal/util"
)

// ErrTranscriptNotFound is returned when a transcript doesn't exist.
var ErrTranscriptNotFound = errors.New("transcript not found")

// DefaultMaxTranscripts is how many transcripts are kept.
const DefaultMaxTranscripts = 100

// =============================================================================
// TRANSCRIPT TYPES
// =============================================================================

// Transcript is a saved copy of a conversation.
type Transcript struct {
	// ID names the file: the server conversation id when known, otherwise
	// the local id.
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Title          string    `json:"title"`
	Email          string    `json:"email"`
	CreatedAt      time.Time `json:"created_at"`
	SavedAt        time.Time `json:"saved_at"`
	EmailSent      bool      `json:"email_sent,omitempty"`

	Messages []TranscriptMessage `json:"messages"`
}

// TranscriptMessage is one saved message.
type TranscriptMessage struct {
	Role      string    `json:"role"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	ServerID  string    `json:"server_id,omitempty"`
	IsError   bool      `json:"is_error,omitempty"`
}

// TranscriptMeta is the listing view of a transcript.
type TranscriptMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	SavedAt      time.Time `json:"saved_at"`
	MessageCount int       `json:"message_count"`
	Preview      string    `json:"preview"`
}

// FromConversation builds a transcript of conv. Pending messages are
// skipped since their outcome is unknown.
func FromConversation(conv *model.Conversation, email string) *Transcript {
	t := &Transcript{
		ID:             conv.LocalID,
		ConversationID: conv.ID,
		Title:          conv.GetTitle(),
		Email:          email,
		CreatedAt:      conv.CreatedAt,
		EmailSent:      conv.EmailSent,
		Messages:       make([]TranscriptMessage, 0, len(conv.Messages)),
	}
	if conv.ID != "" {
		t.ID = conv.ID
	}
	for _, m := range conv.Messages {
		if m.IsPending() {
			continue
		}
		t.Messages = append(t.Messages, TranscriptMessage{
			Role:      m.Role.String(),
			Sender:    m.Sender,
			Content:   m.Content,
			Timestamp: m.Timestamp,
			ServerID:  m.ServerID,
			IsError:   m.IsError,
		})
	}
	return t
}

// Preview returns the first user message truncated for listings.
func (t *Transcript) Preview() string {
	for _, m := range t.Messages {
		if m.Role == string(model.RoleUser) && m.Content != "" {
			return util.TruncateWidth(util.FirstLine(m.Content), 60)
		}
	}
	return ""
}

// ExportMarkdown renders the transcript as Markdown.
func (t *Transcript) ExportMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# " + t.Title + "\n\n")
	if !t.CreatedAt.IsZero() {
		sb.WriteString("Started: " + t.CreatedAt.Format("2006-01-02 15:04") + "\n\n")
	}
	sb.WriteString("---\n\n")
	for _, m := range t.Messages {
		sb.WriteString("**" + m.Sender + "**")
		if !m.Timestamp.IsZero() {
			sb.WriteString(" (" + m.Timestamp.Format(model.TimeLayout) + ")")
		}
		sb.WriteString(":\n\n")
		sb.WriteString(m.Content)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}

// =============================================================================
// TRANSCRIPT STORE
// =============================================================================

// TranscriptStore keeps transcripts in a directory.
type TranscriptStore struct {
	BaseDir string

	// MaxTranscripts limits stored transcripts (0 = unlimited).
	MaxTranscripts int

	now func() time.Time
}

// NewTranscriptStoreWithDir creates a store rooted at baseDir.
func NewTranscriptStoreWithDir(baseDir string) (*TranscriptStore, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}
	return &TranscriptStore{
		BaseDir:        baseDir,
		MaxTranscripts: DefaultMaxTranscripts,
		now:            time.Now,
	}, nil
}

// Save writes t, replacing any earlier save of the same conversation, and
// returns its ID.
func (s *TranscriptStore) Save(t *Transcript) (string, error) {
	id := sanitizeID(t.ID)
	if id == "" {
		return "", fmt.Errorf("transcript has no id")
	}
	t.ID = id
	t.SavedAt = s.now()

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", err
	}
	if err := util.AtomicWriteFile(s.filePath(id), data, 0600); err != nil {
		return "", err
	}

	if s.MaxTranscripts > 0 {
		s.enforceLimit()
	}
	return id, nil
}

func (s *TranscriptStore) enforceLimit() {
	metas, err := s.List()
	if err != nil || len(metas) <= s.MaxTranscripts {
		return
	}
	// List is newest first; drop from the tail.
	for _, m := range metas[s.MaxTranscripts:] {
		_ = s.Delete(m.ID)
	}
}

// Load reads a transcript by ID.
func (s *TranscriptStore) Load(id string) (*Transcript, error) {
	data, err := os.ReadFile(s.filePath(sanitizeID(id)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTranscriptNotFound
		}
		return nil, err
	}
	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("corrupt transcript %s: %w", id, err)
	}
	return &t, nil
}

// Resolve loads a transcript by ID, or by its 1-based position in List.
func (s *TranscriptStore) Resolve(ref string) (*Transcript, error) {
	if t, err := s.Load(ref); err == nil {
		return t, nil
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return nil, ErrTranscriptNotFound
	}
	metas, err := s.List()
	if err != nil {
		return nil, err
	}
	if n < 1 || n > len(metas) {
		return nil, ErrTranscriptNotFound
	}
	return s.Load(metas[n-1].ID)
}

// List returns every readable transcript, newest first.
func (s *TranscriptStore) List() ([]TranscriptMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []TranscriptMeta{}, nil
		}
		return nil, err
	}

	metas := make([]TranscriptMeta, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		t, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue // skip corrupt files
		}
		metas = append(metas, TranscriptMeta{
			ID:           t.ID,
			Title:        t.Title,
			SavedAt:      t.SavedAt,
			MessageCount: len(t.Messages),
			Preview:      t.Preview(),
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].SavedAt.After(metas[j].SavedAt)
	})
	return metas, nil
}

// Search returns transcripts with a message containing query,
// case-insensitively.
func (s *TranscriptStore) Search(query string) ([]TranscriptMeta, error) {
	all, err := s.List()
	if err != nil || query == "" {
		return all, err
	}
	query = strings.ToLower(query)

	var results []TranscriptMeta
	for _, meta := range all {
		if strings.Contains(strings.ToLower(meta.Title), query) {
			results = append(results, meta)
			continue
		}
		t, err := s.Load(meta.ID)
		if err != nil {
			continue
		}
		for _, m := range t.Messages {
			if strings.Contains(strings.ToLower(m.Content), query) {
				results = append(results, meta)
				break
			}
		}
	}
	return results, nil
}

// Delete removes a transcript.
func (s *TranscriptStore) Delete(id string) error {
	if err := os.Remove(s.filePath(sanitizeID(id))); err != nil {
		if os.IsNotExist(err) {
			return ErrTranscriptNotFound
		}
		return err
	}
	return nil
}

func (s *TranscriptStore) filePath(id string) string {
	return filepath.Join(s.BaseDir, id+".json")
}

// sanitizeID keeps ids usable as file names.
func sanitizeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// =============================================================================
// FORMATTING
// =============================================================================

// FormatList renders metas as a table for the terminal.
func FormatList(metas []TranscriptMeta) string {
	if len(metas) == 0 {
		return "No saved transcripts."
	}

	var sb strings.Builder
	sb.WriteString(util.PadRight("#", 4) + util.PadRight("ID", 14) + util.PadRight("Saved", 18) +
		util.PadRight("Msgs", 6) + "Title\n")
	sb.WriteString(strings.Repeat("-", 72) + "\n")
	for i, m := range metas {
		sb.WriteString(util.PadRight(strconv.Itoa(i+1), 4))
		sb.WriteString(util.PadRight(util.TruncateWidth(m.ID, 12), 14))
		sb.WriteString(util.PadRight(m.SavedAt.Format("2006-01-02 15:04"), 18))
		sb.WriteString(util.PadRight(strconv.Itoa(m.MessageCount), 6))
		sb.WriteString(util.TruncateWidth(m.Title, 30))
		sb.WriteString("\n")
	}
	return sb.String()
}
