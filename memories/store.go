// Package memories persists analyzed memories in SQLite and retrieves them
// as grounding contexts for answer generation.
package memories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/psharda/insight/analysis"
)

// Store provides access to the memories table.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewStore creates a Store backed by db.
func NewStore(db *sql.DB, logger zerolog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With().Str("component", "memoryStore").Logger(),
	}
}

// Save inserts a memory. A missing ID gets a fresh UUID and a missing user
// becomes "default"; the stored memory is returned.
func (s *Store) Save(ctx context.Context, m Memory) (Memory, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.UserID == "" {
		m.UserID = "default"
	}
	if m.PersonalInfoType == "" {
		m.PersonalInfoType = "none"
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	tagsJSON, err := json.Marshal(m.Tags)
	if err != nil {
		return Memory{}, fmt.Errorf("failed to encode tags: %w", err)
	}

	query, args, err := sq.Insert("memories").
		Columns("id", "user_id", "content", "summary", "tags", "personal_info_type", "importance", "created_at").
		Values(m.ID, m.UserID, m.Content, m.Summary, string(tagsJSON), m.PersonalInfoType, m.Importance, m.CreatedAt).
		ToSql()
	if err != nil {
		return Memory{}, fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return Memory{}, fmt.Errorf("failed to insert memory: %w", err)
	}

	s.logger.Debug().Str("id", m.ID).Str("user_id", m.UserID).Msg("Memory saved")
	return m, nil
}

// Get returns one memory by id.
func (s *Store) Get(ctx context.Context, id string) (*Memory, error) {
	query, args, err := selectMemories().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	row := s.db.QueryRowContext(ctx, query, args...)
	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load memory: %w", err)
	}
	return &m, nil
}

// List returns a user's memories, newest first.
func (s *Store) List(ctx context.Context, userID string, limit int) ([]Memory, error) {
	if userID == "" {
		userID = "default"
	}
	if limit <= 0 {
		limit = 50
	}

	query, args, err := selectMemories().
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanMemories(rows)
}

// Search returns a user's memories matching any of the terms, scored by how
// many terms each memory matches, best first. Matching is case-insensitive
// over content and summary.
func (s *Store) Search(ctx context.Context, userID string, terms []string, limit int) ([]analysis.MemoryContext, error) {
	if userID == "" {
		userID = "default"
	}
	if limit <= 0 {
		limit = 10
	}

	terms = lo.FilterMap(terms, func(t string, _ int) (string, bool) {
		t = strings.ToLower(strings.TrimSpace(t))
		return t, t != ""
	})
	if len(terms) == 0 {
		return []analysis.MemoryContext{}, nil
	}

	matchers := sq.Or{}
	for _, term := range terms {
		pattern := "%" + term + "%"
		matchers = append(matchers,
			sq.Like{"lower(content)": pattern},
			sq.Like{"lower(summary)": pattern},
		)
	}

	query, args, err := selectMemories().
		Where(sq.Eq{"user_id": userID}).
		Where(matchers).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search memories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	matched, err := scanMemories(rows)
	if err != nil {
		return nil, err
	}

	contexts := lo.Map(matched, func(m Memory, _ int) analysis.MemoryContext {
		ts := m.CreatedAt
		return analysis.MemoryContext{
			Content:        m.Content,
			Summary:        m.Summary,
			RelevanceScore: termOverlap(m, terms),
			Timestamp:      &ts,
		}
	})
	sort.SliceStable(contexts, func(i, j int) bool {
		return contexts[i].RelevanceScore > contexts[j].RelevanceScore
	})
	if len(contexts) > limit {
		contexts = contexts[:limit]
	}
	return contexts, nil
}

// PruneOlderThan deletes memories created before cutoff and reports how many
// rows were removed.
func (s *Store) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := sq.Delete("memories").
		Where(sq.Lt{"created_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to prune memories: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.logger.Info().Int64("pruned", n).Time("cutoff", cutoff).Msg("Old memories pruned")
	}
	return n, nil
}

func selectMemories() sq.SelectBuilder {
	return sq.Select("id", "user_id", "content", "summary", "tags", "personal_info_type", "importance", "created_at").
		From("memories")
}

// termOverlap is the fraction of search terms a memory matches.
func termOverlap(m Memory, terms []string) float64 {
	haystack := strings.ToLower(m.Content + " " + m.Summary)
	hits := 0
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(row rowScanner) (Memory, error) {
	var m Memory
	var tagsJSON string
	if err := row.Scan(&m.ID, &m.UserID, &m.Content, &m.Summary, &tagsJSON, &m.PersonalInfoType, &m.Importance, &m.CreatedAt); err != nil {
		return Memory{}, err
	}
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &m.Tags); err != nil {
			m.Tags = nil
		}
	}
	return m, nil
}

func scanMemories(rows *sql.Rows) ([]Memory, error) {
	out := []Memory{}
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan memory: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memories: %w", err)
	}
	return out, nil
}
