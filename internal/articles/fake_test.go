package articles

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell/backend/internal/models"
)

type memStore struct {
	mu       sync.Mutex
	articles map[uuid.UUID]models.Article
	authors  map[uuid.UUID]models.ArticleAuthor
	clock    time.Time
	updates  int
	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		articles: map[uuid.UUID]models.Article{},
		authors:  map[uuid.UUID]models.ArticleAuthor{},
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) addAuthor(id uuid.UUID, email string, role models.Role) {
	m.authors[id] = models.ArticleAuthor{ID: id, Email: email, Role: role}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memStore) Create(_ context.Context, a *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = m.tick()
	a.UpdatedAt = a.CreatedAt
	m.articles[a.ID] = *a
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *memStore) GetView(_ context.Context, id uuid.UUID) (*models.ArticleView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return nil, nil
	}
	return &models.ArticleView{Article: a, Author: m.authors[a.AuthorID]}, nil
}

func (m *memStore) Update(_ context.Context, a *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if prev, ok := m.articles[a.ID]; ok && prev.PublishedAt != nil {
		a.PublishedAt = prev.PublishedAt
	}
	a.UpdatedAt = m.tick()
	m.articles[a.ID] = *a
	m.updates++
	return nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.articles, id)
	return nil
}

func (m *memStore) List(_ context.Context, f Filter, page models.PageRequest) ([]models.ArticleView, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []models.ArticleView
	for _, a := range m.articles {
		if f.BrandID != nil && a.BrandID != *f.BrandID {
			continue
		}
		if f.AuthorID != nil && a.AuthorID != *f.AuthorID {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, a.Status) {
			continue
		}
		if f.Search != "" {
			term := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(a.Title), term) && !strings.Contains(strings.ToLower(a.Content), term) {
				continue
			}
		}
		matched = append(matched, models.ArticleView{Article: a, Author: m.authors[a.AuthorID]})
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() > matched[j].ID.String()
		}
		if page.Order == models.OrderAsc {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func containsStatus(list []models.ArticleStatus, s models.ArticleStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type memBrands map[uuid.UUID]bool

func (b memBrands) Exists(_ context.Context, id uuid.UUID) (bool, error) { return b[id], nil }

type assignment struct{ brandID, authorID uuid.UUID }

type memAssignments map[assignment]bool

func (a memAssignments) IsAssigned(_ context.Context, brandID, authorID uuid.UUID) (bool, error) {
	return a[assignment{brandID, authorID}], nil
}
