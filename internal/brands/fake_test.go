package brands

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell/backend/internal/apperr"
	"github.com/inkwell/backend/internal/models"
	"github.com/inkwell/backend/internal/users"
	"github.com/inkwell/backend/pkg/storage"
)

// memDB backs both Store and UserStore so the transactor can roll back all of it.
type memDB struct {
	mu          sync.Mutex
	brands      map[uuid.UUID]models.Brand
	users       map[uuid.UUID]models.User
	assignments map[[2]uuid.UUID]models.BrandAuthor
	clock       time.Time

	failSetBrand error
}

func newMemDB() *memDB {
	return &memDB{
		brands:      map[uuid.UUID]models.Brand{},
		users:       map[uuid.UUID]models.User{},
		assignments: map[[2]uuid.UUID]models.BrandAuthor{},
		clock:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memDB) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

type snapshot struct {
	brands      map[uuid.UUID]models.Brand
	users       map[uuid.UUID]models.User
	assignments map[[2]uuid.UUID]models.BrandAuthor
}

func (m *memDB) snapshot() snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := snapshot{
		brands:      make(map[uuid.UUID]models.Brand, len(m.brands)),
		users:       make(map[uuid.UUID]models.User, len(m.users)),
		assignments: make(map[[2]uuid.UUID]models.BrandAuthor, len(m.assignments)),
	}
	for k, v := range m.brands {
		s.brands[k] = v
	}
	for k, v := range m.users {
		s.users[k] = v
	}
	for k, v := range m.assignments {
		s.assignments[k] = v
	}
	return s
}

func (m *memDB) restore(s snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.brands, m.users, m.assignments = s.brands, s.users, s.assignments
}

// WithinTx restores the pre-transaction state when fn fails.
func (m *memDB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s := m.snapshot()
	if err := fn(ctx); err != nil {
		m.restore(s)
		return err
	}
	return nil
}

func (m *memDB) Create(_ context.Context, b *models.Brand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.brands {
		if existing.Name == b.Name {
			return apperr.Conflict("brand already exists")
		}
	}
	b.ID = uuid.New()
	b.CreatedAt = m.tick()
	b.UpdatedAt = b.CreatedAt
	m.brands[b.ID] = *b
	return nil
}

func (m *memDB) GetByID(_ context.Context, id uuid.UUID) (*models.Brand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.brands[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *memDB) GetByName(_ context.Context, name string) (*models.Brand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.brands {
		if b.Name == name {
			return &b, nil
		}
	}
	return nil, nil
}

func (m *memDB) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.brands[id]
	return ok, nil
}

func (m *memDB) view(b models.Brand) models.BrandView {
	v := models.BrandView{Brand: b}
	if u, ok := m.users[b.CreatedBy]; ok {
		v.Creator = &models.BrandCreator{ID: u.ID, Email: u.Email}
	}
	return v
}

func (m *memDB) GetView(_ context.Context, id uuid.UUID) (*models.BrandView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.brands[id]
	if !ok {
		return nil, nil
	}
	v := m.view(b)
	return &v, nil
}

func (m *memDB) List(_ context.Context, f Filter, page models.PageRequest) ([]models.BrandView, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.BrandView
	for _, b := range m.brands {
		if f.Status != nil && b.Status != *f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(b.Name), strings.ToLower(f.Search)) {
			continue
		}
		all = append(all, m.view(b))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (m *memDB) Update(_ context.Context, b *models.Brand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.brands[b.ID]; !ok {
		return apperr.NotFound("brand not found")
	}
	b.UpdatedAt = m.tick()
	m.brands[b.ID] = *b
	return nil
}

func (m *memDB) UpdateStatus(_ context.Context, b *models.Brand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.brands[b.ID]
	if !ok {
		return apperr.NotFound("brand not found")
	}
	stored.Status = b.Status
	stored.UpdatedAt = m.tick()
	m.brands[b.ID] = stored
	return nil
}

// Delete mirrors the ON DELETE CASCADE of the schema.
func (m *memDB) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.brands[id]; !ok {
		return false, nil
	}
	delete(m.brands, id)
	for k := range m.assignments {
		if k[0] == id {
			delete(m.assignments, k)
		}
	}
	for uid, u := range m.users {
		if u.BrandID != nil && *u.BrandID == id {
			delete(m.users, uid)
		}
	}
	return true, nil
}

func (m *memDB) Assign(_ context.Context, a *models.BrandAuthor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]uuid.UUID{a.BrandID, a.AuthorID}
	if _, ok := m.assignments[key]; ok {
		return apperr.Conflict("author already assigned to this brand")
	}
	a.ID = uuid.New()
	a.CreatedAt = m.tick()
	m.assignments[key] = *a
	return nil
}

func (m *memDB) IsAssigned(_ context.Context, brandID, authorID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.assignments[[2]uuid.UUID{brandID, authorID}]
	return ok, nil
}

func (m *memDB) ListAuthors(_ context.Context, brandID uuid.UUID) ([]models.AssignedAuthor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []models.AssignedAuthor{}
	for k, a := range m.assignments {
		if k[0] != brandID {
			continue
		}
		list = append(list, models.AssignedAuthor{AuthorID: a.AuthorID, Email: m.users[a.AuthorID].Email, AssignedAt: a.CreatedAt})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].AssignedAt.After(list[j].AssignedAt) })
	return list, nil
}

// userStore adapts memDB to UserStore; its Create/GetByID would clash with the brand methods.
type userStore struct{ db *memDB }

func (s userStore) find(match func(models.User) bool) *models.User {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if match(u) {
			return &u
		}
	}
	return nil
}

func (s userStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return s.find(func(u models.User) bool { return u.ID == id }), nil
}

func (s userStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return s.find(func(u models.User) bool { return u.Email == email }), nil
}

func (s userStore) GetBrandUser(_ context.Context, brandID uuid.UUID) (*models.User, error) {
	return s.find(func(u models.User) bool {
		return u.Role == models.RoleBrand && u.BrandID != nil && *u.BrandID == brandID
	}), nil
}

func (s userStore) Create(_ context.Context, u *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.users {
		if existing.Email == u.Email {
			return apperr.Conflict("user already exists")
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = s.db.tick()
	u.UpdatedAt = u.CreatedAt
	s.db.users[u.ID] = *u
	return nil
}

func (s userStore) SetBrand(_ context.Context, userID, brandID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.failSetBrand != nil {
		return s.db.failSetBrand
	}
	u, ok := s.db.users[userID]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.BrandID = &brandID
	s.db.users[userID] = u
	return nil
}

func (s userStore) UpdateCredentials(_ context.Context, userID uuid.UUID, email, passwordHash *string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[userID]
	if !ok {
		return apperr.NotFound("user not found")
	}
	if email != nil {
		u.Email = *email
	}
	if passwordHash != nil {
		u.Password = *passwordHash
	}
	s.db.users[userID] = u
	return nil
}

func (s userStore) add(email string, role models.Role, brandID *uuid.UUID) models.User {
	u := models.User{Email: email, Password: "x", Role: role, BrandID: brandID}
	if err := s.Create(context.Background(), &u); err != nil {
		panic(err)
	}
	return u
}

type stubNotifier struct {
	fail  bool
	sent  []string
	calls int
}

func (n *stubNotifier) NotifyCredentials(_ context.Context, u *models.User, password string) *users.Created {
	n.calls++
	if n.fail {
		return &users.Created{User: u.ToPublic(), Warning: users.WarnCredentialsNotSent}
	}
	n.sent = append(n.sent, u.Email+":"+password)
	return &users.Created{User: u.ToPublic(), CredentialsSent: true}
}

type stubLogos struct {
	deleted   []uuid.UUID
	deleteErr error
}

func (l *stubLogos) PresignLogoUpload(_ context.Context, brandID uuid.UUID, contentType string) (*storage.PresignedUpload, error) {
	ext, ok := storage.LogoExtension(contentType)
	if !ok {
		return nil, errors.New("unsupported")
	}
	key := storage.LogoKey(brandID, ext)
	return &storage.PresignedUpload{UploadURL: "https://s3.test/" + key + "?sig", PublicURL: "https://s3.test/" + key, Key: key}, nil
}

func (l *stubLogos) DeleteLogos(_ context.Context, brandID uuid.UUID) error {
	l.deleted = append(l.deleted, brandID)
	return l.deleteErr
}
