package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
	"github.com/ArtemDidyk-Dev/travel-api/internal/queue"
)

var errDuplicate = &pgconn.PgError{Code: "23505"}

type memTravelRepo struct {
	travels []domain.Travel
}

func (m *memTravelRepo) Create(ctx context.Context, travel *domain.Travel) (*domain.Travel, error) {
	stored := *travel
	stored.ID = uuid.New()
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.travels = append(m.travels, stored)
	return &stored, nil
}

func (m *memTravelRepo) Update(ctx context.Context, id uuid.UUID, fields domain.TravelChangeFields) (*domain.Travel, error) {
	for i := range m.travels {
		if m.travels[i].ID != id {
			continue
		}
		if fields.Name != nil {
			m.travels[i].Name = *fields.Name
		}
		if fields.Slug != nil {
			m.travels[i].Slug = *fields.Slug
		}
		if fields.Description != nil {
			m.travels[i].Description = *fields.Description
		}
		if fields.NumberOfDays != nil {
			m.travels[i].NumberOfDays = *fields.NumberOfDays
		}
		if fields.IsPublic != nil {
			m.travels[i].IsPublic = *fields.IsPublic
		}
		m.travels[i].UpdatedAt = time.Now()
		stored := m.travels[i]
		return &stored, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memTravelRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i := range m.travels {
		if m.travels[i].ID == id {
			m.travels = append(m.travels[:i], m.travels[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memTravelRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Travel, error) {
	for _, travel := range m.travels {
		if travel.ID == id {
			stored := travel
			return &stored, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memTravelRepo) FindBySlug(ctx context.Context, slug string, includePrivate bool) (*domain.Travel, error) {
	for _, travel := range m.travels {
		if travel.Slug != slug {
			continue
		}
		if !travel.IsPublic && !includePrivate {
			return nil, sql.ErrNoRows
		}
		stored := travel
		return &stored, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memTravelRepo) List(ctx context.Context, includePrivate bool, limit, offset int) ([]domain.Travel, error) {
	visible := m.visible(includePrivate)
	if offset >= len(visible) {
		return nil, nil
	}
	end := offset + limit
	if end > len(visible) {
		end = len(visible)
	}
	return visible[offset:end], nil
}

func (m *memTravelRepo) Count(ctx context.Context, includePrivate bool) (int, error) {
	return len(m.visible(includePrivate)), nil
}

func (m *memTravelRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	for _, travel := range m.travels {
		if travel.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *memTravelRepo) visible(includePrivate bool) []domain.Travel {
	out := make([]domain.Travel, 0, len(m.travels))
	for _, travel := range m.travels {
		if travel.IsPublic || includePrivate {
			out = append(out, travel)
		}
	}
	return out
}

// memTourRepo records the filter and bounds passed to the listing calls so
// tests can assert what the service forwarded.
type memTourRepo struct {
	tours []domain.Tour

	lastFilter domain.TourListFilter
	lastLimit  int
	lastOffset int
}

func (m *memTourRepo) Create(ctx context.Context, tour *domain.Tour) (*domain.Tour, error) {
	stored := *tour
	stored.ID = uuid.New()
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.tours = append(m.tours, stored)
	return &stored, nil
}

func (m *memTourRepo) Update(ctx context.Context, id uuid.UUID, fields domain.TourChangeFields) (*domain.Tour, error) {
	for i := range m.tours {
		if m.tours[i].ID != id {
			continue
		}
		if fields.Name != nil {
			m.tours[i].Name = *fields.Name
		}
		if fields.StartDate != nil {
			m.tours[i].StartDate = *fields.StartDate
		}
		if fields.EndDate != nil {
			m.tours[i].EndDate = *fields.EndDate
		}
		if fields.Price != nil {
			m.tours[i].Price = *fields.Price
		}
		m.tours[i].UpdatedAt = time.Now()
		stored := m.tours[i]
		return &stored, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memTourRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i := range m.tours {
		if m.tours[i].ID == id {
			m.tours = append(m.tours[:i], m.tours[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memTourRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Tour, error) {
	for _, tour := range m.tours {
		if tour.ID == id {
			stored := tour
			return &stored, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memTourRepo) ListByTravel(ctx context.Context, travelID uuid.UUID, filter domain.TourListFilter, limit, offset int) ([]domain.Tour, error) {
	m.lastFilter = filter
	m.lastLimit = limit
	m.lastOffset = offset

	matched := m.matching(travelID, filter)
	sortTours(matched, filter)
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (m *memTourRepo) CountByTravel(ctx context.Context, travelID uuid.UUID, filter domain.TourListFilter) (int, error) {
	return len(m.matching(travelID, filter)), nil
}

func (m *memTourRepo) matching(travelID uuid.UUID, filter domain.TourListFilter) []domain.Tour {
	out := make([]domain.Tour, 0, len(m.tours))
	for _, tour := range m.tours {
		if tour.TravelID != travelID {
			continue
		}
		if filter.StartDate != nil && tour.StartDate.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && tour.EndDate.After(*filter.EndDate) {
			continue
		}
		if filter.PriceFrom != nil && tour.Price < *filter.PriceFrom {
			continue
		}
		if filter.PriceTo != nil && tour.Price > *filter.PriceTo {
			continue
		}
		out = append(out, tour)
	}
	return out
}

func sortTours(tours []domain.Tour, filter domain.TourListFilter) {
	desc := filter.SortOrder == domain.SortOrderDesc
	sort.SliceStable(tours, func(i, j int) bool {
		var less, equal bool
		switch filter.SortBy {
		case domain.TourSortPrice:
			less, equal = tours[i].Price < tours[j].Price, tours[i].Price == tours[j].Price
		case domain.TourSortEndDate:
			less, equal = tours[i].EndDate.Before(tours[j].EndDate), tours[i].EndDate.Equal(tours[j].EndDate)
		default:
			less, equal = tours[i].StartDate.Before(tours[j].StartDate), tours[i].StartDate.Equal(tours[j].StartDate)
		}
		if equal {
			return tours[i].StartDate.Before(tours[j].StartDate)
		}
		if desc {
			return !less
		}
		return less
	})
}

type memCommentRepo struct {
	comments []domain.Comment
}

func (m *memCommentRepo) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	stored := *comment
	stored.ID = uuid.New()
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.comments = append(m.comments, stored)
	return &stored, nil
}

func (m *memCommentRepo) Update(ctx context.Context, id uuid.UUID, fields domain.CommentChangeFields) (*domain.Comment, error) {
	for i := range m.comments {
		if m.comments[i].ID != id {
			continue
		}
		if fields.Text != nil {
			m.comments[i].Text = *fields.Text
		}
		if fields.IsPublic != nil {
			m.comments[i].IsPublic = *fields.IsPublic
		}
		m.comments[i].UpdatedAt = time.Now()
		stored := m.comments[i]
		return &stored, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memCommentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i := range m.comments {
		if m.comments[i].ID == id {
			m.comments = append(m.comments[:i], m.comments[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memCommentRepo) GetByID(ctx context.Context, id uuid.UUID, includePrivate bool) (*domain.Comment, error) {
	for _, comment := range m.comments {
		if comment.ID != id {
			continue
		}
		if !comment.IsPublic && !includePrivate {
			return nil, sql.ErrNoRows
		}
		stored := comment
		return &stored, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memCommentRepo) List(ctx context.Context, includePrivate bool, limit, offset int) ([]domain.Comment, error) {
	visible := make([]domain.Comment, 0, len(m.comments))
	for _, comment := range m.comments {
		if comment.IsPublic || includePrivate {
			visible = append(visible, comment)
		}
	}
	if offset >= len(visible) {
		return nil, nil
	}
	end := offset + limit
	if end > len(visible) {
		end = len(visible)
	}
	return visible[offset:end], nil
}

func (m *memCommentRepo) Count(ctx context.Context, includePrivate bool) (int, error) {
	count := 0
	for _, comment := range m.comments {
		if comment.IsPublic || includePrivate {
			count++
		}
	}
	return count, nil
}

func (m *memCommentRepo) ListByTours(ctx context.Context, tourIDs []uuid.UUID, includePrivate bool) (map[uuid.UUID][]domain.Comment, error) {
	wanted := make(map[uuid.UUID]struct{}, len(tourIDs))
	for _, id := range tourIDs {
		wanted[id] = struct{}{}
	}
	result := make(map[uuid.UUID][]domain.Comment)
	for _, comment := range m.comments {
		if _, ok := wanted[comment.TourID]; !ok {
			continue
		}
		if !comment.IsPublic && !includePrivate {
			continue
		}
		result[comment.TourID] = append(result[comment.TourID], comment)
	}
	return result, nil
}

type memImageRepo struct {
	images []domain.Image
}

func (m *memImageRepo) CreateMany(ctx context.Context, owner domain.ImageOwner, paths []string) ([]domain.Image, error) {
	created := make([]domain.Image, 0, len(paths))
	for _, path := range paths {
		image := domain.Image{
			ID:        uuid.New(),
			Path:      path,
			OwnerKind: owner.Kind,
			OwnerID:   owner.ID,
			CreatedAt: time.Now(),
		}
		m.images = append(m.images, image)
		created = append(created, image)
	}
	return created, nil
}

func (m *memImageRepo) UpdatePath(ctx context.Context, id uuid.UUID, path string) error {
	for i := range m.images {
		if m.images[i].ID == id {
			m.images[i].Path = path
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memImageRepo) ListByOwner(ctx context.Context, owner domain.ImageOwner) ([]domain.Image, error) {
	out := make([]domain.Image, 0)
	for _, image := range m.images {
		if image.OwnerKind == owner.Kind && image.OwnerID == owner.ID {
			out = append(out, image)
		}
	}
	return out, nil
}

func (m *memImageRepo) ListByOwners(ctx context.Context, kind domain.ImageOwnerKind, ownerIDs []uuid.UUID) (map[uuid.UUID][]domain.Image, error) {
	wanted := make(map[uuid.UUID]struct{}, len(ownerIDs))
	for _, id := range ownerIDs {
		wanted[id] = struct{}{}
	}
	result := make(map[uuid.UUID][]domain.Image)
	for _, image := range m.images {
		if image.OwnerKind != kind {
			continue
		}
		if _, ok := wanted[image.OwnerID]; !ok {
			continue
		}
		result[image.OwnerID] = append(result[image.OwnerID], image)
	}
	return result, nil
}

func (m *memImageRepo) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := m.images[:0]
	for _, image := range m.images {
		if _, ok := drop[image.ID]; !ok {
			kept = append(kept, image)
		}
	}
	m.images = kept
	return nil
}

type memObject struct {
	data        []byte
	contentType string
}

type memStorage struct {
	objects map[string]memObject
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string]memObject)}
}

func (m *memStorage) Put(ctx context.Context, key, contentType string, reader io.Reader, size int64) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return err
	}
	m.objects[key] = memObject{data: buf.Bytes(), contentType: contentType}
	return nil
}

func (m *memStorage) Get(ctx context.Context, key string) ([]byte, string, error) {
	obj, ok := m.objects[key]
	if !ok {
		return nil, "", fmt.Errorf("object %s not found", key)
	}
	return obj.data, obj.contentType, nil
}

func (m *memStorage) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memStorage) DeleteMany(ctx context.Context, keys []string) error {
	for _, key := range keys {
		delete(m.objects, key)
	}
	return nil
}

func (m *memStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memStorage) URL(key string) string {
	return "https://cdn.test/" + key
}

func (m *memStorage) keysWithPrefix(prefix string) []string {
	var out []string
	for key := range m.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			out = append(out, key)
		}
	}
	return out
}

type captureDispatcher struct {
	jobs []queue.ImageBatchJob
}

func (d *captureDispatcher) Dispatch(ctx context.Context, job queue.ImageBatchJob) error {
	d.jobs = append(d.jobs, job)
	return nil
}

// funcProcessor lets a test control the optimizer outcome per call.
type funcProcessor struct {
	fn func(data []byte, contentType string) ([]byte, error)
}

func (p *funcProcessor) Optimize(ctx context.Context, data []byte, contentType string) ([]byte, error) {
	return p.fn(data, contentType)
}

type recordingMailer struct {
	sent []string
}

func (m *recordingMailer) SendCommentPublished(ctx context.Context, to, authorName, tourName, tourURL string) error {
	m.sent = append(m.sent, to+"|"+tourName+"|"+tourURL)
	return nil
}

type memUserRepo struct {
	users []domain.User
}

func (m *memUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return nil, errDuplicate
		}
	}
	stored := *user
	stored.ID = uuid.New()
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.users = append(m.users, stored)
	return &stored, nil
}

func (m *memUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			stored := user
			return &stored, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			stored := user
			return &stored, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memUserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if offset >= len(m.users) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.users) {
		end = len(m.users)
	}
	return m.users[offset:end], nil
}

func (m *memUserRepo) Count(ctx context.Context) (int, error) {
	return len(m.users), nil
}

func (m *memUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i := range m.users {
		if m.users[i].ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type memRoleRepo struct {
	roles  []domain.Role
	grants map[uuid.UUID]map[uuid.UUID]struct{}
}

func newMemRoleRepo() *memRoleRepo {
	return &memRoleRepo{grants: make(map[uuid.UUID]map[uuid.UUID]struct{})}
}

func (m *memRoleRepo) List(ctx context.Context) ([]domain.Role, error) {
	out := make([]domain.Role, len(m.roles))
	copy(out, m.roles)
	return out, nil
}

func (m *memRoleRepo) GetOrCreate(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	for _, role := range m.roles {
		if role.Name == name {
			stored := role
			return &stored, nil
		}
	}
	role := domain.Role{ID: uuid.New(), Name: name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.roles = append(m.roles, role)
	return &role, nil
}

func (m *memRoleRepo) FindByNames(ctx context.Context, names []domain.RoleName) ([]domain.Role, error) {
	out := make([]domain.Role, 0, len(names))
	for _, role := range m.roles {
		for _, name := range names {
			if role.Name == name {
				out = append(out, role)
			}
		}
	}
	return out, nil
}

func (m *memRoleRepo) AssignToUser(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) error {
	if m.grants[userID] == nil {
		m.grants[userID] = make(map[uuid.UUID]struct{})
	}
	for _, roleID := range roleIDs {
		m.grants[userID][roleID] = struct{}{}
	}
	return nil
}

func (m *memRoleRepo) RemoveFromUser(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) error {
	for _, roleID := range roleIDs {
		delete(m.grants[userID], roleID)
	}
	return nil
}

func (m *memRoleRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Role, error) {
	var out []domain.Role
	for _, role := range m.roles {
		if _, ok := m.grants[userID][role.ID]; ok {
			out = append(out, role)
		}
	}
	return out, nil
}

func (m *memRoleRepo) ListByUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]domain.Role, error) {
	result := make(map[uuid.UUID][]domain.Role, len(userIDs))
	for _, userID := range userIDs {
		roles, _ := m.ListByUser(ctx, userID)
		if roles != nil {
			result[userID] = roles
		}
	}
	return result, nil
}
