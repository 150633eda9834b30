package main

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/parkingwang/apidoc/pkg/http/code"
	"github.com/parkingwang/apidoc/pkg/store/database"
	"gorm.io/gorm"
)

// Person 人员
type Person struct {
	ID        int64     `json:"id" gorm:"primaryKey" comment:"人员id"`
	Name      string    `json:"name" gorm:"size:30" comment:"姓名"`
	Age       int       `json:"age" comment:"年龄"`
	Email     string    `json:"email" gorm:"size:100"`
	CreatedAt time.Time `json:"createdAt"`
}

type PersonStore interface {
	List(ctx context.Context, offset, limit int) ([]Person, int64, error)
	Get(ctx context.Context, id int64) (*Person, error)
	Create(ctx context.Context, p *Person) error
	Update(ctx context.Context, p *Person) error
	Delete(ctx context.Context, id int64) error
}

type gormStore struct{}

func newGormStore() (*gormStore, error) {
	if err := database.Get(context.Background()).AutoMigrate(&Person{}); err != nil {
		return nil, err
	}
	return &gormStore{}, nil
}

func (s *gormStore) List(ctx context.Context, offset, limit int) ([]Person, int64, error) {
	var (
		items []Person
		total int64
	)
	db := database.Get(ctx).Model(&Person{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("id").Offset(offset).Limit(limit).Find(&items).Error
	return items, total, err
}

func (s *gormStore) Get(ctx context.Context, id int64) (*Person, error) {
	var p Person
	if err := database.Get(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *gormStore) Create(ctx context.Context, p *Person) error {
	return database.Get(ctx).Create(p).Error
}

func (s *gormStore) Update(ctx context.Context, p *Person) error {
	ret := database.Get(ctx).Model(&Person{ID: p.ID}).
		Select("name", "age", "email").
		Updates(p)
	if ret.Error != nil {
		return ret.Error
	}
	if ret.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *gormStore) Delete(ctx context.Context, id int64) error {
	ret := database.Get(ctx).Delete(&Person{}, id)
	if ret.Error != nil {
		return ret.Error
	}
	if ret.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// memoryStore 未配置数据库时使用 不存在时同样返回 gorm.ErrRecordNotFound
type memoryStore struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]Person
}

func newMemoryStore() *memoryStore {
	return &memoryStore{items: make(map[int64]Person)}
}

func (s *memoryStore) List(ctx context.Context, offset, limit int) ([]Person, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]Person, 0, len(s.items))
	for _, p := range s.items {
		items = append(items, p)
	}
	slices.SortFunc(items, func(a, b Person) int {
		return int(a.ID - b.ID)
	})
	total := int64(len(items))
	if offset >= len(items) {
		return []Person{}, total, nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, total, nil
}

func (s *memoryStore) Get(ctx context.Context, id int64) (*Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (s *memoryStore) Create(ctx context.Context, p *Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if p.Email != "" && item.Email == p.Email {
			return code.NewConflictError("email already exists")
		}
	}
	s.nextID++
	p.ID = s.nextID
	p.CreatedAt = time.Now()
	s.items[p.ID] = *p
	return nil
}

func (s *memoryStore) Update(ctx context.Context, p *Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.items[p.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.CreatedAt = old.CreatedAt
	s.items[p.ID] = *p
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.items, id)
	return nil
}
