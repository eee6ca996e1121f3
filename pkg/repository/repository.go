// Package repository provides a small generic gorm-backed store used by
// services for straightforward CRUD access.
package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository exposes typed persistence primitives for a single gorm model.
type Repository[T any] interface {
	Insert(ctx context.Context, record *T) error
	Find(ctx context.Context, dest *[]T, conds ...any) error
	First(ctx context.Context, dest *T, conds ...any) error
	Updates(ctx context.Context, record *T, values map[string]any) error
}

type store[T any] struct {
	db *gorm.DB
}

// ProvideStore builds a Repository bound to the given connection.
func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (s *store[T]) Insert(ctx context.Context, record *T) error {
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *store[T]) Find(ctx context.Context, dest *[]T, conds ...any) error {
	return s.db.WithContext(ctx).Find(dest, conds...).Error
}

func (s *store[T]) First(ctx context.Context, dest *T, conds ...any) error {
	return s.db.WithContext(ctx).First(dest, conds...).Error
}

func (s *store[T]) Updates(ctx context.Context, record *T, values map[string]any) error {
	return s.db.WithContext(ctx).Model(record).Updates(values).Error
}
