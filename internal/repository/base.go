package repository

import (
	"context"

	"gorm.io/gorm"
)

// BaseRepository is the contract shared by all repositories.
type BaseRepository interface {
	// GetDB returns the underlying handle.
	GetDB() *gorm.DB
	// WithTx returns a repository bound to the transaction.
	WithTx(tx *gorm.DB) BaseRepository
}

// Pagination carries paging parameters.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// NewPagination clamps paging parameters to sane bounds.
func NewPagination(page, pageSize int) *Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return &Pagination{
		Page:     page,
		PageSize: pageSize,
	}
}

// Offset computes the row offset.
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Paginate is a gorm scope applying the pagination.
func Paginate(p *Pagination) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.PageSize)
	}
}

// BaseRepo is the shared repository implementation.
type BaseRepo struct {
	db *gorm.DB
}

// NewBaseRepo wraps a database handle.
func NewBaseRepo(db *gorm.DB) *BaseRepo {
	return &BaseRepo{db: db}
}

// GetDB returns the underlying handle.
func (r *BaseRepo) GetDB() *gorm.DB {
	return r.db
}

// WithTx binds the repository to a transaction.
func (r *BaseRepo) WithTx(tx *gorm.DB) *BaseRepo {
	return &BaseRepo{db: tx}
}

// Transaction runs fn inside a transaction.
func (r *BaseRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
