package repository

import (
	"go-pos-ws/internal/model"

	"gorm.io/gorm"
)

// Period is an inclusive date range; an empty bound is unbounded on that side.
type Period struct {
	From model.Date
	To   model.Date
}

func (p Period) apply(q *gorm.DB, column string) *gorm.DB {
	if p.From != "" {
		q = q.Where(column+" >= ?", p.From)
	}
	if p.To != "" {
		q = q.Where(column+" <= ?", p.To)
	}
	return q
}
