package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	apperrors "shopapi/internal/errors"
	"shopapi/internal/patch"
)

// ItemRepository defines persistence operations of a resource collection.
type ItemRepository[T any] interface {
	patch.Target
	Create(ctx context.Context, item *T) error
	FindByID(ctx context.Context, id string) (*T, error)
	List(ctx context.Context) ([]T, error)
	DeleteByID(ctx context.Context, id string) (DeleteResult, error)
}

type collection[T any] struct {
	db     *gorm.DB
	fields *fieldResolver
}

// NewCollection builds a GORM-backed repository for records of type T.
func NewCollection[T any](db *gorm.DB) (ItemRepository[T], error) {
	var namer schema.Namer = schema.NamingStrategy{}
	if db.Config != nil && db.NamingStrategy != nil {
		namer = db.NamingStrategy
	}
	fields, err := newFieldResolver(new(T), namer)
	if err != nil {
		return nil, fmt.Errorf("collection %T: %w", *new(T), err)
	}
	return &collection[T]{db: db, fields: fields}, nil
}

// Create inserts a new record.
func (r *collection[T]) Create(ctx context.Context, item *T) error {
	return apperrors.Storage(r.db.WithContext(ctx).Create(item).Error)
}

// FindByID finds a record by ID.
func (r *collection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	var item T
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Storage(err)
	}
	return &item, nil
}

// List returns every record of the collection.
func (r *collection[T]) List(ctx context.Context) ([]T, error) {
	items := make([]T, 0)
	if err := r.db.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, apperrors.Storage(err)
	}
	return items, nil
}

// CanonicalField maps any accepted spelling of a field to its column name.
func (r *collection[T]) CanonicalField(name string) string {
	return r.fields.canonical(name)
}

// UpdateFields applies fields as a merge-patch to the record id.
// Known names become column assignments, unknown names are merged into the
// record's extra attributes.
func (r *collection[T]) UpdateFields(ctx context.Context, id string, fields patch.MergeSet) (patch.UpdateResult, error) {
	columns, extra, err := r.fields.split(fields)
	if err != nil {
		return patch.UpdateResult{}, err
	}

	res := patch.UpdateResult{Acknowledged: true}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(new(T)).Where("id = ?", id).Count(&res.MatchedCount).Error; err != nil {
			return err
		}
		if res.MatchedCount == 0 || (len(columns) == 0 && len(extra) == 0) {
			return nil
		}

		if len(extra) > 0 {
			var row extraRow
			if err := tx.Model(new(T)).Select(r.fields.extraColumn).Where("id = ?", id).Scan(&row).Error; err != nil {
				return err
			}
			columns[r.fields.extraColumn] = row.Extra.Merge(extra)
		}

		updated := tx.Model(new(T)).Where("id = ?", id).Updates(columns)
		if updated.Error != nil {
			return updated.Error
		}
		res.ModifiedCount = updated.RowsAffected
		return nil
	})
	if err != nil {
		return patch.UpdateResult{}, apperrors.Storage(err)
	}
	return res, nil
}

// DeleteByID removes the record id.
func (r *collection[T]) DeleteByID(ctx context.Context, id string) (DeleteResult, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return DeleteResult{}, apperrors.Storage(res.Error)
	}
	return DeleteResult{Acknowledged: true, DeletedCount: res.RowsAffected}, nil
}
