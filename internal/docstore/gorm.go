package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// documentRecord is one document of any collection, stored as a JSON body
type documentRecord struct {
	Collection string    `gorm:"column:collection_name;primaryKey;size:64"`
	ID         string    `gorm:"primaryKey;size:64"`
	Body       string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}

func (documentRecord) TableName() string { return "documents" }

// GormStore implements Store on a relational database (PostgreSQL or SQLite).
// Equality filters compare the textual value of top-level JSON fields.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore migrates the documents table and returns the store
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&documentRecord{}); err != nil {
		return nil, fmt.Errorf("migrate documents table: %w", err)
	}
	return &GormStore{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *GormStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	tx := s.db.WithContext(ctx).Where("collection_name = ?", collection)
	for _, f := range q.Filters {
		tx = s.whereField(tx, f)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var records []documentRecord
	if err := tx.Order("created_at ASC").Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(records))
	for _, rec := range records {
		doc, err := rec.document()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *GormStore) whereField(tx *gorm.DB, f Filter) *gorm.DB {
	value := fmt.Sprint(f.Value)
	if s.db.Dialector.Name() == "postgres" {
		return tx.Where("(body::jsonb ->> ?) = ?", f.Field, value)
	}
	return tx.Where("json_extract(body, ?) = ?", "$."+f.Field, value)
}

func (s *GormStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var rec documentRecord
	err := s.db.WithContext(ctx).Where("collection_name = ? AND id = ?", collection, id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return Document{}, err
	}
	return rec.document()
}

func (s *GormStore) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	rec, err := s.record(collection, uuid.NewString(), fields)
	if err != nil {
		return "", err
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (s *GormStore) Set(ctx context.Context, collection, id string, fields Fields) error {
	rec, err := s.record(collection, id, fields)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection_name"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(rec).Error
}

func (s *GormStore) Delete(ctx context.Context, collection, id string) error {
	return s.db.WithContext(ctx).
		Where("collection_name = ? AND id = ?", collection, id).
		Delete(&documentRecord{}).Error
}

func (s *GormStore) Toggle(ctx context.Context, collection, id string, fields Fields) (bool, error) {
	rec, err := s.record(collection, id, fields)
	if err != nil {
		return false, err
	}

	var created bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("collection_name = ? AND id = ?", collection, id).Delete(&documentRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(rec)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			created = true
			return nil
		}
		// a concurrent toggle inserted it first
		return tx.Where("collection_name = ? AND id = ?", collection, id).Delete(&documentRecord{}).Error
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// Close closes the underlying connection pool
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) record(collection, id string, fields Fields) (*documentRecord, error) {
	body, err := json.Marshal(resolve(fields, s.now()))
	if err != nil {
		return nil, fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	return &documentRecord{Collection: collection, ID: id, Body: string(body)}, nil
}

func (r documentRecord) document() (Document, error) {
	fields := Fields{}
	if err := json.Unmarshal([]byte(r.Body), &fields); err != nil {
		return Document{}, fmt.Errorf("decode %s/%s: %w", r.Collection, r.ID, err)
	}
	return Document{ID: r.ID, Fields: fields}, nil
}
