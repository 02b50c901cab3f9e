// Package store persists extraction outcomes to Postgres.
package store

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"receipt-extract/models"
	"receipt-extract/pkg/extract"
)

// Store wraps the gorm handle for extraction records.
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres with the given DSN and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.AutoMigrate(&models.ExtractionRecord{}); err != nil {
		return nil, fmt.Errorf("migrate extraction_records: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wires a store onto an existing gorm handle. Used by tests.
func NewWithDB(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SaveRecord stores one successful extraction.
func (s *Store) SaveRecord(rec extract.Record) error {
	row := rowFromRecord(rec)
	if err := s.db.Create(row).Error; err != nil {
		return fmt.Errorf("save record %s: %w", rec.Image, err)
	}
	return nil
}

// SaveFailure stores a skipped image with its reason.
func (s *Store) SaveFailure(image, reason string) error {
	row := &models.ExtractionRecord{Image: image, Failed: true, FailedReason: reason}
	if err := s.db.Create(row).Error; err != nil {
		return fmt.Errorf("save failure %s: %w", image, err)
	}
	return nil
}

// List returns the most recent records, newest first.
func (s *Store) List(limit int) ([]models.ExtractionRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	var rows []models.ExtractionRecord
	if err := s.db.Order("id desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return rows, nil
}

func rowFromRecord(rec extract.Record) *models.ExtractionRecord {
	m := rec.Map()
	reg := "broad"
	if _, ok := m[extract.FieldTotalAmount]; ok {
		reg = "banksplit"
	}
	return &models.ExtractionRecord{
		Image:             rec.Image,
		Registry:          reg,
		Sender:            m[extract.FieldSender],
		Receiver:          m[extract.FieldReceiver],
		Amount:            m[extract.FieldAmount],
		BankDetails:       m[extract.FieldBankDetails],
		TransactionID:     m[extract.FieldTransactionID],
		ReferenceNumber:   m[extract.FieldReferenceNo],
		TransactionStatus: m[extract.FieldStatus],
		TotalAmount:       m[extract.FieldTotalAmount],
		SenderBank:        m[extract.FieldSenderBank],
		ReceiverBank:      m[extract.FieldReceiverBank],
	}
}
