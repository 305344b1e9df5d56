package main

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Contact is one entry in the wallet's address book.
type Contact struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	Name       string    `gorm:"column:name;not null" json:"name"`
	Address    string    `gorm:"column:address;not null" json:"address"`
	AddressBTC string    `gorm:"column:address_btc" json:"addressBTC,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"-"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"-"`
}

// TableName specifies the table name for GORM.
func (Contact) TableName() string {
	return "contacts"
}

// ContactStore is the persistent address book consumed by the contact
// management handlers.
type ContactStore struct {
	db *gorm.DB
}

// NewContactStore creates a new ContactStore.
func NewContactStore(db *gorm.DB) *ContactStore {
	return &ContactStore{db: db}
}

// List returns all contacts ordered by creation time.
func (s *ContactStore) List() ([]Contact, error) {
	var contacts []Contact
	err := s.db.Order("created_at ASC").Find(&contacts).Error
	return contacts, errors.Wrap(err, "failed to list contacts")
}

// Get returns a contact by id.
func (s *ContactStore) Get(id string) (*Contact, error) {
	var contact Contact
	err := s.db.Where("id = ?", id).First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get contact")
	}
	return &contact, nil
}

// Save inserts the contact or updates it when the id already exists.
func (s *ContactStore) Save(contact Contact) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "address", "address_btc", "updated_at"}),
	}).Create(&contact).Error
	return errors.Wrap(err, "failed to save contact")
}

// Remove deletes a contact by id. Removing an unknown id is a no-op.
func (s *ContactStore) Remove(id string) error {
	err := s.db.Where("id = ?", id).Delete(&Contact{}).Error
	return errors.Wrap(err, "failed to remove contact")
}
