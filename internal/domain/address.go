package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common address validation errors.
var (
	ErrEmptyAddressID     = errors.New("address ID cannot be empty")
	ErrEmptyRecipient     = errors.New("recipient cannot be empty")
	ErrEmptyCity          = errors.New("city cannot be empty")
	ErrEmptyZipCode       = errors.New("zip code cannot be empty")
	ErrEmptyStreet        = errors.New("street name cannot be empty")
	ErrEmptyStreetNumber  = errors.New("street number cannot be empty")
	ErrAddressUserMissing = errors.New("address must reference a user")
	ErrNotesTooLong       = errors.New("notes must be at most 2500 characters")
)

// Address is a delivery destination owned by a user.
type Address struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	Recipient      string    `json:"recipient"`
	CountryID      uuid.UUID `json:"country_id"`
	StateProvince  string    `json:"state_province,omitempty"`
	CityTown       string    `json:"city_town"`
	ZipCode        string    `json:"zip_code"`
	StreetName     string    `json:"street_name"`
	Number         string    `json:"number"`
	ApartmentSuite string    `json:"apartment_suite,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Read-side denormalizations.
	UserEmail    string `json:"-"`
	CountryTitle string `json:"-"`
}

// NewAddress creates a validated Address with a fresh ID.
func NewAddress(
	userID uuid.UUID,
	recipient string,
	countryID uuid.UUID,
	stateProvince, cityTown, zipCode, streetName, number, apartmentSuite, notes string,
) (*Address, error) {
	now := time.Now().UTC()
	addr := &Address{
		ID:             uuid.New(),
		UserID:         userID,
		Recipient:      recipient,
		CountryID:      countryID,
		StateProvince:  stateProvince,
		CityTown:       cityTown,
		ZipCode:        zipCode,
		StreetName:     streetName,
		Number:         number,
		ApartmentSuite: apartmentSuite,
		Notes:          notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := addr.Validate(); err != nil {
		return nil, err
	}
	return addr, nil
}

// Validate checks the Address's field invariants.
func (a *Address) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyAddressID
	}
	if a.UserID == uuid.Nil {
		return ErrAddressUserMissing
	}
	if a.Recipient == "" {
		return ErrEmptyRecipient
	}
	if a.CountryID == uuid.Nil {
		return NewValidationError("country", "is required", ErrValidation)
	}
	if a.CityTown == "" {
		return ErrEmptyCity
	}
	if a.ZipCode == "" {
		return ErrEmptyZipCode
	}
	if a.StreetName == "" {
		return ErrEmptyStreet
	}
	if a.Number == "" {
		return ErrEmptyStreetNumber
	}
	if len(a.Notes) > 2500 {
		return ErrNotesTooLong
	}
	return nil
}
