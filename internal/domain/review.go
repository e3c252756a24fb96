package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common review validation errors.
var (
	ErrEmptyReviewID     = errors.New("review ID cannot be empty")
	ErrEmptyComment      = errors.New("comment cannot be empty")
	ErrCommentTooLong    = errors.New("comment must be at most 2000 characters")
	ErrReviewTitleLong   = errors.New("review title must be at most 100 characters")
	ErrRatingOutOfRange  = errors.New("rating must be an integer between 1 and 5")
	ErrReviewBookMissing = errors.New("review must reference a book")
	ErrReviewUserMissing = errors.New("review must reference a user")
)

// Review is a customer's rating and comment on a book. A user may hold at
// most one review per book.
type Review struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	BookID    uuid.UUID `json:"book_id"`
	Rating    int       `json:"rating"`
	Title     string    `json:"title,omitempty"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Read-side denormalizations.
	UserEmail string `json:"-"`
	BookTitle string `json:"-"`
}

// NewReview creates a validated Review with a fresh ID.
func NewReview(userID, bookID uuid.UUID, rating int, title, comment string) (*Review, error) {
	now := time.Now().UTC()
	review := &Review{
		ID:        uuid.New(),
		UserID:    userID,
		BookID:    bookID,
		Rating:    rating,
		Title:     title,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := review.Validate(); err != nil {
		return nil, err
	}
	return review, nil
}

// Validate checks the Review's field invariants.
func (r *Review) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyReviewID
	}
	if r.UserID == uuid.Nil {
		return ErrReviewUserMissing
	}
	if r.BookID == uuid.Nil {
		return ErrReviewBookMissing
	}
	if r.Rating < 1 || r.Rating > 5 {
		return ErrRatingOutOfRange
	}
	if r.Comment == "" {
		return ErrEmptyComment
	}
	if len(r.Comment) > 2000 {
		return ErrCommentTooLong
	}
	if len(r.Title) > 100 {
		return ErrReviewTitleLong
	}
	return nil
}
