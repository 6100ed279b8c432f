package services

import (
	"context" // For database operations context
	"errors"  // For sentinel errors and unwrapping
	"fmt"     // For error wrapping
	"log"     // For logging
	"strings" // For constraint-name matching

	"github.com/jackc/pgx/v5"        // For pgx.Tx and tx-state errors
	"github.com/jackc/pgx/v5/pgconn" // For Postgres error codes

	"paediprime/backend/database"
	"paediprime/backend/models"
)

var (
	// ErrEmailTaken is returned when the email unique constraint fires.
	ErrEmailTaken = errors.New("email already exists")
	// ErrPhoneTaken is returned when the phone unique constraint fires.
	ErrPhoneTaken = errors.New("phone already exists")
)

// uniqueViolation is the Postgres error code for unique-constraint hits.
const uniqueViolation = "23505"

// ValidationError carries every problem found with a registration attempt.
type ValidationError struct {
	Issues []models.ValidationIssue
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d issue(s)", len(e.Issues))
}

// TokenIssuer mints the access token bound to a new identity.
// *TokenService is the production implementation.
type TokenIssuer interface {
	Issue(userID int64, email string) (string, error)
}

// RegistrationService sequences one registration attempt end to end:
// validate, upload the profile picture, persist location and user in one
// transaction, mint the access token, commit. It owns the rollback policy.
type RegistrationService struct {
	media  *MediaService
	tokens TokenIssuer
}

// NewRegistrationService creates a new RegistrationService instance.
func NewRegistrationService(media *MediaService, tokens TokenIssuer) *RegistrationService {
	return &RegistrationService{media: media, tokens: tokens}
}

// Register runs one registration attempt.
//
// Failure policy: validation problems return a *ValidationError before any
// side effect. An upload failure (ErrUploadFailed) happens before the
// transaction opens, so there is nothing to roll back. Every failure after
// Begin, including uniqueness conflicts and token issuance, rolls the
// transaction back before reporting; the connection returns to the pool on
// every path. The already-uploaded picture is not deleted when a later
// step fails, so a failed attempt can leave an orphaned remote object.
func (s *RegistrationService) Register(ctx context.Context, form *models.RegistrationForm, picture []byte) (*models.RegistrationResponse, error) {
	if form.Country == "" {
		form.Country = "India"
	}

	if issues := ValidateRegistration(form, len(picture) > 0); len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	gender := NormalizeGender(form.Gender)
	lat, lng, _ := ParseCoordinates(form.LocationX, form.LocationY) // validated above

	pfpLink, err := s.media.ProcessAndUpload(ctx, picture)
	if err != nil {
		return nil, err
	}

	tx, err := database.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open transaction: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Printf("[Registration] rollback failed: %v", rbErr)
		}
	}()

	location := &models.Location{
		StreetAddress: form.StreetAddress,
		City:          form.City,
		State:         form.State,
		Country:       form.Country,
		LocationX:     lat,
		LocationY:     lng,
	}
	if err := insertLocation(ctx, tx, location); err != nil {
		return nil, err
	}

	hash, err := HashPassword(form.Password)
	if err != nil {
		return nil, err
	}

	user, err := insertUser(ctx, tx, insertUserParams{
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Phone:        form.Phone,
		Email:        form.Email,
		DOB:          form.DOB,
		LocationID:   location.LocationID,
		PasswordHash: hash,
		Gender:       gender,
		PfpLink:      pfpLink,
	})
	if err != nil {
		return nil, err
	}

	// The user must not exist without the ability to authenticate it, so a
	// token failure rolls the whole attempt back.
	token, err := s.tokens.Issue(user.UserID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true

	log.Printf("User created successfully: %s (ID: %d)", user.Email, user.UserID)
	return &models.RegistrationResponse{
		Message: "User created successfully",
		Token:   token,
		User:    user,
	}, nil
}

// insertLocation inserts one location row inside the caller's transaction,
// assigning the generated identity to loc.
func insertLocation(ctx context.Context, tx pgx.Tx, loc *models.Location) error {
	const query = `INSERT INTO locations (street_address, city, state, country, location_x, location_y)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING location_id`

	err := tx.QueryRow(ctx, query,
		loc.StreetAddress, loc.City, loc.State, loc.Country, loc.LocationX, loc.LocationY,
	).Scan(&loc.LocationID)
	if err != nil {
		return fmt.Errorf("failed to insert location: %w", err)
	}
	return nil
}

// insertUserParams is the user row as written by insertUser.
type insertUserParams struct {
	FirstName    string
	LastName     string
	Phone        string
	Email        string
	DOB          string
	LocationID   int64
	PasswordHash string
	Gender       string
	PfpLink      string
}

// insertUser inserts one user row inside the caller's transaction and
// returns the public projection of the stored row. The password hash is
// written but never read back. Uniqueness conflicts on email or phone
// surface as ErrEmailTaken / ErrPhoneTaken.
func insertUser(ctx context.Context, tx pgx.Tx, p insertUserParams) (*models.User, error) {
	const query = `INSERT INTO users (first_name, last_name, phone, email, dob, location_id, password_hash, gender, pfp_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING user_id, first_name, last_name, email, phone, gender, pfp_link`

	var user models.User
	err := tx.QueryRow(ctx, query,
		p.FirstName, p.LastName, p.Phone, p.Email, p.DOB,
		p.LocationID, p.PasswordHash, p.Gender, p.PfpLink,
	).Scan(
		&user.UserID, &user.FirstName, &user.LastName,
		&user.Email, &user.Phone, &user.Gender, &user.PfpLink,
	)
	if err != nil {
		if conflictErr := mapConstraintError(err); conflictErr != nil {
			return nil, conflictErr
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &user, nil
}

// mapConstraintError translates a unique-constraint violation into the
// matching conflict sentinel, or nil when err is something else.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "email"):
		return ErrEmailTaken
	case strings.Contains(pgErr.ConstraintName, "phone"):
		return ErrPhoneTaken
	}
	return nil
}
