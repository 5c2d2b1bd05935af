package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "voicenote/internal/app/errors"
	"voicenote/internal/app/model"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("record not found")

// CommonDB provides shared database functionality
type CommonDB struct {
	db           *sql.DB
	driverName   string
	placeholders PlaceholderFunc
}

// PlaceholderFunc generates parameter placeholders for different SQL dialects
type PlaceholderFunc func(n int) string

// NewCommonDB creates a new CommonDB instance
func NewCommonDB(db *sql.DB, driverName string) *CommonDB {
	var placeholders PlaceholderFunc

	switch driverName {
	case "postgres":
		placeholders = func(n int) string { return fmt.Sprintf("$%d", n) }
	default:
		placeholders = func(n int) string { return "?" }
	}

	return &CommonDB{
		db:           db,
		driverName:   driverName,
		placeholders: placeholders,
	}
}

// bind rewrites "?" markers into the dialect's placeholders.
func (c *CommonDB) bind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(c.placeholders(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const transcriptionColumns = `id, "userId", filename, "originalText", "processedText", status,
	"createdAt", "updatedAt", "fileSize", duration, format`

// CreateTranscription inserts a record in its initial state.
func (c *CommonDB) CreateTranscription(ctx context.Context, t *model.Transcription) error {
	query := c.bind(`INSERT INTO transcriptions (` + transcriptionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := c.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.Filename, t.OriginalText, nullString(t.ProcessedText), string(t.Status),
		t.CreatedAt, t.UpdatedAt, nullInt64(t.FileSize), nullFloat64(t.DurationSeconds), nullString(t.Format),
	)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrInsertFailed.WithCause(err), apperrors.KindPersistence, "transcription %s", t.ID)
	}
	return nil
}

// CompleteTranscription moves a processing record to its terminal state. It
// refuses to touch a record that already left processing.
func (c *CommonDB) CompleteTranscription(ctx context.Context, id string, comp model.Completion) error {
	var (
		query string
		args  []interface{}
	)

	switch comp.Status {
	case model.StatusCompleted:
		query = c.bind(`UPDATE transcriptions
			SET status = ?, "originalText" = ?, "processedText" = ?, duration = ?, "updatedAt" = ?
			WHERE id = ? AND status = ?`)
		args = []interface{}{
			string(comp.Status), comp.OriginalText, comp.ProcessedText,
			nullFloat64(comp.DurationSeconds), comp.UpdatedAt, id, string(model.StatusProcessing),
		}
	case model.StatusFailed:
		query = c.bind(`UPDATE transcriptions SET status = ?, "updatedAt" = ? WHERE id = ? AND status = ?`)
		args = []interface{}{string(comp.Status), comp.UpdatedAt, id, string(model.StatusProcessing)}
	case model.StatusProcessing:
		return apperrors.Newf(apperrors.KindPersistence, "transcription %s cannot be completed as processing", id)
	default:
		return apperrors.Newf(apperrors.KindPersistence, "unknown status %q", string(comp.Status))
	}

	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrUpdateFailed.WithCause(err), apperrors.KindPersistence, "transcription %s", id)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrUpdateFailed.WithCause(err), apperrors.KindPersistence, "transcription %s", id)
	}
	if affected == 0 {
		return apperrors.Wrapf(apperrors.ErrUpdateFailed, apperrors.KindPersistence, "no processing transcription %s", id)
	}
	return nil
}

// ListTranscriptionsByUser returns one page of the user's records, newest first.
func (c *CommonDB) ListTranscriptionsByUser(ctx context.Context, userID string, limit, offset int) ([]model.Transcription, error) {
	query := c.bind(`SELECT ` + transcriptionColumns + `
		FROM transcriptions
		WHERE "userId" = ?
		ORDER BY "createdAt" DESC, id DESC
		LIMIT ? OFFSET ?`)

	rows, err := c.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrQueryFailed.WithCause(err), apperrors.KindPersistence, "list transcriptions for %s", userID)
	}
	defer rows.Close()

	transcriptions := make([]model.Transcription, 0, limit)
	for rows.Next() {
		t, err := scanTranscription(rows)
		if err != nil {
			return nil, err
		}
		transcriptions = append(transcriptions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrQueryFailed.WithCause(err), apperrors.KindPersistence, "list transcriptions for %s", userID)
	}

	return transcriptions, nil
}

// DeleteTranscription removes the record only when userID owns it.
func (c *CommonDB) DeleteTranscription(ctx context.Context, id, userID string) (int64, error) {
	query := c.bind(`DELETE FROM transcriptions WHERE id = ? AND "userId" = ?`)

	res, err := c.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return 0, apperrors.Wrapf(err, apperrors.KindPersistence, "delete transcription %s", id)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrapf(err, apperrors.KindPersistence, "delete transcription %s", id)
	}
	return affected, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTranscription(row scanner) (model.Transcription, error) {
	var (
		t         model.Transcription
		processed sql.NullString
		status    string
		fileSize  sql.NullInt64
		duration  sql.NullFloat64
		format    sql.NullString
	)

	err := row.Scan(
		&t.ID, &t.UserID, &t.Filename, &t.OriginalText, &processed, &status,
		&t.CreatedAt, &t.UpdatedAt, &fileSize, &duration, &format,
	)
	if err != nil {
		return t, apperrors.Wrap(apperrors.ErrQueryFailed.WithCause(err), apperrors.KindPersistence, "scan transcription")
	}

	if t.Status, err = model.ParseStatus(status); err != nil {
		return t, apperrors.Wrap(apperrors.ErrQueryFailed.WithCause(err), apperrors.KindPersistence, "scan transcription")
	}
	if processed.Valid {
		t.ProcessedText = &processed.String
	}
	if fileSize.Valid {
		t.FileSize = &fileSize.Int64
	}
	if duration.Valid {
		t.DurationSeconds = &duration.Float64
	}
	if format.Valid {
		t.Format = &format.String
	}
	return t, nil
}

// UpsertOAuthUser returns the user linked to account, creating both on first
// sign-in and refreshing profile fields afterwards.
func (c *CommonDB) UpsertOAuthUser(ctx context.Context, user model.User, account model.Account) (*model.User, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindPersistence, "begin transaction")
	}
	defer tx.Rollback()

	var userID string
	err = tx.QueryRowContext(ctx,
		c.bind(`SELECT "userId" FROM account WHERE provider = ? AND "providerAccountId" = ?`),
		account.Provider, account.ProviderAccountID,
	).Scan(&userID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		userID = uuid.NewString()
		_, err = tx.ExecContext(ctx,
			c.bind(`INSERT INTO "user" (id, name, email, "emailVerified", image) VALUES (?, ?, ?, ?, ?)`),
			userID, nullString(user.Name), user.Email, nullTime(user), nullString(user.Image),
		)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.KindPersistence, "insert user")
		}
		_, err = tx.ExecContext(ctx,
			c.bind(`INSERT INTO account ("userId", type, provider, "providerAccountId", access_token, token_type, scope)
				VALUES (?, ?, ?, ?, ?, ?, ?)`),
			userID, account.Type, account.Provider, account.ProviderAccountID,
			account.AccessToken, account.TokenType, account.Scope,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.KindPersistence, "insert account")
		}
	case err != nil:
		return nil, apperrors.Wrap(err, apperrors.KindPersistence, "query account")
	default:
		_, err = tx.ExecContext(ctx,
			c.bind(`UPDATE "user" SET name = ?, email = ?, image = ? WHERE id = ?`),
			nullString(user.Name), user.Email, nullString(user.Image), userID,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.KindPersistence, "update user")
		}
		_, err = tx.ExecContext(ctx,
			c.bind(`UPDATE account SET access_token = ?, token_type = ?, scope = ?
				WHERE provider = ? AND "providerAccountId" = ?`),
			account.AccessToken, account.TokenType, account.Scope, account.Provider, account.ProviderAccountID,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.KindPersistence, "update account")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindPersistence, "commit transaction")
	}

	user.ID = userID
	return &user, nil
}

// GetUser looks a user up by id.
func (c *CommonDB) GetUser(ctx context.Context, id string) (*model.User, error) {
	var (
		u        model.User
		name     sql.NullString
		verified sql.NullTime
		image    sql.NullString
	)

	err := c.db.QueryRowContext(ctx,
		c.bind(`SELECT id, name, email, "emailVerified", image FROM "user" WHERE id = ?`), id,
	).Scan(&u.ID, &name, &u.Email, &verified, &image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindPersistence, "query user")
	}

	if name.Valid {
		u.Name = &name.String
	}
	if verified.Valid {
		u.EmailVerified = &verified.Time
	}
	if image.Valid {
		u.Image = &image.String
	}
	return &u, nil
}

// CreateSession stores a new login session.
func (c *CommonDB) CreateSession(ctx context.Context, s model.Session) error {
	_, err := c.db.ExecContext(ctx,
		c.bind(`INSERT INTO session ("sessionToken", "userId", expires) VALUES (?, ?, ?)`),
		s.SessionToken, s.UserID, s.Expires,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindPersistence, "insert session")
	}
	return nil
}

// GetSession returns the session for token, expired or not.
func (c *CommonDB) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var s model.Session
	err := c.db.QueryRowContext(ctx,
		c.bind(`SELECT "sessionToken", "userId", expires FROM session WHERE "sessionToken" = ?`), token,
	).Scan(&s.SessionToken, &s.UserID, &s.Expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindPersistence, "query session")
	}
	return &s, nil
}

// DeleteSession removes a session; deleting an unknown token is not an error.
func (c *CommonDB) DeleteSession(ctx context.Context, token string) error {
	_, err := c.db.ExecContext(ctx, c.bind(`DELETE FROM session WHERE "sessionToken" = ?`), token)
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindPersistence, "delete session")
	}
	return nil
}

// Ping checks the connection.
func (c *CommonDB) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the database connection
func (c *CommonDB) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// DB returns the underlying database connection
func (c *CommonDB) DB() *sql.DB {
	return c.db
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullFloat64(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullTime(u model.User) sql.NullTime {
	if u.EmailVerified == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *u.EmailVerified, Valid: true}
}
