package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/event-master/backend/internal/models"
)

var userCols = []string{"id", "email", "password_hash", "participant_id", "organiser_id", "speaker_id", "created_at"}

func TestRepositoryGetByEmail_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM users WHERE LOWER").WithArgs("x@example.com").WillReturnError(pgx.ErrNoRows)

	_, err = NewRepository(mock).GetByEmail(context.Background(), "x@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRepositoryCreateWithProfile(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	profileID, userID := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO participants").
		WithArgs("Jane", "Doe", "jane@example.com", "Student").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(profileID))
	mock.ExpectQuery("INSERT INTO users \\(email, password_hash, participant_id\\)").
		WithArgs("jane@example.com", "hash", profileID).
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(userID, "jane@example.com", "hash", &profileID, (*uuid.UUID)(nil), (*uuid.UUID)(nil), now))
	mock.ExpectCommit()

	u, err := NewRepository(mock).CreateWithProfile(context.Background(), "jane@example.com", "hash", models.RoleParticipant,
		ProfileInput{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"})
	require.NoError(t, err)
	assert.Equal(t, userID, u.ID)
	assert.True(t, u.HasRole(models.RoleParticipant))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreateWithProfile_RollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO organisers").
		WithArgs("Olga", "Org", "olga@example.com", "General").
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	_, err = NewRepository(mock).CreateWithProfile(context.Background(), "olga@example.com", "hash", models.RoleOrganiser,
		ProfileInput{FirstName: "Olga", LastName: "Org", Email: "olga@example.com"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryAttachRole(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID, speakerID := uuid.New(), uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO speakers").
		WithArgs("Jane", "Doe", "jane@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(speakerID))
	mock.ExpectExec("UPDATE users SET speaker_id = \\$1 WHERE id = \\$2 AND speaker_id IS NULL").
		WithArgs(speakerID, userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err = NewRepository(mock).AttachRole(context.Background(), userID, models.RoleSpeaker,
		ProfileInput{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryAttachRole_AlreadyHeld(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID, speakerID := uuid.New(), uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO speakers").WithArgs("Ada", "Lovelace", "ada@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(speakerID))
	mock.ExpectExec("UPDATE users SET speaker_id").WithArgs(speakerID, userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err = NewRepository(mock).AttachRole(context.Background(), userID, models.RoleSpeaker,
		ProfileInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
	assert.ErrorIs(t, err, ErrRoleExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryLoadUserData(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID, orgID := uuid.New(), uuid.New()
	mock.ExpectQuery("FROM users WHERE id").WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(userID, "olga@example.com", "hash", (*uuid.UUID)(nil), &orgID, (*uuid.UUID)(nil), time.Now()))
	mock.ExpectQuery("FROM organisers WHERE id").WithArgs(orgID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "first_name", "last_name", "email", "role", "department"}).
			AddRow(orgID, "Olga", "Org", "olga@example.com", "General", "Events"))

	data, err := NewRepository(mock).LoadUserData(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, data.Organiser)
	assert.Equal(t, "Olga", data.Organiser.FirstName)
	assert.Nil(t, data.Participant)
	assert.Nil(t, data.Speaker)
	assert.NoError(t, mock.ExpectationsWereMet())
}
