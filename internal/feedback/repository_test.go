package feedback

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewRepository(mock)

	regID := uuid.New()
	cols := []string{"id", "registration_id", "feedback_date", "rating", "comments"}
	mock.ExpectQuery("INSERT INTO feedback").WithArgs(regID, 5, "nice").
		WillReturnRows(pgxmock.NewRows(cols).AddRow(uuid.New(), regID, time.Now(), 5, "nice"))
	mock.ExpectQuery("INSERT INTO feedback").WithArgs(regID, 4, "again").
		WillReturnError(pgx.ErrNoRows)

	f, err := repo.Create(context.Background(), regID, 5, "nice")
	require.NoError(t, err)
	assert.Equal(t, regID, f.RegistrationID)

	_, err = repo.Create(context.Background(), regID, 4, "again")
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
