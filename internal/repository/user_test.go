package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskloom/taskloom/internal/model"
	"github.com/taskloom/taskloom/internal/repository"
)

var userCols = []string{"id", "username", "email", "password_hash", "bio", "created_at"}

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *repository.Repository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock pool")
	t.Cleanup(mock.Close)
	return mock, repository.NewWithDB(mock)
}

func TestCreateUser(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "success fills generated fields",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now)
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("ada", "ada@example.com", "hash", "").
					WillReturnRows(rows)
			},
		},
		{
			name: "unique violation maps to ErrUserExists",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("ada", "ada@example.com", "hash", "").
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			wantErr: repository.ErrUserExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, repo := newMockRepo(t)
			tt.setupMock(mock)

			user := &model.User{Username: "ada", Email: "ada@example.com", PasswordHash: "hash"}
			err := repo.CreateUser(context.Background(), user)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(7), user.ID)
				assert.Equal(t, now, user.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetUserByEmail(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(userCols).
					AddRow(int64(7), "ada", "ada@example.com", "hash", "bio", now)
				mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
					WithArgs("ada@example.com").
					WillReturnRows(rows)
			},
		},
		{
			name: "missing maps to ErrUserNotFound",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
					WithArgs("ada@example.com").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: repository.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, repo := newMockRepo(t)
			tt.setupMock(mock)

			user, err := repo.GetUserByEmail(context.Background(), "ada@example.com")

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "ada", user.Username)
				assert.Equal(t, "hash", user.PasswordHash)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUpdateUserProfile(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "success",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE users SET username`).
					WithArgs("ada2", "new bio", int64(7)).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "username taken maps to ErrUserExists",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE users SET username`).
					WithArgs("ada2", "new bio", int64(7)).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			wantErr: repository.ErrUserExists,
		},
		{
			name: "no such user maps to ErrUserNotFound",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE users SET username`).
					WithArgs("ada2", "new bio", int64(7)).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			wantErr: repository.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, repo := newMockRepo(t)
			tt.setupMock(mock)

			err := repo.UpdateUserProfile(context.Background(), 7, "ada2", "new bio")

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUpdateUserPassword(t *testing.T) {
	mock, repo := newMockRepo(t)
	mock.ExpectExec(`UPDATE users SET password_hash`).
		WithArgs("newhash", int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateUserPassword(context.Background(), 7, "newhash")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
