package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCreatesSchemaInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"users", "zones", "restaurant_tables", "menu_items",
		"restaurant_settings", "bookings", "booking_menu_items", "booking_history"} {
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS ` + table + ` \(`).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, Migrate(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateStopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).WillReturnError(errors.New("access denied"))
	err = Migrate(context.Background(), db)
	assert.ErrorContains(t, err, "access denied")
	require.NoError(t, mock.ExpectationsWereMet())
}
