package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainErrorPassthrough(t *testing.T) {
	original := NewForbidden("no")
	converted := ToDomainError(original)
	assert.Equal(t, "FORBIDDEN", converted.Code)
	assert.Equal(t, http.StatusForbidden, converted.HTTPStatus)
}

func TestToDomainErrorWrapped(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NewConflict("taken", nil))
	converted := ToDomainError(wrapped)
	assert.Equal(t, "CONFLICT", converted.Code)
}

func TestToDomainErrorNoRows(t *testing.T) {
	converted := ToDomainError(fmt.Errorf("query: %w", pgx.ErrNoRows))
	assert.Equal(t, "NOT_FOUND", converted.Code)
	assert.Equal(t, http.StatusNotFound, converted.HTTPStatus)
}

func TestToDomainErrorUnknown(t *testing.T) {
	converted := ToDomainError(errors.New("boom"))
	assert.Equal(t, "INTERNAL_ERROR", converted.Code)
	assert.Equal(t, http.StatusInternalServerError, converted.HTTPStatus)
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestStorageUnavailableStatus(t *testing.T) {
	converted := ToDomainError(NewStorageUnavailable(errors.New("disk gone")))
	assert.Equal(t, "STORAGE_UNAVAILABLE", converted.Code)
	assert.Equal(t, http.StatusServiceUnavailable, converted.HTTPStatus)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound("ticket", nil)))
	assert.True(t, IsNotFound(pgx.ErrNoRows))
	assert.False(t, IsNotFound(NewForbidden("no")))
	assert.False(t, IsNotFound(nil))
}
