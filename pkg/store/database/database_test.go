package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDialector(t *testing.T) {
	assert.Equal(t, "postgres", dialector("postgres://u:p@localhost:5432/app?sslmode=disable").Name())
	assert.Equal(t, "postgres", dialector("postgresql://localhost/app").Name())
	assert.Equal(t, "mysql", dialector("u:p@tcp(localhost:3306)/app?parseTime=true").Name())
	assert.Equal(t, "mysql", dialector("mysql://u:p@tcp(localhost:3306)/app").Name())
}

func TestGetUnregistered(t *testing.T) {
	assert.False(t, Has("missing"))
	assert.Panics(t, func() { Get(context.Background(), "missing") })
}
