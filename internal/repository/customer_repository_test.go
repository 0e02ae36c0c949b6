package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
)

func Test_CustomerRepo_Ensure_IsIdempotent(t *testing.T) {
	customers := repository.NewCustomerRepo()

	assert.True(t, customers.Ensure("Alice"))
	assert.False(t, customers.Ensure("Alice"))
	assert.True(t, customers.Ensure("Bob"))
	assert.True(t, customers.Ensure("bob"))

	assert.Equal(t, []model.Customer{{Name: "Alice"}, {Name: "Bob"}, {Name: "bob"}}, customers.List())
}
