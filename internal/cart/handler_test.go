package cart

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestUpdateItemRequestBounds(t *testing.T) {
	v := validator.New()
	assert.NoError(t, v.Struct(updateItemRequest{Delta: -9999}))
	assert.NoError(t, v.Struct(updateItemRequest{Delta: 9999}))
	assert.Error(t, v.Struct(updateItemRequest{Delta: 0}))
	assert.Error(t, v.Struct(updateItemRequest{Delta: 10000}))
	assert.Error(t, v.Struct(updateItemRequest{Delta: -1 << 30}))
}

func TestAddItemRequestBounds(t *testing.T) {
	v := validator.New()
	assert.NoError(t, v.Struct(addItemRequest{ProductID: 1, Quantity: 9999}))
	assert.Error(t, v.Struct(addItemRequest{ProductID: 1, Quantity: 10000}))
	assert.Error(t, v.Struct(addItemRequest{Quantity: 1}))
}
