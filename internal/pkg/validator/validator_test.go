package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name  string   `json:"name" validate:"notblank"`
	Phone string   `json:"phone" validate:"required"`
	Tags  []string `json:"tags" validate:"dive,oneof=website mobile"`
}

func TestValidate_OK(t *testing.T) {
	assert.Nil(t, Validate(&sample{Name: "Bob", Phone: "555", Tags: []string{"website"}}))
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	errs := Validate(&sample{Name: "   ", Tags: []string{"desktop"}})

	assert.Equal(t, "notblank", errs["name"])
	assert.Equal(t, "required", errs["phone"])
	assert.Equal(t, "oneof", errs["tags[0]"])
}
