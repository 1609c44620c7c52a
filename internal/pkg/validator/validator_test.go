package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name  string `validate:"required"`
	Count *int   `validate:"required,min=0"`
}

func TestValidate(t *testing.T) {
	zero, negative := 0, -1

	assert.NoError(t, Validate(sample{Name: "9q8y", Count: &zero}), "a pointer to zero is present")
	assert.Error(t, Validate(sample{Name: "9q8y"}))
	assert.Error(t, Validate(sample{Count: &zero}))
	assert.Error(t, Validate(sample{Name: "9q8y", Count: &negative}))
}
