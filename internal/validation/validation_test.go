package validation

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-inventory/internal/apperr"
)

type testInput struct {
	Name  string   `json:"name" validate:"notblank,max=10"`
	Email string   `json:"email" validate:"required,email"`
	Price *float64 `json:"price" validate:"required,gte=0"`
}

func ptr(f float64) *float64 { return &f }

func TestStruct_Valid(t *testing.T) {
	err := Struct(testInput{Name: "Widget", Email: "a@b.com", Price: ptr(0)})
	assert.NoError(t, err)
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(testInput{Name: "   ", Email: "nope"})
	require.Error(t, err)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindValidation, appErr.Kind())

	fields := map[string]string{}
	for _, f := range appErr.Fields() {
		fields[f.Field] = f.Message
	}
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "is required", fields["price"])
	assert.Equal(t, "name is required", appErr.Message())
}

func TestStruct_StringLengthMessage(t *testing.T) {
	err := Struct(testInput{Name: strings.Repeat("x", 11), Email: "a@b.com", Price: ptr(1)})

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "name must be at most 10 characters long", appErr.Message())
}

func TestProperty_NegativePriceRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("negative prices fail with a validation error", prop.ForAll(
		func(price float64) bool {
			err := Struct(testInput{Name: "Widget", Email: "a@b.com", Price: ptr(price)})
			return apperr.IsKind(err, apperr.KindValidation)
		},
		gen.Float64Range(-1e9, -0.0001),
	))

	properties.Property("non-negative prices pass", prop.ForAll(
		func(price float64) bool {
			return Struct(testInput{Name: "Widget", Email: "a@b.com", Price: ptr(price)}) == nil
		},
		gen.Float64Range(0, 1e9),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
