package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productInput struct {
	Name     string  `json:"name"      validate:"required,min=1,max=255"`
	Price    float64 `json:"price"     validate:"required,gt=0"`
	Category string  `json:"category"  validate:"required"`
	Stock    int     `json:"stock"     validate:"gte=0"`
	ImageURL string  `json:"image_url" validate:"nullable,url"`
}

func TestStructPassesValidInput(t *testing.T) {
	errs := Struct(productInput{
		Name:     "Kopi Susu",
		Price:    18000,
		Category: "drinks",
		Stock:    12,
	})
	assert.Empty(t, errs)
}

func TestRequiredFieldsReportedByJSONName(t *testing.T) {
	errs := Struct(productInput{Price: 10})

	require.Contains(t, errs, "name")
	require.Contains(t, errs, "category")
	assert.Equal(t, "The name field is required.", errs["name"])
}

func TestNullableSkipsRemainingRulesWhenEmpty(t *testing.T) {
	errs := Struct(productInput{Name: "Tea", Price: 5, Category: "drinks"})
	assert.NotContains(t, errs, "image_url")

	errs = Struct(productInput{Name: "Tea", Price: 5, Category: "drinks", ImageURL: "not-a-url"})
	assert.Equal(t, "The image_url must be a valid URL.", errs["image_url"])
}

func TestNumericComparisons(t *testing.T) {
	type input struct {
		Qty   int     `json:"qty"   validate:"required,gte=1,lte=100"`
		Ratio float64 `json:"ratio" validate:"gt=0,lt=1"`
	}

	assert.Empty(t, Struct(input{Qty: 1, Ratio: 0.5}))

	errs := Struct(input{Qty: 101, Ratio: 1})
	assert.Equal(t, "The qty must not be greater than 100.", errs["qty"])
	assert.Equal(t, "The ratio must be less than 1.", errs["ratio"])
}

func TestInRuleKeepsCommaSeparatedChoices(t *testing.T) {
	type input struct {
		Role string `json:"role" validate:"required,in=admin,staff,viewer"`
	}

	assert.Empty(t, Struct(input{Role: "staff"}))

	errs := Struct(input{Role: "root"})
	assert.Equal(t, "The selected role is invalid.", errs["role"])
}

func TestOptionalPointerFields(t *testing.T) {
	type input struct {
		Status *string `json:"status" validate:"in=active,inactive"`
	}

	// nil pointer means the field was absent from the payload
	assert.Empty(t, Struct(input{}))

	bad := "deleted"
	errs := Struct(input{Status: &bad})
	assert.Equal(t, "The selected status is invalid.", errs["status"])

	ok := "active"
	assert.Empty(t, Struct(input{Status: &ok}))
}

func TestEmailRule(t *testing.T) {
	type input struct {
		Email string `json:"email" validate:"required,email"`
	}

	assert.Empty(t, Struct(input{Email: "budi@example.com"}))
	errs := Struct(input{Email: "budi@"})
	assert.Equal(t, "The email must be a valid email address.", errs["email"])
}

func TestFirstFailingRuleWinsPerField(t *testing.T) {
	type input struct {
		Name string `json:"name" validate:"required,min=3"`
	}

	errs := Struct(input{})
	assert.Equal(t, "The name field is required.", errs["name"])
}
