package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Mirrors the shape of the admin product payloads
type testProductRequest struct {
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"required,gte=0"`
	Quantity int     `json:"quantity" validate:"gte=0,lte=1000"`
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeName bool, includePrice bool) bool {
			reqMap := make(map[string]interface{})

			if includeName {
				reqMap["name"] = "Clay Vase"
			}
			if includePrice {
				reqMap["price"] = 1500.0
			}

			allFieldsPresent := includeName && includePrice

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var testReq testProductRequest
			err := DecodeAndValidate(req, &testReq)

			if allFieldsPresent {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_QuantityRangeValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("quantity outside valid range is rejected", prop.ForAll(
		func(quantity int) bool {
			reqMap := map[string]interface{}{
				"name":     "Clay Vase",
				"price":    1500.0,
				"quantity": quantity,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var testReq testProductRequest
			err := DecodeAndValidate(req, &testReq)

			if quantity >= 0 && quantity <= 1000 {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(-100, 2000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFormatValidationErrorsIncludesFields(t *testing.T) {
	reqBody := []byte(`{"price": -5}`)
	req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	var testReq testProductRequest
	err := DecodeAndValidate(req, &testReq)
	if err == nil {
		t.Fatal("expected validation error")
	}

	validationErrors := FormatValidationErrors(err)
	if len(validationErrors) == 0 {
		t.Fatal("expected formatted validation errors")
	}
	for _, ve := range validationErrors {
		if ve.Field == "" || ve.Message == "" {
			t.Errorf("validation error missing field or message: %+v", ve)
		}
	}
}

func TestDecodeAndValidateRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	var testReq testProductRequest
	if err := DecodeAndValidate(req, &testReq); err == nil {
		t.Error("malformed JSON should fail to decode")
	}
}
