package validate_test

import (
	"strings"
	"testing"

	"github.com/shashiranjanraj/storefront/pkg/validate"
)

type orderInput struct {
	Name     string `json:"customer_name"  validate:"required,max=255"`
	Phone    string `json:"customer_phone" validate:"required,phone"`
	Email    string `json:"customer_email" validate:"omitempty,email"`
	Quantity int    `json:"quantity"       validate:"gte=1,lte=999"`
	Status   string `json:"status"         validate:"omitempty,oneof=pending processing completed cancelled"`
	Secret   string `json:"-"              validate:"max=4"`
}

func valid() orderInput {
	return orderInput{Name: "Awa Diop", Phone: "+221 77 000 00 00", Quantity: 2}
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(valid())
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(orderInput{Quantity: 1})
	if !validate.HasErrors(errs) {
		t.Fatal("expected required errors")
	}
	if _, ok := errs["customer_name"]; !ok {
		t.Error("expected customer_name to be required")
	}
	if _, ok := errs["customer_phone"]; !ok {
		t.Error("expected customer_phone to be required")
	}
	if !strings.Contains(errs["customer_name"], "required") {
		t.Errorf("unexpected message: %q", errs["customer_name"])
	}
}

func TestPhoneRule(t *testing.T) {
	cases := map[string]bool{
		"+33 7 75 77 13 06": true,
		"(221) 770-0000":    true,
		"0033775771306":     true,
		"call me":           false,
		"12":                false,
		"+-- -- ---":        false,
	}
	for phone, ok := range cases {
		in := valid()
		in.Phone = phone
		_, failed := validate.Struct(in)["customer_phone"]
		if failed == ok {
			t.Errorf("phone %q: valid=%v, want %v", phone, !failed, ok)
		}
	}
}

func TestOptionalEmail(t *testing.T) {
	in := valid()
	in.Email = "not-an-email"
	if _, ok := validate.Struct(in)["customer_email"]; !ok {
		t.Error("expected invalid email to fail")
	}

	in.Email = ""
	if validate.HasErrors(validate.Struct(in)) {
		t.Error("empty optional email should pass")
	}
}

func TestOneOfAndBounds(t *testing.T) {
	in := valid()
	in.Status = "shipped"
	in.Quantity = 0
	errs := validate.Struct(in)

	if _, ok := errs["status"]; !ok {
		t.Error("expected status to fail oneof")
	}
	if _, ok := errs["quantity"]; !ok {
		t.Error("expected quantity to fail gte")
	}
}

func TestVar(t *testing.T) {
	if err := validate.Var("https://example.com/a.png", "url"); err != nil {
		t.Errorf("unexpected: %v", err)
	}
	if err := validate.Var("nope", "url"); err == nil {
		t.Error("expected url failure")
	}
}

type Customer struct {
	Name  string `json:"customer_name"  validate:"required"`
	Phone string `json:"customer_phone" validate:"required,phone"`
}

type productOrder struct {
	Customer
	Note string `json:"note" validate:"max=3"`
}

func TestEmbeddedFieldsKeepJSONNames(t *testing.T) {
	errs := validate.Struct(productOrder{Note: "too long"})
	for _, key := range []string{"customer_name", "customer_phone", "note"} {
		if _, ok := errs[key]; !ok {
			t.Errorf("expected an error keyed %q, got %v", key, errs)
		}
	}
}
