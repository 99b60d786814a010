package transform

import (
	"reflect"
	"testing"
)

func TestToSnake(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"invoiceDate", "invoice_date"},
		{"taxID", "tax_id"},
		{"HTMLBody", "html_body"},
		{"amount", "amount"},
		{"already_snake", "already_snake"},
		{"a", "a"},
		{"", ""},
		{"customerID2", "customer_id2"},
	}
	for _, c := range cases {
		if got := toSnake(c.in); got != c.want {
			t.Errorf("toSnake(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestToCamel(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"invoice_date", "invoiceDate"},
		{"tax_id", "taxId"},
		{"amount", "amount"},
		{"running_balance", "runningBalance"},
		{"__leading", "leading"},
		{"", ""},
	}
	for _, c := range cases {
		if got := toCamel(c.in); got != c.want {
			t.Errorf("toCamel(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestConvertKeysNested(t *testing.T) {
	in := Record{
		"invoiceDate": "2026-01-15",
		"lineItems": []any{
			Record{"unitPrice": 10.0, "taxRate": 0.2},
		},
		"customer": Record{"displayName": "Acme"},
	}
	want := Record{
		"invoice_date": "2026-01-15",
		"line_items": []any{
			Record{"unit_price": 10.0, "tax_rate": 0.2},
		},
		"customer": Record{"display_name": "Acme"},
	}
	if got := convertKeys(in, toSnake); !reflect.DeepEqual(got, want) {
		t.Errorf("convertKeys = %v, want %v", got, want)
	}
}

func TestConvertKeysDoesNotMutateInput(t *testing.T) {
	in := Record{"someField": Record{"innerField": 1}}
	convertKeys(in, toSnake)
	if _, ok := in["someField"]; !ok {
		t.Error("input record was mutated")
	}
	if _, ok := in["someField"].(Record)["innerField"]; !ok {
		t.Error("nested input record was mutated")
	}
}

func TestConvertKeysDepthBound(t *testing.T) {
	// Build a chain deeper than MaxDepth; the walk must terminate and pass
	// the over-deep remainder through unchanged.
	leaf := Record{"deepKey": 1}
	node := leaf
	for i := 0; i < MaxDepth+8; i++ {
		node = Record{"childNode": node}
	}

	got := convertKeys(node, toSnake)

	depth := 0
	for {
		child, ok := got["child_node"]
		if !ok {
			break
		}
		rec, ok := child.(Record)
		if !ok {
			break
		}
		got = rec
		depth++
	}
	if depth != MaxDepth+1 {
		t.Errorf("converted depth = %d, want %d", depth, MaxDepth+1)
	}
	// Below the bound the source camelCase keys survive.
	if _, ok := got["childNode"]; !ok {
		t.Error("over-deep subtree was not passed through unchanged")
	}
}
