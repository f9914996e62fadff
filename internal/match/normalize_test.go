package match

import (
	"testing"
)

func TestNormalizeIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Basic cases
		{"OrderID", "orderid"},
		{"order_id", "orderid"},
		{"order-id", "orderid"},
		{"orderId", "orderid"},
		{"ORDERID", "orderid"},

		// CamelCase variations
		{"customerName", "customername"},
		{"CustomerName", "customername"},
		{"XMLParser", "xmlparser"},
		{"getHTTPResponse", "gethttpresponse"},
		{"totalCents", "totalcents"},
		{"TotalCents", "totalcents"},

		// With underscores
		{"price_cents", "pricecents"},
		{"PRICE_CENTS", "pricecents"},
		{"Price_Cents", "pricecents"},

		// Edge cases
		{"", ""},
		{"a", "a"},
		{"A", "a"},
		{"ID", "id"},
		{"id", "id"},

		// Mixed separators
		{"order_item-ID", "orderitemid"},
		{"Address.Line1", "addressline1"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizeIdent(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeIdent(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestStripAffixes(t *testing.T) {
	naming := Naming{Prefixes: []string{"Get", "m"}, Suffixes: []string{"Value", "Field"}}

	tests := []struct {
		input    string
		expected string
	}{
		{"GetName", "Name"},
		{"mTotal", "Total"},
		{"NameValue", "Name"},
		{"GetNameField", "Name"},
		{"Get", "Get"},
		{"Value", "Value"},
		{"Customer", "Customer"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := StripAffixes(tt.input, naming)
			if result != tt.expected {
				t.Errorf("StripAffixes(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNameKeys(t *testing.T) {
	naming := Naming{Prefixes: []string{"Get"}}

	if got := NameKeys("GetName", naming); !stringSliceEqual(got, []string{"getname", "name"}) {
		t.Errorf("NameKeys(GetName) = %v", got)
	}

	if got := NameKeys("Name", naming); !stringSliceEqual(got, []string{"name"}) {
		t.Errorf("NameKeys(Name) = %v", got)
	}
}

func TestJoinPath(t *testing.T) {
	want := "addressline1"

	for _, parts := range [][]string{
		{"Address", "Line1"},
		{"Address.Line1"},
		{"Address_Line1"},
		{"addressLine1"},
	} {
		if got := JoinPath(parts...); got != want {
			t.Errorf("JoinPath(%v) = %q, want %q", parts, got, want)
		}
	}
}

func TestTokenizeCamelCase(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"OrderID", []string{"Order", "ID"}},
		{"customerName", []string{"customer", "Name"}},
		{"XMLParser", []string{"XML", "Parser"}},
		{"getHTTPResponse", []string{"get", "HTTP", "Response"}},
		{"order_id", []string{"order", "id"}},
		{"ALLCAPS", []string{"ALLCAPS"}},
		{"lowercase", []string{"lowercase"}},
		{"", nil},
		{"a", []string{"a"}},
		{"AB", []string{"AB"}},
		{"AbC", []string{"Ab", "C"}},
		{"ABcD", []string{"A", "Bc", "D"}},
		{"URLParser", []string{"URL", "Parser"}},
		{"parseURL", []string{"parse", "URL"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := tokenizeCamelCase(tt.input)
			if !stringSliceEqual(result, tt.expected) {
				t.Errorf("tokenizeCamelCase(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestTokenizeIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"OrderID", []string{"order", "id"}},
		{"customerName", []string{"customer", "name"}},
		{"XMLParser", []string{"xml", "parser"}},
		{"order_id", []string{"order", "id"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := TokenizeIdent(tt.input)
			if !stringSliceEqual(result, tt.expected) {
				t.Errorf("TokenizeIdent(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
