package model

import "testing"

func TestSlugify(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   string
		want string
	}{
		{"Lowercase", "Checkout", "checkout"},
		{"DottedTopic", "commerce.checkout.started", "commercecheckoutstarted"},
		{"Spaces", "Page Viewed", "page-viewed"},
		{"Underscores", "page_interaction", "page-interaction"},
		{"MixedSeparators", "user __ action  -- done", "user-action-done"},
		{"SpecialChars", "Add to Cart (v2)!", "add-to-cart-v2"},
		{"LeadingTrailing", "  -checkout- ", "checkout"},
		{"Empty", "", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.in); got != tc.want {
				t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSlugTable_Collisions(t *testing.T) {
	table := NewSlugTable()

	got := []string{
		table.Assign("checkout"),
		table.Assign("checkout"),
		table.Assign("checkout"),
	}
	want := []string{"checkout", "checkout-1", "checkout-2"}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("assignment %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSlugTable_IndependentBases(t *testing.T) {
	table := NewSlugTable()

	if got := table.Assign("checkout"); got != "checkout" {
		t.Errorf("first checkout = %q", got)
	}
	if got := table.Assign("signup"); got != "signup" {
		t.Errorf("first signup = %q", got)
	}
	if got := table.Assign("checkout"); got != "checkout-1" {
		t.Errorf("second checkout = %q", got)
	}
	if got := table.Assign("signup"); got != "signup-1" {
		t.Errorf("second signup = %q", got)
	}
}
