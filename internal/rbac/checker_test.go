package rbac

import "testing"

func TestCheckerHas(t *testing.T) {
	c := NewChecker(nil)
	tests := []struct {
		role string
		perm string
		want bool
	}{
		{"student", "exam:view", true},
		{"student", "exam:create", false},
		{"student", "submission:view-all", false},
		{"trainer", "exam:create", true},
		{"trainer", "exam:delete", true}, // via exam:*
		{"trainer", "question:import", true},
		{"trainer", "events:view", false},
		{"admin", "events:view", true}, // via *
		{"admin", "anything:at-all", true},
		{"", "exam:view", false},
		{"ghost-role", "exam:view", false},
	}
	for _, tc := range tests {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerAny(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any("student", "submission:view-own", "submission:view-all") {
		t.Error("student should match view-own")
	}
	if c.Any("student", "users:list", "events:view") {
		t.Error("student should match neither")
	}
}

func TestMatchPerm(t *testing.T) {
	tests := []struct {
		pattern, perm string
		want          bool
	}{
		{"*", "anything", true},
		{"exam:view", "exam:view", true},
		{"exam:*", "exam:delete", true},
		{"exam:*", "question:delete", false},
		{"exam:view", "exam:viewer", false},
	}
	for _, tc := range tests {
		if got := matchPerm(tc.pattern, tc.perm); got != tc.want {
			t.Errorf("matchPerm(%q, %q) = %v, want %v", tc.pattern, tc.perm, got, tc.want)
		}
	}
}
