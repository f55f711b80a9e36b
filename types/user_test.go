package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseRole(t *testing.T) {
	for _, role := range AllRoles() {
		parsed, err := ParseRole(string(role))
		if err != nil {
			t.Fatalf("ParseRole(%q) error: %v", role, err)
		}
		if parsed != role {
			t.Fatalf("ParseRole(%q) = %q", role, parsed)
		}
	}

	for _, raw := range []string{"", "admin", "administrator", "ROOT", " STUDENT"} {
		if _, err := ParseRole(raw); err == nil {
			t.Fatalf("ParseRole(%q) should fail", raw)
		}
	}
}

func TestUserJSONOmitsPasswordHash(t *testing.T) {
	user := User{
		ID:           1,
		Username:     "johndoe",
		PasswordHash: "$2a$10$abcdef",
	}

	raw, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if strings.Contains(string(raw), "abcdef") || strings.Contains(strings.ToLower(string(raw)), "password") {
		t.Fatalf("password hash leaked into JSON: %s", raw)
	}
}
