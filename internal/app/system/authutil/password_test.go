package authutil

import "testing"

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid password", "correct-horse-battery", nil},
		{"minimum length", "eightchr", nil},
		{"too short", "short", ErrPasswordTooShort},
		{"too long", string(make([]byte, 129)), ErrPasswordTooLong},
		{"common password", "password1", ErrPasswordCommon},
		{"common password uppercase", "PASSWORD1", ErrPasswordCommon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidatePassword(tt.password); err != tt.wantErr {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestPasswordIssues(t *testing.T) {
	if issues := PasswordIssues("strong-and-rare-9"); len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}
	if issues := PasswordIssues("admin"); len(issues) != 1 {
		t.Errorf("expected one issue for short password, got %v", issues)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("test-password-123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "test-password-123" {
		t.Error("hash should not equal plain password")
	}
	if !CheckPassword("test-password-123", hash) {
		t.Error("CheckPassword() should accept the correct password")
	}
	if CheckPassword("wrong-password", hash) {
		t.Error("CheckPassword() should reject a wrong password")
	}
}
