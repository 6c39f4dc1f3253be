package server

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func sign(t *testing.T, key string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestParseRole(t *testing.T) {
	valid := sign(t, "k", jwt.SigningMethodHS256, jwt.MapClaims{"role": "helper", "exp": time.Now().Add(time.Hour).Unix()})
	expired := sign(t, "k", jwt.SigningMethodHS256, jwt.MapClaims{"role": "helper", "exp": time.Now().Add(-time.Hour).Unix()})
	unknownRole := sign(t, "k", jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin"})
	wrongKey := sign(t, "other", jwt.SigningMethodHS256, jwt.MapClaims{"role": "charity"})
	hs512 := sign(t, "k", jwt.SigningMethodHS512, jwt.MapClaims{"role": "charity"})

	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid", "Bearer " + valid, "helper", false},
		{"missing header", "", "", true},
		{"no bearer prefix", valid, "", true},
		{"expired", "Bearer " + expired, "", true},
		{"unknown role", "Bearer " + unknownRole, "", true},
		{"wrong key", "Bearer " + wrongKey, "", true},
		{"unexpected algorithm", "Bearer " + hs512, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRole("k", tt.header)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseRole() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseRole() = %q, want %q", got, tt.want)
			}
		})
	}
}
