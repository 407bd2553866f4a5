package internal

import (
	"testing"
	"time"
)

func TestNewDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.App.HTTP.Address() != ":8080" {
		t.Errorf("address = %q", cfg.App.HTTP.Address())
	}
}

func TestHTTPConfig_PortBounds(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		c := HTTPConfig{Port: port}
		if err := c.Validate(); err == nil {
			t.Errorf("port %d passed validation", port)
		}
	}
}

func TestIndexConfig_MaxAge(t *testing.T) {
	tests := []struct {
		hours int
		want  time.Duration
	}{
		{0, 24 * time.Hour},
		{-5, 24 * time.Hour},
		{1, time.Hour},
		{72, 72 * time.Hour},
	}
	for _, tt := range tests {
		c := IndexConfig{MaxAgeHours: tt.hours}
		if got := c.MaxAge(); got != tt.want {
			t.Errorf("MaxAge(%d) = %v, want %v", tt.hours, got, tt.want)
		}
	}
}

func TestIndexConfig_RootRequired(t *testing.T) {
	c := IndexConfig{}
	if err := c.Validate(); err == nil {
		t.Error("empty root passed validation")
	}
}

func TestAuthConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AuthConfig
		wantErr bool
	}{
		{"empty mode defaults to disabled", AuthConfig{}, false},
		{"disabled", AuthConfig{Mode: AuthModeDisabled}, false},
		{"token with secret", AuthConfig{Mode: AuthModeToken, Token: "s3cret"}, false},
		{"token without secret", AuthConfig{Mode: AuthModeToken}, true},
		{"unknown mode", AuthConfig{Mode: "basic"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthConfig_AuthEnabled(t *testing.T) {
	if (&AuthConfig{Mode: AuthModeDisabled}).AuthEnabled() {
		t.Error("disabled mode reported enabled")
	}
	if !(&AuthConfig{Mode: AuthModeToken, Token: "x"}).AuthEnabled() {
		t.Error("token mode reported disabled")
	}
}
