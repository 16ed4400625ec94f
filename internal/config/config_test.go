package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAccountAddr(t *testing.T) {
	a := EmailAccount{IMAPHost: "imap.gmail.com"}
	if got := a.Addr(); got != "imap.gmail.com:993" {
		t.Fatalf("Addr = %q, want default port 993", got)
	}

	a.IMAPPort = 1143
	if got := a.Addr(); got != "imap.gmail.com:1143" {
		t.Fatalf("Addr = %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"empty config is fine", Config{}, ""},
		{
			"account missing credentials",
			Config{Accounts: []EmailAccount{{Name: "inbox", IMAPHost: "imap.example.com"}}},
			"accounts[0]",
		},
		{
			"digest without smtp",
			Config{SendDigest: true},
			"smtp.host",
		},
		{
			"complete",
			Config{
				Accounts: []EmailAccount{{
					Name: "inbox", Username: "u", Password: "p", IMAPHost: "imap.example.com",
				}},
				SendDigest: true,
				SMTP:       SMTPConfig{Host: "smtp.example.com", Recipient: "me@example.com"},
			},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	content := `interests:
  - machine learning
  - systems
preferred_opportunities:
  - fellowship
preferred_locations:
  - remote
exclusions:
  - mlm
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	profile, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if len(profile.Interests) != 2 || profile.Interests[0] != "machine learning" {
		t.Fatalf("interests = %v", profile.Interests)
	}
	if profile.ScoringWeights.InterestMatch != 0.4 {
		t.Fatalf("defaults not applied: %+v", profile.ScoringWeights)
	}
}

func TestLoadProfile_Missing(t *testing.T) {
	if _, err := LoadProfile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing profile")
	}
}
