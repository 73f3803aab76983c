package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected missing default file to be fine, got %v", err)
	}
	if cfg.Recognition.Tolerance != 0.5 {
		t.Errorf("expected tolerance 0.5, got %f", cfg.Recognition.Tolerance)
	}
	if cfg.Paths.AttendanceDir != "attendance record" {
		t.Errorf("expected default attendance dir, got %q", cfg.Paths.AttendanceDir)
	}
	if cfg.Camera.Photos != 20 {
		t.Errorf("expected 20 photos, got %d", cfg.Camera.Photos)
	}
	if cfg.Mail.Host != "smtp.gmail.com" || cfg.Mail.Port != 587 {
		t.Errorf("unexpected mail defaults %s:%d", cfg.Mail.Host, cfg.Mail.Port)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rollcall.yaml")
	content := `
paths:
  attendance_dir: /var/lib/rollcall
recognition:
  tolerance: 0.42
  cnn: true
mail:
  host: mail.example.com
  port: 2525
  from: office@example.com
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Paths.AttendanceDir != "/var/lib/rollcall" {
		t.Errorf("expected attendance dir from yaml, got %q", cfg.Paths.AttendanceDir)
	}
	if cfg.Paths.EncodingFile != "face_encodings.json" {
		t.Errorf("unset yaml fields should keep defaults, got %q", cfg.Paths.EncodingFile)
	}
	if cfg.Recognition.Tolerance != 0.42 || !cfg.Recognition.CNN {
		t.Errorf("unexpected recognition config %+v", cfg.Recognition)
	}
	if cfg.Mail.Host != "mail.example.com" || cfg.Mail.Port != 2525 || cfg.Mail.From != "office@example.com" {
		t.Errorf("unexpected mail config %+v", cfg.Mail)
	}
	if cfg.Mail.Subject == "" {
		t.Error("expected default subject to survive")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("paths: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ROLLCALL_TOLERANCE", "0.3")
	t.Setenv("ROLLCALL_CAMERA_INDEX", "2")
	t.Setenv("ROLLCALL_CNN", "yes")
	t.Setenv("SMTP_USERNAME", "me@example.com")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/rollcall")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Recognition.Tolerance != 0.3 {
		t.Errorf("expected tolerance from env, got %f", cfg.Recognition.Tolerance)
	}
	if cfg.Camera.Index != 2 {
		t.Errorf("expected camera index 2, got %d", cfg.Camera.Index)
	}
	if !cfg.Recognition.CNN {
		t.Error("expected CNN enabled from env")
	}
	if cfg.Mail.From != "me@example.com" {
		t.Errorf("sender should fall back to username, got %q", cfg.Mail.From)
	}
	if cfg.Database.URL == "" {
		t.Error("expected database url from env")
	}
}

func TestInvalidEnvIgnored(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ROLLCALL_PHOTOS", "many")
	t.Setenv("ROLLCALL_TOLERANCE", "close")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Camera.Photos != 20 || cfg.Recognition.Tolerance != 0.5 {
		t.Errorf("invalid env values should be ignored, got %+v %+v", cfg.Camera, cfg.Recognition)
	}
}
