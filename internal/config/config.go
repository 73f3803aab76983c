package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/andresmejia3/rollcall/internal/mailer"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no --config flag is given. It is optional.
const DefaultFile = "rollcall.yaml"

type Config struct {
	Paths       PathsConfig       `yaml:"paths"`
	Camera      CameraConfig      `yaml:"camera"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Mail        mailer.Config     `yaml:"mail"`
	Database    DatabaseConfig    `yaml:"database"`
}

type PathsConfig struct {
	EncodingFile  string `yaml:"encoding_file"`
	AttendanceDir string `yaml:"attendance_dir"`
	CapturedDir   string `yaml:"captured_dir"`
}

type CameraConfig struct {
	Index  int `yaml:"index"`
	Photos int `yaml:"photos"` // faces captured per enrollment
}

type RecognitionConfig struct {
	Tolerance float64 `yaml:"tolerance"`
	ModelsDir string  `yaml:"models_dir"` // dlib model files for go-face
	CNN       bool    `yaml:"cnn"`        // CNN detector instead of HOG, slower but handles angles better
}

type DatabaseConfig struct {
	URL string `yaml:"url"` // optional PostgreSQL ledger, empty disables it
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			EncodingFile:  "face_encodings.json",
			AttendanceDir: "attendance record",
			CapturedDir:   "captured_faces",
		},
		Camera: CameraConfig{
			Index:  0,
			Photos: 20,
		},
		Recognition: RecognitionConfig{
			Tolerance: 0.5,
			ModelsDir: "models",
		},
		Mail: mailer.Config{
			Host:    "smtp.gmail.com",
			Port:    587,
			Subject: "📋 Daily Attendance Report",
			Body:    "Please find attached the attendance report for today.",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (a
// missing DefaultFile is fine, any other missing path is an error), then
// environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// optional
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	readEnvString("ROLLCALL_ENCODING_FILE", &cfg.Paths.EncodingFile)
	readEnvString("ROLLCALL_ATTENDANCE_DIR", &cfg.Paths.AttendanceDir)
	readEnvString("ROLLCALL_CAPTURED_DIR", &cfg.Paths.CapturedDir)
	readEnvInt("ROLLCALL_CAMERA_INDEX", &cfg.Camera.Index)
	readEnvInt("ROLLCALL_PHOTOS", &cfg.Camera.Photos)
	readEnvFloat("ROLLCALL_TOLERANCE", &cfg.Recognition.Tolerance)
	readEnvString("ROLLCALL_MODELS_DIR", &cfg.Recognition.ModelsDir)
	readEnvBool("ROLLCALL_CNN", &cfg.Recognition.CNN)

	readEnvString("SMTP_HOST", &cfg.Mail.Host)
	readEnvInt("SMTP_PORT", &cfg.Mail.Port)
	readEnvString("SMTP_USERNAME", &cfg.Mail.Username)
	readEnvString("SMTP_PASSWORD", &cfg.Mail.Password)
	readEnvString("SMTP_FROM", &cfg.Mail.From)
	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.Username
	}

	readEnvString("DATABASE_URL", &cfg.Database.URL)
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvFloat(name string, value *float64) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return
	}
	*value = f
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = n
}
