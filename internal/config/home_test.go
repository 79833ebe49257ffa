package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestGetRimdefsHomeWithEnvVar tests RIMDEFS_HOME takes precedence
func TestGetRimdefsHomeWithEnvVar(t *testing.T) {
	customHome := filepath.Join(t.TempDir(), "custom")
	t.Setenv(HomeEnv, customHome)

	home, err := GetRimdefsHome()
	if err != nil {
		t.Fatalf("GetRimdefsHome() error = %v", err)
	}
	if home != customHome {
		t.Errorf("GetRimdefsHome() = %q, want %q", home, customHome)
	}
	if _, err := os.Stat(home); err != nil {
		t.Errorf("home directory not created: %v", err)
	}
}

// TestGetRimdefsHomeFallback tests the working directory fallback
func TestGetRimdefsHomeFallback(t *testing.T) {
	t.Setenv(HomeEnv, "")
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	home, err := GetRimdefsHome()
	if err != nil {
		t.Fatalf("GetRimdefsHome() error = %v", err)
	}
	if want := filepath.Join(dir, HomeDirName); home != want {
		t.Errorf("GetRimdefsHome() = %q, want %q", home, want)
	}

	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, HomeDirName, ConfigFileName) {
		t.Errorf("DefaultConfigPath() = %q", path)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("RIMDEFS_TEST_VALUE=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RIMDEFS_TEST_VALUE", "")
	os.Unsetenv("RIMDEFS_TEST_VALUE")

	if err := LoadEnv(envFile, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := os.Getenv("RIMDEFS_TEST_VALUE"); got != "from-file" {
		t.Errorf("RIMDEFS_TEST_VALUE = %q, want from-file", got)
	}
}

func TestLoadEnvKeepsExisting(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("RIMDEFS_TEST_KEEP=file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RIMDEFS_TEST_KEEP", "env")

	if err := LoadEnv(envFile); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("RIMDEFS_TEST_KEEP"); got != "env" {
		t.Errorf("RIMDEFS_TEST_KEEP = %q, want env", got)
	}
}
