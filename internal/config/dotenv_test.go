package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotEnv_NotExist(t *testing.T) {
	oldHome := os.Getenv("HOME")
	t.Setenv("HOME", t.TempDir())
	t.Cleanup(func() { _ = os.Setenv("HOME", oldHome) })

	m, err := LoadDotEnv()
	if err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if len(m) != 0 {
		t.Fatalf("expected empty map, got %v", m)
	}
}

func TestLoadDotEnv_ParsesKeyValue(t *testing.T) {
	oldHome := os.Getenv("HOME")
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Cleanup(func() { _ = os.Setenv("HOME", oldHome) })

	robqDir := filepath.Join(home, ".robq")
	if err := os.MkdirAll(robqDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(robqDir, ".env"), []byte("# comment\nA=1\nB=two\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	m, err := LoadDotEnv()
	if err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if m["A"] != "1" || m["B"] != "two" {
		t.Fatalf("unexpected map: %v", m)
	}
}

func TestGetConfigValue_EnvOverridesDotEnv(t *testing.T) {
	oldHome := os.Getenv("HOME")
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Cleanup(func() { _ = os.Setenv("HOME", oldHome) })

	robqDir := filepath.Join(home, ".robq")
	if err := os.MkdirAll(robqDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(robqDir, ".env"), []byte("K=fromdotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// env override
	t.Setenv("K", "fromenv")

	v, err := GetConfigValue("K")
	if err != nil {
		t.Fatalf("GetConfigValue: %v", err)
	}
	if v != "fromenv" {
		t.Fatalf("expected env override, got %q", v)
	}
}

func TestLoad_DataRootOverride(t *testing.T) {
	oldHome := os.Getenv("HOME")
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Cleanup(func() { _ = os.Setenv("HOME", oldHome) })

	robqDir := filepath.Join(home, ".robq")
	if err := os.MkdirAll(robqDir, 0o755); err != nil {
		t.Fatal(err)
	}
	body := "data_root: " + filepath.Join(home, "elsewhere") + "\n"
	if err := os.WriteFile(filepath.Join(robqDir, "robq.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	override := filepath.Join(home, "override-root")
	t.Setenv(EnvDataRoot, override)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataRoot != override {
		t.Fatalf("expected %s override, got %q", EnvDataRoot, cfg.DataRoot)
	}
}

func TestConfig_SaveLoadRoundTrip(t *testing.T) {
	oldHome := os.Getenv("HOME")
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Cleanup(func() { _ = os.Setenv("HOME", oldHome) })
	t.Setenv(EnvDataRoot, "")

	robqDir := filepath.Join(home, ".robq")
	if err := os.MkdirAll(robqDir, 0o755); err != nil {
		t.Fatal(err)
	}

	want := &Config{
		DataRoot:  filepath.Join(home, "robustness-data"),
		MirrorURL: "https://example.org/robustness-data.zip",
		Excludes:  []string{"*.part"},
	}
	if err := Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.DataRoot != want.DataRoot || got.MirrorURL != want.MirrorURL {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestEnsureDotEnvTemplate_DoesNotOverwrite(t *testing.T) {
	oldHome := os.Getenv("HOME")
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Cleanup(func() { _ = os.Setenv("HOME", oldHome) })

	robqDir := filepath.Join(home, ".robq")
	if err := os.MkdirAll(robqDir, 0o755); err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(robqDir, ".env")
	if err := os.WriteFile(p, []byte("ROBQ_MIRROR_URL=keep\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDotEnvTemplate(); err != nil {
		t.Fatalf("EnsureDotEnvTemplate: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "ROBQ_MIRROR_URL=keep\n" {
		t.Fatalf("template overwrote existing file: %q", string(b))
	}
}

func TestEnsureDotEnvTemplate_CreatesWhenMissing(t *testing.T) {
	oldHome := os.Getenv("HOME")
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Cleanup(func() { _ = os.Setenv("HOME", oldHome) })

	robqDir := filepath.Join(home, ".robq")
	if err := os.MkdirAll(robqDir, 0o755); err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(robqDir, ".env")

	if err := EnsureDotEnvTemplate(); err != nil {
		t.Fatalf("EnsureDotEnvTemplate: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) == 0 {
		t.Fatalf("expected non-empty template")
	}
}
