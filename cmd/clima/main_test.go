package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"clima/internal/config"
)

func TestConfigInitWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	root := newRootCmd()
	root.SetArgs([]string{"--config", path, "config", "init"})
	root.SetIn(strings.NewReader("\nminha-chave\nn\n\n\n\n"))
	var out bytes.Buffer
	root.SetOut(&out)

	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if cfg.ICropAPIKey != "minha-chave" || cfg.LLM.Enabled {
		t.Fatalf("unexpected saved config %+v", cfg)
	}
	if !strings.Contains(out.String(), "Configuração salva") {
		t.Fatalf("missing confirmation in %q", out.String())
	}
}

func TestAskNeedsQuestion(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"ask"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected an error without a question")
	}
}

func TestCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"chat", "ask", "tui", "serve", "status", "config"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("missing command %q", name)
		}
	}
}
