package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	araex = "c8744a29-7ed0-447a-af5a-51e4ad291d1d"
	wuste = "3abaaf40-a35a-488d-8ef2-0184c8c5f3c3"
	flak  = "92c0a0fc-aa86-4922-ab1f-7b9326720177"
)

var dataset = map[string]string{
	"group.toml": `
[[entities]]
id = "` + araex + `"
display_name = "Araex"

[[entities]]
id = "` + wuste + `"
display_name = "Wuste"

[[entities]]
id = "` + flak + `"
display_name = "Flak"
`,
	"ledgers/39C3/.ledger.toml": `
id = "10cc6659-531e-4c8f-881f-1bf6b24abbc0"
display_name = "39C3"
participants = ["` + araex + `", "` + wuste + `", "` + flak + `"]
`,
	"ledgers/39C3/019b5b4f-8077-7c4b-89d4-9380c444ee9d.toml": `
description = "Train"
paid_by_entity = "` + wuste + `"
currency_iso_4217 = "CHF"
amount = 600
transaction_datetime = 2025-11-17T14:43:02+01:00

[[split_ratios]]
entity_id = "` + araex + `"
ratio = "1/3"

[[split_ratios]]
entity_id = "` + wuste + `"
ratio = "1/3"

[[split_ratios]]
entity_id = "` + flak + `"
ratio = "1/3"
`,
}

// setupRepo commits the dataset to a scratch repository and points the configuration at it.
func setupRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repository: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	for name, content := range dataset {
		full := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
		if _, err := wt.Add(name); err != nil {
			t.Fatalf("failed to add %s: %v", name, err)
		}
	}
	_, err = wt.Commit("dataset", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}

	t.Chdir(t.TempDir())
	t.Setenv("BORROWCHECKER_BACKEND", "git")
	t.Setenv("BORROWCHECKER_REPO_PATH", dir)
	t.Setenv("BORROWCHECKER_USER_ID", "")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	setupRepo(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"ledgers", []string{"ledgers"}, []string{"39C3", "Araex, Wuste, Flak"}},
		{"transactions", []string{"transactions", "39c3"}, []string{"Train", "600.00", "paid by Wuste"}},
		{"balances", []string{"balances", "39C3", "--user", "Araex"}, []string{"CHF", "Wuste", "-", "200.00", "Total"}},
		{"settle", []string{"settle", "10cc6659-531e-4c8f-881f-1bf6b24abbc0"}, []string{"Araex", "Flak", "-> Wuste", "200.00"}},
		{"validate", []string{"validate"}, []string{"OK"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("%s failed: %v\n%s", tt.name, err, out)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}

	if out, err := run(t, "settle", "nope"); err == nil {
		t.Errorf("settle on unknown ledger: expected error, got\n%s", out)
	}
}

func TestImport(t *testing.T) {
	setupRepo(t)
	db := filepath.Join(t.TempDir(), "import.db")

	out, err := run(t, "import", "--db", db)
	if err != nil {
		t.Fatalf("import failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Imported 3 entities, 1 ledgers, 1 transactions") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = run(t, "import", "--db", db)
	if err != nil {
		t.Fatalf("second import failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "1 ledgers and 1 transactions already present") {
		t.Errorf("unexpected output:\n%s", out)
	}

	t.Setenv("BORROWCHECKER_BACKEND", "sqlite")
	t.Setenv("BORROWCHECKER_DB_PATH", db)
	out, err = run(t, "settle", "39C3")
	if err != nil {
		t.Fatalf("settle on sqlite failed: %v\n%s", err, out)
	}
	if strings.Count(out, "-> Wuste") != 2 {
		t.Errorf("expected two payments to Wuste:\n%s", out)
	}
}
