package assets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedLoaderLoadsBuiltins(t *testing.T) {
	loader := NewEmbeddedLoader()

	for _, name := range []string{"pdf", "email"} {
		t.Run(name, func(t *testing.T) {
			content, err := loader.LoadTemplate(name)
			if err != nil {
				t.Fatalf("LoadTemplate(%q) error: %v", name, err)
			}
			if !strings.Contains(content, "{{firstName}}") {
				t.Errorf("template %q missing firstName token", name)
			}
			if !strings.Contains(content, "{{brandName}}") {
				t.Errorf("template %q missing brandName token", name)
			}
		})
	}
}

func TestEmbeddedLoaderUnknownTemplate(t *testing.T) {
	loader := NewEmbeddedLoader()

	_, err := loader.LoadTemplate("missing")
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("LoadTemplate(missing) = %v, want ErrTemplateNotFound", err)
	}
}

func TestValidateTemplateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "pdf", false},
		{"with underscore", "custom_pdf", false},
		{"empty", "", true},
		{"forward slash", "dir/name", true},
		{"backslash", `dir\name`, true},
		{"traversal", "../secret", true},
		{"embedded traversal", "a..b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTemplateName(tt.input)
			if tt.wantErr && !errors.Is(err, ErrInvalidTemplateName) {
				t.Errorf("validateTemplateName(%q) = %v, want ErrInvalidTemplateName", tt.input, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("validateTemplateName(%q) unexpected error: %v", tt.input, err)
			}
		})
	}
}

func TestFilesystemLoader(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pdf.html"), []byte("<p>{{firstName}}</p>"), 0o600); err != nil {
		t.Fatal(err)
	}

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error: %v", err)
	}

	content, err := loader.LoadTemplate("pdf")
	if err != nil {
		t.Fatalf("LoadTemplate() error: %v", err)
	}
	if content != "<p>{{firstName}}</p>" {
		t.Errorf("content = %q", content)
	}

	_, err = loader.LoadTemplate("email")
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("LoadTemplate(email) = %v, want ErrTemplateNotFound", err)
	}
}

func TestFilesystemLoaderReloadsEdits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pdf.html")
	if err := os.WriteFile(path, []byte("v1"), 0o600); err != nil {
		t.Fatal(err)
	}

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error: %v", err)
	}

	if content, _ := loader.LoadTemplate("pdf"); content != "v1" {
		t.Fatalf("content = %q, want v1", content)
	}

	if err := os.WriteFile(path, []byte("v2"), 0o600); err != nil {
		t.Fatal(err)
	}
	if content, _ := loader.LoadTemplate("pdf"); content != "v2" {
		t.Errorf("content = %q, want fresh read v2", content)
	}
}

func TestNewFilesystemLoaderRejectsBadPaths(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"empty", func(t *testing.T) string { return "" }},
		{"missing directory", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") }},
		{"regular file", func(t *testing.T) string {
			f := filepath.Join(t.TempDir(), "file.txt")
			if err := os.WriteFile(f, []byte("x"), 0o600); err != nil {
				t.Fatal(err)
			}
			return f
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFilesystemLoader(tt.path(t))
			if !errors.Is(err, ErrInvalidBasePath) {
				t.Errorf("NewFilesystemLoader() = %v, want ErrInvalidBasePath", err)
			}
		})
	}
}

func TestFilesystemLoaderRejectsTraversal(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "templates")
	if err := os.Mkdir(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(parent, "secret.html"), []byte("secret"), 0o600); err != nil {
		t.Fatal(err)
	}

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error: %v", err)
	}

	for _, name := range []string{"../secret", "..", "a/../../secret"} {
		if _, err := loader.LoadTemplate(name); err == nil {
			t.Errorf("LoadTemplate(%q) succeeded, want traversal rejection", name)
		}
	}
}
