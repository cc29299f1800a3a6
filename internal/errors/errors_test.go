package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "E120",
			wantMsg: "Invalid compose.json",
			wantCat: CategoryConfig,
		},
		{
			name:    "feature error",
			code:    "E200",
			wantMsg: "Unknown feature",
			wantCat: CategoryFeature,
		},
		{
			name:    "install error",
			code:    "E210",
			wantMsg: "Failed to install dependencies",
			wantCat: CategoryInstall,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestComposeError_Error(t *testing.T) {
	err := New("E200")
	if got, want := err.Error(), "E200: Unknown feature"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err.Wrap(fmt.Errorf("no feature named %q", "react"))
	if got, want := err.Error(), `E200: Unknown feature: no feature named "react"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &ComposeError{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestComposeError_Unwrap(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := New("E120").Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped error")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E120") != nil {
		t.Error("FromError(nil) should return nil")
	}

	original := New("E210")
	wrapped := fmt.Errorf("installing: %w", original)
	if got := FromError(wrapped, "E120"); got != original {
		t.Errorf("FromError should return the ComposeError in the chain, got %v", got)
	}

	plain := stderrors.New("boom")
	got := FromError(plain, "E123")
	if got.Code != "E123" || got.Wrapped != plain {
		t.Errorf("FromError(plain) = %+v", got)
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New("E211"))
	if !HasCode(err, "E211") {
		t.Error("HasCode should find E211")
	}
	if HasCode(err, "E210") {
		t.Error("HasCode should not match E210")
	}
	if HasCode(stderrors.New("plain"), "E211") {
		t.Error("HasCode should be false for plain errors")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E211").
		WithSuggestion("Install Node.js from https://nodejs.org").
		Wrap(stderrors.New(`exec: "npm": executable file not found in $PATH`))

	out := err.Format()
	for _, want := range []string{
		"ERROR E211: Package manager not found",
		`exec: "npm"`,
		"Hint: Install Node.js",
		"Learn more: https://aem-design.github.io/compose/errors/E211",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	if got := New("E230").FormatCompact(); got != "E230: Publish failed" {
		t.Errorf("FormatCompact() = %q", got)
	}
	if got := Newf(CategoryCLI, "bad flag %s", "--x").FormatCompact(); got != "bad flag --x" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six seven", 10)
	for _, line := range lines {
		if len(line) > 10 {
			t.Errorf("line %q exceeds width", line)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six seven" {
		t.Errorf("wrapText lost words: %v", lines)
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}

func TestPrintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	PrintError(&buf, New("E141"))
	if !strings.Contains(buf.String(), "Not a compose project") {
		t.Errorf("PrintError output = %q", buf.String())
	}

	buf.Reset()
	PrintError(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("PrintError output = %q", buf.String())
	}
}

func TestRegistryTemplates(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok {
			t.Fatalf("GetTemplate(%q) not found", code)
		}
		if tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("template %s is incomplete: %+v", code, tmpl)
		}
		if !strings.HasSuffix(tmpl.DocURL, code) {
			t.Errorf("template %s DocURL = %q", code, tmpl.DocURL)
		}
	}
}
