package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func noColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	DisableColors()
	t.Cleanup(func() { color.NoColor = prev })
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "E100",
			wantMsg: "Invalid configuration file",
			wantCat: CategoryConfig,
		},
		{
			name:    "scan error",
			code:    "E202",
			wantMsg: "Irregular entry in route tree",
			wantCat: CategoryScan,
		},
		{
			name:    "mount error",
			code:    "E301",
			wantMsg: "No handler for route file",
			wantCat: CategoryMount,
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

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "unknown format %q", "xml")
	if err.Message != `unknown format "xml"` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Error() != `unknown format "xml"` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestRouteError_Error(t *testing.T) {
	err := New("E201")
	if got, want := err.Error(), "E201: Route directory not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err.Wrap(fs.ErrNotExist)
	if got, want := err.Error(), "E201: Route directory not found: file does not exist"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestRouteError_Unwrap(t *testing.T) {
	err := New("E201").Wrap(fmt.Errorf("open routes: %w", fs.ErrNotExist))
	if !stderrors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is should see through RouteError")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E200") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	re := New("E202")
	if FromError(re, "E200") != re {
		t.Error("FromError should return RouteError as-is")
	}

	wrapped := fmt.Errorf("mount: %w", re)
	if FromError(wrapped, "E200") != re {
		t.Error("FromError should find a RouteError in the chain")
	}

	plain := stderrors.New("boom")
	got := FromError(plain, "E200")
	if got.Code != "E200" || got.Wrapped != plain {
		t.Errorf("FromError(plain) = %+v", got)
	}
}

func TestFormat(t *testing.T) {
	noColor(t)

	err := New("E201").
		WithPath("/srv/app/routes").
		Wrap(fs.ErrNotExist)

	formatted := err.Format()
	for _, want := range []string{
		"ERROR E201: Route directory not found",
		"/srv/app/routes",
		"Cause: file does not exist",
		"Hint: Check the root directory",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q:\n%s", want, formatted)
		}
	}
	if strings.Contains(formatted, "\033[") {
		t.Error("Format() should not contain ANSI codes when colors are disabled")
	}
}

func TestFprint(t *testing.T) {
	noColor(t)

	var buf bytes.Buffer
	Fprint(&buf, fmt.Errorf("scan: %w", New("E204")))
	if !strings.Contains(buf.String(), "ERROR E204: Bucket listing failed") {
		t.Errorf("Fprint(RouteError) = %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, stderrors.New("plain failure"))
	if got := buf.String(); got != "\nERROR: plain failure\n\n" {
		t.Errorf("Fprint(plain) = %q", got)
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("GetAllCodes() should return codes")
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Errorf("codes not sorted: %q before %q", codes[i-1], codes[i])
		}
	}
	for _, code := range codes {
		tmpl, _ := GetTemplate(code)
		if tmpl.Message == "" {
			t.Errorf("%s has no message", code)
		}
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("short text", 100)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}

	got = wrapText("this is a longer text that should be wrapped", 20)
	if len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}

	if got := wrapText("", 10); len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}
