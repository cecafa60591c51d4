package md2html_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-md2html"
)

// Example converts a README in preview mode, which returns the document
// without writing it.
func Example() {
	dir, err := os.MkdirTemp("", "md2html-example")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "README.md")
	if err := os.WriteFile(src, []byte("# Hello World\n\nThis is a test."), 0o600); err != nil {
		fmt.Println("error:", err)
		return
	}

	conv, err := md2html.NewConverter()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer conv.Close()

	result, err := conv.Convert(context.Background(), md2html.Request{
		SourcePath: src,
		Preview:    true,
		Theme:      md2html.DefaultTheme(),
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(result.Title)
	fmt.Println(strings.Contains(result.HTML, "<h1>Hello World</h1>"))
	// Output:
	// Hello World
	// true
}

// Example_filenamePattern writes the document under a dated name.
func Example_filenamePattern() {
	dir, err := os.MkdirTemp("", "md2html-example")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "readme.md")
	if err := os.WriteFile(src, []byte("Some text"), 0o600); err != nil {
		fmt.Println("error:", err)
		return
	}

	conv, err := md2html.NewConverter(md2html.WithClock(func() time.Time {
		return time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	}))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer conv.Close()

	result, err := conv.Convert(context.Background(), md2html.Request{
		SourcePath: src,
		Settings:   md2html.ExportSettings{FilenamePattern: "{name}-{date}"},
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(filepath.Base(result.Path))
	// Output: readme-2024-01-15.html
}

// ExampleBuildThemeCSS shows the dark scope generated for every theme.
func ExampleBuildThemeCSS() {
	css := md2html.BuildThemeCSS(md2html.Theme{
		Name:    "minimal",
		Palette: md2html.Palette{LinkColor: "teal"},
		Dark:    &md2html.Palette{LinkColor: "aqua"},
	})
	fmt.Println(strings.Contains(css, "a {\n  color: teal;\n}"))
	fmt.Println(strings.Contains(css, "body.dark-theme a {\n  color: aqua;\n}"))
	// Output:
	// true
	// true
}
