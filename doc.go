// Package md2html converts Markdown README files to styled, self-contained HTML.
//
// # Quick Start
//
// Create a converter, convert a file, and close when done:
//
//	conv, err := md2html.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, md2html.Request{
//	    SourcePath: "README.md",
//	    Theme:      md2html.DefaultTheme(),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Path)
//
// Set Request.Preview to get the document back in Result.HTML without
// writing anything to disk.
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Source read and normalization (BOM, line endings)
//  2. Markdown to HTML conversion via Goldmark (tables, fenced code, highlighting)
//  3. Post-processing: local images embedded as data URIs, optional TOC
//  4. Stylesheet bundle: base, theme, mobile, print, custom CSS
//  5. Document assembly with the light/dark theme toggle
//  6. Output: HTML file, PDF via headless Chrome (go-rod), or in-memory preview
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := md2html.NewConverter(
//	    md2html.WithAssetPath("/path/to/custom/assets"),
//	    md2html.WithLogger(logger),
//	    md2html.WithTimeout(time.Minute),
//	)
//
// Per-conversion choices travel in the Request: Theme, ExportOptions
// (mobile, print, TOC, format) and ExportSettings (filename pattern,
// metadata, header and footer HTML).
//
// # Batch Conversion
//
// StartBatch converts files sequentially on one worker goroutine and reports
// progress on a channel. Cancel stops the batch between files; files that were
// never started are reported as StatusNotAttempted, not as failures.
//
//	b := conv.StartBatch(ctx, md2html.BatchRequest{Files: files, Theme: theme})
//	for p := range b.Progress() {
//	    fmt.Printf("%d/%d %s\n", p.Index+1, p.Total, p.Result.SourcePath)
//	}
//	report := b.Wait()
//
// # Error Handling
//
// Errors wrap sentinel values and can be classified with errors.Is:
//
//	if errors.Is(err, md2html.ErrReadSource) {
//	    // source file missing or unreadable
//	}
package md2html
