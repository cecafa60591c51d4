// Package assets provides the stylesheets and the document skeleton used to
// build self-contained HTML pages.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - go:embed filesystem compiled into the binary
//	    ├── FilesystemLoader  - a user directory on disk
//	    └── AssetResolver     - custom directory first, embedded fallback
//
// The embedded set always contains the base stylesheet, the print and mobile
// stylesheets, and the document template, so a converter built on the
// resolver never misses a required asset unless a custom file is unreadable.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   ├── base.css
//	│   ├── print.css
//	│   └── mobile.css
//	└── templates/
//	    └── document.html
//
// # Security
//
// Asset names are validated before use, and FilesystemLoader resolves
// symlinks and verifies every path stays within basePath.
package assets
