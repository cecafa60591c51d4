package assets

// Names of the built-in assets.
const (
	BaseStyle        = "base"     // required by every conversion
	PrintStyle       = "print"    // appended for print-friendly output
	MobileStyle      = "mobile"   // appended for mobile-optimized output
	DocumentTemplate = "document" // the page skeleton
)

// defaultLoader serves the package-level helpers.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a stylesheet from the embedded assets.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads a template from the embedded assets.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}
