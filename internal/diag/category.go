package diag

// Category identifies which pattern a log line matched. Every warning form
// LaTeX emits maps to one of these; lines that look like a warning but match
// no known form fall back to CatGenericWarning so nothing is dropped.
type Category uint8

const (
	// CatGenericWarning is any line carrying "Warning:" that matches no
	// more specific form.
	CatGenericWarning Category = iota
	// CatLaTeXWarning is a "LaTeX Warning:" line.
	CatLaTeXWarning
	// CatPackageWarning is a "Package <name> Warning:" line.
	CatPackageWarning
	// CatClassWarning is a "Class <name> Warning:" line.
	CatClassWarning
	// CatError is a file:line error in -file-line-error format.
	CatError
)

func (c Category) String() string {
	switch c {
	case CatGenericWarning:
		return "Warning"
	case CatLaTeXWarning:
		return "LaTeX"
	case CatPackageWarning:
		return "Package"
	case CatClassWarning:
		return "Class"
	case CatError:
		return "Error"
	}
	return "Unknown"
}

// Severity returns the severity implied by the category.
func (c Category) Severity() Severity {
	if c == CatError {
		return SevError
	}
	return SevWarning
}
