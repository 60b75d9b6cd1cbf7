package diag

// Diagnostic is one classified line of tool output. Origin is the sub-file
// the processor was reading when the line appeared ("" before any file was
// entered). Name is the package or class that issued a warning, empty for
// plain LaTeX and generic warnings. Line is only set for errors.
type Diagnostic struct {
	Severity Severity
	Category Category
	Origin   string
	Name     string
	Message  string
	RawLine  string
	Line     uint32
}
