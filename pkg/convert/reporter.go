package convert

// Reporter receives per-file progress from a Converter.
type Reporter interface {
	// Found is called once per directory scan, before any conversion.
	Found(dir string, count int)

	// Converted is called after the renderer wrote output.
	Converted(input, output string)

	// Unchanged is called when an incremental run skips a current output.
	Unchanged(input, output string)

	// Failed is called for every input that could not be converted,
	// including a directory that is missing or holds no sources.
	Failed(path string, err error)
}

// NopReporter discards all progress.
type NopReporter struct{}

func (NopReporter) Found(string, int) {}
func (NopReporter) Converted(string, string) {}
func (NopReporter) Unchanged(string, string) {}
func (NopReporter) Failed(string, error) {}

var _ Reporter = NopReporter{}
