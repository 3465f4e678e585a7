package modcache

// Progress receives scan progress. It is called synchronously.
type Progress interface {
	Report(percent int, message string)
}

// ProgressFunc adapts a function to Progress.
type ProgressFunc func(percent int, message string)

// Report calls f.
func (f ProgressFunc) Report(percent int, message string) {
	f(percent, message)
}

type nopProgress struct{}

func (nopProgress) Report(int, string) {}
