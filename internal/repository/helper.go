package repository

const (
	DefaultPageSize = 10
	PageMinSize     = 1
	PageMaxSize     = 50
)

// PageVerify clamps a page size into [PageMinSize, PageMaxSize].
// Zero or negative sizes fall back to DefaultPageSize.
func PageVerify(num *int) {
	switch {
	case *num <= 0:
		*num = DefaultPageSize
	case *num < PageMinSize:
		*num = PageMinSize
	case *num > PageMaxSize:
		*num = PageMaxSize
	}
}
