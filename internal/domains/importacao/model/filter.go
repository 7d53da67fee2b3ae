package model

// Pagination defaults for the audit log listing
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// LogFilter selects audit log entries. Empty fields do not filter.
type LogFilter struct {
	UsuarioID      string
	TipoImportacao ImportType
	Page           int
	PageSize       int
}

// Normalize applies defaults and rejects impossible pages
func (f *LogFilter) Normalize() error {
	if f.Page == 0 {
		f.Page = 1
	}
	if f.PageSize == 0 {
		f.PageSize = DefaultPageSize
	}
	if f.Page < 1 || f.PageSize < 1 || f.PageSize > MaxPageSize {
		return NewInvalidPageParams(f.Page, f.PageSize)
	}
	return nil
}

// Offset is the SQL offset of the current page
func (f LogFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// LogPage is one page of audit log entries
type LogPage struct {
	Items      []*ImportLog `json:"items"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}

func NewLogPage(items []*ImportLog, total int64, f LogFilter) *LogPage {
	pages := 0
	if f.PageSize > 0 {
		pages = int((total + int64(f.PageSize) - 1) / int64(f.PageSize))
	}
	if items == nil {
		items = []*ImportLog{}
	}
	return &LogPage{Items: items, Total: total, Page: f.Page, PageSize: f.PageSize, TotalPages: pages}
}
