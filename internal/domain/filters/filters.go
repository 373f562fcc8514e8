package filters

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filters are the paging parameters forwarded to the backend's *PhanTrang endpoints.
type Filters struct {
	Page     int    `schema:"page" validate:"gte=0"`
	PageSize int    `schema:"page_size" validate:"gte=0,lte=100"`
	Query    string `schema:"q" validate:"max=100"`
}

// WithDefaults fills zero values with the backend defaults.
func (f Filters) WithDefaults() Filters {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	return f
}

func (f Filters) Offset() int {
	f = f.WithDefaults()
	return (f.Page - 1) * f.PageSize
}

type Metadata struct {
	CurrentPage  int `json:"current_page"`
	PageSize     int `json:"page_size"`
	TotalRecords int `json:"total_records"`
	LastPage     int `json:"last_page"`
}

func CalculateMetadata(total int, f Filters) Metadata {
	f = f.WithDefaults()
	if total == 0 {
		return Metadata{CurrentPage: f.Page, PageSize: f.PageSize}
	}
	return Metadata{
		CurrentPage:  f.Page,
		PageSize:     f.PageSize,
		TotalRecords: total,
		LastPage:     (total + f.PageSize - 1) / f.PageSize,
	}
}
