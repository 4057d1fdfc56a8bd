package core

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	SortDate        SortKey = "date"
	SortAmount      SortKey = "amount"
	SortType        SortKey = "type"
	SortCategory    SortKey = "category"
	SortDescription SortKey = "description"

	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

// DefaultPageSize matches the dashboard's initial page size.
const DefaultPageSize = 8

type (
	SortKey string
	SortDir string

	// Summary holds income/expense totals over the filtered (not paginated)
	// set. Balance = TotalIncome - TotalExpense.
	Summary struct {
		TotalIncome  decimal.Decimal `json:"total_income"`
		TotalExpense decimal.Decimal `json:"total_expense"`
		Balance      decimal.Decimal `json:"balance"`
	}

	// SeriesPoint is one date bucket of the income-vs-expense time series.
	SeriesPoint struct {
		Date    string          `json:"date"`
		Income  decimal.Decimal `json:"income"`
		Expense decimal.Decimal `json:"expense"`
	}
)

// IsValid reports whether the key is a sortable field.
func (k SortKey) IsValid() bool {
	switch k {
	case SortDate, SortAmount, SortType, SortCategory, SortDescription:
		return true
	}
	return false
}

// Filter returns the transactions matching the query, preserving input
// order. The query is trimmed and lower-cased; a transaction matches when
// the query is a substring of its description, category, type or date.
// An empty or whitespace-only query matches everything.
func Filter(txs []Transaction, query string) []Transaction {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return txs
	}
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if strings.Contains(strings.ToLower(t.Description), q) ||
			strings.Contains(strings.ToLower(t.Category), q) ||
			strings.Contains(strings.ToLower(string(t.Type)), q) ||
			strings.Contains(strings.ToLower(t.Date), q) {
			out = append(out, t)
		}
	}
	return out
}

// SortBy returns a copy of the transactions ordered by the given key and
// direction. The sort is stable: equal keys keep their prior relative order.
// String fields compare lexicographically on the raw values.
func SortBy(txs []Transaction, key SortKey, dir SortDir) []Transaction {
	out := make([]Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		var less bool
		switch key {
		case SortAmount:
			less = out[i].Amount.LessThan(out[j].Amount)
		case SortType:
			less = out[i].Type < out[j].Type
		case SortCategory:
			less = out[i].Category < out[j].Category
		case SortDescription:
			less = out[i].Description < out[j].Description
		default:
			less = out[i].Date < out[j].Date
		}
		if dir == Desc {
			return !less && !equalByKey(out[i], out[j], key)
		}
		return less
	})
	return out
}

func equalByKey(a, b Transaction, key SortKey) bool {
	switch key {
	case SortAmount:
		return a.Amount.Equal(b.Amount)
	case SortType:
		return a.Type == b.Type
	case SortCategory:
		return a.Category == b.Category
	case SortDescription:
		return a.Description == b.Description
	default:
		return a.Date == b.Date
	}
}

// Pages returns the page count for n items: max(1, ceil(n/pageSize)).
func Pages(n, pageSize int) int {
	if pageSize < 1 {
		return 1
	}
	pages := (n + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate returns the 1-indexed page's slice. A page beyond the range
// yields an empty slice; callers that want the last valid page clamp first
// (View does).
func Paginate(txs []Transaction, page, pageSize int) []Transaction {
	if page < 1 || pageSize < 1 {
		return nil
	}
	start := (page - 1) * pageSize
	if start >= len(txs) {
		return nil
	}
	end := start + pageSize
	if end > len(txs) {
		end = len(txs)
	}
	return txs[start:end]
}

// Summarize sums amounts partitioned by type over the given set.
func Summarize(txs []Transaction) Summary {
	var s Summary
	for _, t := range txs {
		switch t.Type {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case Expense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	return s
}

// SeriesByDate groups the given set by the raw date string, summing amounts
// per type per bucket, ordered by ascending date string.
func SeriesByDate(txs []Transaction) []SeriesPoint {
	byDate := make(map[string]*SeriesPoint)
	for _, t := range txs {
		p, ok := byDate[t.Date]
		if !ok {
			p = &SeriesPoint{Date: t.Date}
			byDate[t.Date] = p
		}
		switch t.Type {
		case Income:
			p.Income = p.Income.Add(t.Amount)
		case Expense:
			p.Expense = p.Expense.Add(t.Amount)
		}
	}
	out := make([]SeriesPoint, 0, len(byDate))
	for _, p := range byDate {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// View holds the dashboard's derivation parameters: search query, sort key
// and direction, and pagination state.
type View struct {
	Query    string
	Sort     SortKey
	Dir      SortDir
	Page     int
	PageSize int
}

// NewView returns the dashboard's initial state: sorted by date descending,
// first page, default page size.
func NewView() View {
	return View{
		Sort:     SortDate,
		Dir:      Desc,
		Page:     1,
		PageSize: DefaultPageSize,
	}
}

// SetQuery replaces the search query and resets to the first page.
func (v *View) SetQuery(q string) {
	v.Query = q
	v.Page = 1
}

// SetSort selects a sort column and resets to the first page. Re-selecting
// the active key toggles the direction; a new key resets to ascending.
func (v *View) SetSort(key SortKey) {
	v.Page = 1
	if key == v.Sort {
		if v.Dir == Asc {
			v.Dir = Desc
		} else {
			v.Dir = Asc
		}
		return
	}
	v.Sort = key
	v.Dir = Asc
}

// SetPageSize replaces the page size and resets to the first page.
func (v *View) SetPageSize(size int) {
	if size < 1 {
		size = DefaultPageSize
	}
	v.PageSize = size
	v.Page = 1
}

// Result is a fully derived dashboard projection.
type Result struct {
	Items   []Transaction `json:"items"`
	Total   int           `json:"total"` // filtered count, before pagination
	Page    int           `json:"page"`
	Pages   int           `json:"pages"`
	Summary Summary       `json:"summary"`
	Series  []SeriesPoint `json:"series"`
}

// Apply runs the Filter → Sort → Paginate pipeline over the collection and
// derives the summary and time series from the filtered (not paginated)
// set. The current page is clamped into [1, pages], so a shrinking result
// set lands on the last valid page.
func (v *View) Apply(txs []Transaction) Result {
	filtered := Filter(txs, v.Query)
	sorted := SortBy(filtered, v.Sort, v.Dir)

	pages := Pages(len(sorted), v.PageSize)
	if v.Page > pages {
		v.Page = pages
	}
	if v.Page < 1 {
		v.Page = 1
	}

	return Result{
		Items:   Paginate(sorted, v.Page, v.PageSize),
		Total:   len(sorted),
		Page:    v.Page,
		Pages:   pages,
		Summary: Summarize(filtered),
		Series:  SeriesByDate(filtered),
	}
}
