package render

import "html/template"

// defaultPageCapacity is the number of item rows that fit on the first
// physical page of the A4 layout after the header and client block.
// Tuned against the template's header/footer/margins; injected via
// Config so tests can vary it.
const defaultPageCapacity = 8

// Page is one page bucket: a contiguous run of rendered row fragments
// assigned to one physical page. The last page additionally carries the
// subtotal/tax/grand-total fragments. Continuation pages render as
// separate tables with the identical column layout and a forced page
// break before them.
type Page struct {
	Rows         []template.HTML
	Totals       []template.HTML
	Continuation bool
}

// SplitPages distributes the rendered rows across page buckets of
// capacity item rows each. Row order is preserved end-to-end and the
// totals are anchored to the last bucket only, so they always appear
// once, always last, always attached to the final item row. Zero items
// yield a single page that still carries the subtotal/total rows.
func SplitPages(rows *RenderedRows, capacity int) []Page {
	if capacity <= 0 {
		capacity = defaultPageCapacity
	}

	var pages []Page
	items := rows.Items
	for len(items) > 0 {
		n := capacity
		if len(items) < n {
			n = len(items)
		}
		pages = append(pages, Page{
			Rows:         items[:n],
			Continuation: len(pages) > 0,
		})
		items = items[n:]
	}

	if len(pages) == 0 {
		// Degenerate zero-item document: one otherwise-empty page.
		pages = append(pages, Page{})
	}

	pages[len(pages)-1].Totals = rows.Totals
	return pages
}
