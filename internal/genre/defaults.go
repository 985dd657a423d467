// Package genre defines the fixed genre vocabulary used by the browse view.
package genre

// BrowseGenres is the ordered list of genres the categorized browse view
// covers. The order is the display order; the categorizer preserves it.
var BrowseGenres = []string{
	"Fantasy",
	"Science Fiction",
	"Mystery",
	"Thriller",
	"Horror",
	"Romance",
	"Historical Fiction",
	"Biography",
	"Young Adult",
	"Fiction",
	"Nonfiction",
	"Self-Help",
	"Business",
}
