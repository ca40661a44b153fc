package transform

// DropList names the accumulated columns that are not carried downstream:
// identifiers, image and trailer URLs, airing and broadcast breakdowns and
// long-text or categorical list fields.
var DropList = []string{
	"mal_id", "url", "approved", "titles", "title_synonyms", "status", "airing", "rating", "scored_by",
	"rank", "popularity", "favorites", "synopsis", "background", "producers", "licensors",
	"explicit_genres", "themes", "demographics", "images.jpg.image_url", "images.jpg.small_image_url",
	"images.jpg.large_image_url", "images.webp.image_url", "images.webp.small_image_url",
	"images.webp.large_image_url", "trailer.youtube_id", "trailer.url", "trailer.embed_url",
	"trailer.images.image_url", "trailer.images.small_image_url", "trailer.images.medium_image_url",
	"trailer.images.large_image_url", "trailer.images.maximum_image_url", "aired.from", "aired.to",
	"aired.prop.from.day", "aired.prop.from.month", "aired.prop.from.year", "aired.string", "aired.prop.to.day",
	"aired.prop.to.month", "aired.prop.to.year", "broadcast.day", "broadcast.time", "broadcast.timezone",
	"broadcast.string",
}

// ImputedColumns are filled with their own median.
var ImputedColumns = []string{"episodes", "score"}

// ListField maps a list-valued column to the derived string column holding
// the joined element names.
type ListField struct {
	Source string
	Target string
}

// ListFields are flattened into strings and then dropped.
var ListFields = []ListField{
	{Source: "genres", Target: "genre_extracted"},
	{Source: "studios", Target: "studio_extracted"},
}

// NameSeparator joins extracted names.
const NameSeparator = ", "
