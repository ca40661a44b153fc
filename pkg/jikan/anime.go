package jikan

import (
	"encoding/json"
	"fmt"

	"github.com/Sternrassler/animelist-etl/pkg/dataset"
)

// SeasonPage is one page of GET /v4/seasons/{year}/{season}.
type SeasonPage struct {
	Data       []Anime
	Pagination Pagination
}

// Pagination is the paging block returned next to the data list.
type Pagination struct {
	LastVisiblePage int  `json:"last_visible_page"`
	HasNextPage     bool `json:"has_next_page"`
	CurrentPage     int  `json:"current_page"`
	Items           struct {
		Count   int `json:"count"`
		Total   int `json:"total"`
		PerPage int `json:"per_page"`
	} `json:"items"`
}

// Anime is a single catalog entry. Every field is optional on the wire; a
// nil pointer flattens to a null cell.
type Anime struct {
	MalID         *int64     `json:"mal_id"`
	URL           *string    `json:"url"`
	Images        *ImageSet  `json:"images"`
	Trailer       *Trailer   `json:"trailer"`
	Approved      *bool      `json:"approved"`
	Titles        []any      `json:"titles"`
	Title         *string    `json:"title"`
	TitleEnglish  *string    `json:"title_english"`
	TitleJapanese *string    `json:"title_japanese"`
	TitleSynonyms []any      `json:"title_synonyms"`
	Type          *string    `json:"type"`
	Source        *string    `json:"source"`
	Episodes      *int64     `json:"episodes"`
	Status        *string    `json:"status"`
	Airing        *bool      `json:"airing"`
	Aired         *Aired     `json:"aired"`
	Duration      *string    `json:"duration"`
	Rating        *string    `json:"rating"`
	Score         *float64   `json:"score"`
	ScoredBy      *int64     `json:"scored_by"`
	Rank          *int64     `json:"rank"`
	Popularity    *int64     `json:"popularity"`
	Members       *int64     `json:"members"`
	Favorites     *int64     `json:"favorites"`
	Synopsis      *string    `json:"synopsis"`
	Background    *string    `json:"background"`
	Season        *string    `json:"season"`
	Year          *int64     `json:"year"`
	Broadcast     *Broadcast `json:"broadcast"`

	// List-valued fields keep their raw elements; consumers pick out the
	// "name" attribute and skip anything else.
	Producers      []any `json:"producers"`
	Licensors      []any `json:"licensors"`
	Studios        []any `json:"studios"`
	Genres         []any `json:"genres"`
	ExplicitGenres []any `json:"explicit_genres"`
	Themes         []any `json:"themes"`
	Demographics   []any `json:"demographics"`
}

// ImageSet holds the jpg and webp image variants.
type ImageSet struct {
	JPG  *ImageURLs `json:"jpg"`
	WebP *ImageURLs `json:"webp"`
}

// ImageURLs is one image format in three sizes.
type ImageURLs struct {
	ImageURL      *string `json:"image_url"`
	SmallImageURL *string `json:"small_image_url"`
	LargeImageURL *string `json:"large_image_url"`
}

// Trailer is the YouTube trailer block.
type Trailer struct {
	YoutubeID *string        `json:"youtube_id"`
	URL       *string        `json:"url"`
	EmbedURL  *string        `json:"embed_url"`
	Images    *TrailerImages `json:"images"`
}

// TrailerImages are the trailer thumbnails.
type TrailerImages struct {
	ImageURL        *string `json:"image_url"`
	SmallImageURL   *string `json:"small_image_url"`
	MediumImageURL  *string `json:"medium_image_url"`
	LargeImageURL   *string `json:"large_image_url"`
	MaximumImageURL *string `json:"maximum_image_url"`
}

// Aired is the airing date range and its day/month/year breakdown.
type Aired struct {
	From   *string    `json:"from"`
	To     *string    `json:"to"`
	Prop   *AiredProp `json:"prop"`
	String *string    `json:"string"`
}

// AiredProp splits both ends of the airing range.
type AiredProp struct {
	From *DateParts `json:"from"`
	To   *DateParts `json:"to"`
}

// DateParts is a partial calendar date.
type DateParts struct {
	Day   *int64 `json:"day"`
	Month *int64 `json:"month"`
	Year  *int64 `json:"year"`
}

// Broadcast describes the weekly broadcast slot.
type Broadcast struct {
	Day      *string `json:"day"`
	Time     *string `json:"time"`
	Timezone *string `json:"timezone"`
	String   *string `json:"string"`
}

// Columns lists every dotted column produced by Anime.Flatten, in order.
var Columns = []string{
	"mal_id", "url",
	"images.jpg.image_url", "images.jpg.small_image_url", "images.jpg.large_image_url",
	"images.webp.image_url", "images.webp.small_image_url", "images.webp.large_image_url",
	"trailer.youtube_id", "trailer.url", "trailer.embed_url",
	"trailer.images.image_url", "trailer.images.small_image_url", "trailer.images.medium_image_url",
	"trailer.images.large_image_url", "trailer.images.maximum_image_url",
	"approved", "titles", "title", "title_english", "title_japanese", "title_synonyms",
	"type", "source", "episodes", "status", "airing",
	"aired.from", "aired.to",
	"aired.prop.from.day", "aired.prop.from.month", "aired.prop.from.year",
	"aired.prop.to.day", "aired.prop.to.month", "aired.prop.to.year",
	"aired.string",
	"duration", "rating", "score", "scored_by", "rank", "popularity", "members", "favorites",
	"synopsis", "background", "season", "year",
	"broadcast.day", "broadcast.time", "broadcast.timezone", "broadcast.string",
	"producers", "licensors", "studios", "genres", "explicit_genres", "themes", "demographics",
}

// Validate checks the fields every catalog entry must carry.
func (a *Anime) Validate() error {
	if a.MalID == nil {
		return &dataset.SchemaError{Path: "mal_id", Reason: "catalog entry has no identifier"}
	}
	if a.Title == nil {
		return &dataset.SchemaError{Path: "title", Reason: "catalog entry has no title"}
	}
	return nil
}

// Flatten converts the entry into a row keyed by dotted paths. Nested
// objects are expanded; lists are kept as-is.
func (a *Anime) Flatten() dataset.Row {
	row := dataset.Row{
		"mal_id":         int64Value(a.MalID),
		"url":            stringValue(a.URL),
		"approved":       boolValue(a.Approved),
		"titles":         listValue(a.Titles),
		"title":          stringValue(a.Title),
		"title_english":  stringValue(a.TitleEnglish),
		"title_japanese": stringValue(a.TitleJapanese),
		"title_synonyms": listValue(a.TitleSynonyms),
		"type":           stringValue(a.Type),
		"source":         stringValue(a.Source),
		"episodes":       int64Value(a.Episodes),
		"status":         stringValue(a.Status),
		"airing":         boolValue(a.Airing),
		"duration":       stringValue(a.Duration),
		"rating":         stringValue(a.Rating),
		"score":          float64Value(a.Score),
		"scored_by":      int64Value(a.ScoredBy),
		"rank":           int64Value(a.Rank),
		"popularity":     int64Value(a.Popularity),
		"members":        int64Value(a.Members),
		"favorites":      int64Value(a.Favorites),
		"synopsis":       stringValue(a.Synopsis),
		"background":     stringValue(a.Background),
		"season":         stringValue(a.Season),
		"year":           int64Value(a.Year),

		"producers":       listValue(a.Producers),
		"licensors":       listValue(a.Licensors),
		"studios":         listValue(a.Studios),
		"genres":          listValue(a.Genres),
		"explicit_genres": listValue(a.ExplicitGenres),
		"themes":          listValue(a.Themes),
		"demographics":    listValue(a.Demographics),
	}

	images := a.Images
	if images == nil {
		images = &ImageSet{}
	}
	images.JPG.flatten(row, "images.jpg")
	images.WebP.flatten(row, "images.webp")

	trailer := a.Trailer
	if trailer == nil {
		trailer = &Trailer{}
	}
	row["trailer.youtube_id"] = stringValue(trailer.YoutubeID)
	row["trailer.url"] = stringValue(trailer.URL)
	row["trailer.embed_url"] = stringValue(trailer.EmbedURL)
	thumbs := trailer.Images
	if thumbs == nil {
		thumbs = &TrailerImages{}
	}
	row["trailer.images.image_url"] = stringValue(thumbs.ImageURL)
	row["trailer.images.small_image_url"] = stringValue(thumbs.SmallImageURL)
	row["trailer.images.medium_image_url"] = stringValue(thumbs.MediumImageURL)
	row["trailer.images.large_image_url"] = stringValue(thumbs.LargeImageURL)
	row["trailer.images.maximum_image_url"] = stringValue(thumbs.MaximumImageURL)

	aired := a.Aired
	if aired == nil {
		aired = &Aired{}
	}
	row["aired.from"] = stringValue(aired.From)
	row["aired.to"] = stringValue(aired.To)
	row["aired.string"] = stringValue(aired.String)
	prop := aired.Prop
	if prop == nil {
		prop = &AiredProp{}
	}
	prop.From.flatten(row, "aired.prop.from")
	prop.To.flatten(row, "aired.prop.to")

	broadcast := a.Broadcast
	if broadcast == nil {
		broadcast = &Broadcast{}
	}
	row["broadcast.day"] = stringValue(broadcast.Day)
	row["broadcast.time"] = stringValue(broadcast.Time)
	row["broadcast.timezone"] = stringValue(broadcast.Timezone)
	row["broadcast.string"] = stringValue(broadcast.String)

	return row
}

func (u *ImageURLs) flatten(row dataset.Row, prefix string) {
	if u == nil {
		u = &ImageURLs{}
	}
	row[prefix+".image_url"] = stringValue(u.ImageURL)
	row[prefix+".small_image_url"] = stringValue(u.SmallImageURL)
	row[prefix+".large_image_url"] = stringValue(u.LargeImageURL)
}

func (d *DateParts) flatten(row dataset.Row, prefix string) {
	if d == nil {
		d = &DateParts{}
	}
	row[prefix+".day"] = int64Value(d.Day)
	row[prefix+".month"] = int64Value(d.Month)
	row[prefix+".year"] = int64Value(d.Year)
}

// DecodeSeasonPage parses a season page body. An unparsable body is a
// NetworkError of class decode; a body without a data list, or with an
// entry that is not a valid catalog object, is a SchemaError.
func DecodeSeasonPage(body []byte) (*SeasonPage, error) {
	var envelope struct {
		Data       *[]json.RawMessage `json:"data"`
		Pagination Pagination         `json:"pagination"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &NetworkError{
			ErrorClass: ErrorClassDecode,
			Message:    "malformed season page body",
			Err:        err,
		}
	}
	if envelope.Data == nil {
		return nil, &dataset.SchemaError{Path: "data", Reason: "response carries no data list"}
	}

	page := &SeasonPage{
		Data:       make([]Anime, 0, len(*envelope.Data)),
		Pagination: envelope.Pagination,
	}
	for i, raw := range *envelope.Data {
		var entry Anime
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, &dataset.SchemaError{
				Path:   fmt.Sprintf("data[%d]", i),
				Reason: "entry does not match the catalog record shape",
				Err:    err,
			}
		}
		if err := entry.Validate(); err != nil {
			return nil, fmt.Errorf("data[%d]: %w", i, err)
		}
		page.Data = append(page.Data, entry)
	}
	return page, nil
}

func stringValue(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func int64Value(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func float64Value(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func boolValue(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}

func listValue(v []any) any {
	if v == nil {
		return nil
	}
	return v
}
