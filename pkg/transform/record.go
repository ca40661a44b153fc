package transform

// CleanedRecord is one row of the relational snapshot. Episodes and Score
// are nil when the whole extraction carried no value to impute from.
type CleanedRecord struct {
	Title           string   `gorm:"column:title;type:text" json:"title"`
	Episodes        *float64 `gorm:"column:episodes" json:"episodes"`
	Score           *float64 `gorm:"column:score" json:"score"`
	GenreExtracted  string   `gorm:"column:genre_extracted;type:text" json:"genre_extracted"`
	StudioExtracted string   `gorm:"column:studio_extracted;type:text" json:"studio_extracted"`
	Season          string   `gorm:"column:season;type:text" json:"season"`
	Year            int64    `gorm:"column:year" json:"year"`
}

// CleanedColumns lists the CleanedRecord columns in table order.
var CleanedColumns = []string{
	"title", "episodes", "score", "genre_extracted", "studio_extracted", "season", "year",
}
