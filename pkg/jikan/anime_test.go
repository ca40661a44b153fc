package jikan

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Sternrassler/animelist-etl/internal/testutil"
	"github.com/Sternrassler/animelist-etl/pkg/dataset"
)

func decodeRecord(t *testing.T, record map[string]any) Anime {
	t.Helper()
	raw, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	var a Anime
	if err := json.Unmarshal(raw, &a); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	return a
}

func TestFlatten_ProducesEveryColumn(t *testing.T) {
	a := decodeRecord(t, testutil.AnimeRecord(1, "Alpha"))
	row := a.Flatten()

	if len(row) != len(Columns) {
		t.Errorf("row has %d keys, Columns has %d", len(row), len(Columns))
	}
	for _, col := range Columns {
		if _, ok := row[col]; !ok {
			t.Errorf("row missing column %q", col)
		}
	}

	checks := map[string]any{
		"mal_id":                int64(1),
		"title":                 "Alpha",
		"episodes":              int64(12),
		"score":                 7.5,
		"season":                "winter",
		"year":                  int64(2020),
		"images.jpg.image_url":  "https://cdn.myanimelist.net/images/anime/1.jpg",
		"aired.prop.to.month":   int64(3),
		"broadcast.timezone":    "Asia/Tokyo",
		"trailer.youtube_id":    nil,
		"title_japanese":        nil,
		"aired.prop.from.year":  int64(2020),
		"images.webp.image_url": "https://cdn.myanimelist.net/images/anime/1.webp",
	}
	for col, want := range checks {
		if got := row[col]; got != want {
			t.Errorf("row[%q] = %#v, want %#v", col, got, want)
		}
	}

	genres, ok := row["genres"].([]any)
	if !ok || len(genres) != 2 {
		t.Errorf("genres = %#v, want list of 2", row["genres"])
	}
}

func TestFlatten_MissingNestedObjectsAreNull(t *testing.T) {
	record := testutil.AnimeRecord(2, "Beta")
	delete(record, "images")
	delete(record, "aired")
	record["trailer"] = nil
	delete(record, "score")
	delete(record, "season")
	delete(record, "genres")

	a := decodeRecord(t, record)
	row := a.Flatten()

	for _, col := range []string{
		"images.jpg.image_url", "images.webp.large_image_url",
		"aired.from", "aired.prop.from.day", "aired.string",
		"trailer.embed_url", "trailer.images.maximum_image_url",
		"score", "season", "genres",
	} {
		v, ok := row[col]
		if !ok {
			t.Errorf("column %q absent, want null", col)
			continue
		}
		if v != nil {
			t.Errorf("row[%q] = %#v, want nil", col, v)
		}
	}
}

func TestDecodeSeasonPage(t *testing.T) {
	body := testutil.SeasonPageBody(testutil.AnimeRecord(1, "Alpha"), testutil.AnimeRecord(2, "Beta"))

	page, err := DecodeSeasonPage([]byte(body))
	if err != nil {
		t.Fatalf("DecodeSeasonPage() error = %v", err)
	}
	if len(page.Data) != 2 {
		t.Fatalf("len(Data) = %d, want 2", len(page.Data))
	}
	if *page.Data[1].Title != "Beta" {
		t.Errorf("Data[1].Title = %q, want Beta", *page.Data[1].Title)
	}
	if page.Pagination.Items.Count != 2 {
		t.Errorf("Pagination.Items.Count = %d, want 2", page.Pagination.Items.Count)
	}
}

func TestDecodeSeasonPage_Errors(t *testing.T) {
	noTitle := testutil.AnimeRecord(3, "Gamma")
	delete(noTitle, "title")

	wrongType := testutil.AnimeRecord(4, "Delta")
	wrongType["episodes"] = "twelve"

	tests := []struct {
		name       string
		body       string
		wantSchema bool
		wantPath   string
	}{
		{name: "malformed json", body: `{"data": [`, wantSchema: false},
		{name: "missing data", body: `{"pagination": {}}`, wantSchema: true, wantPath: "data"},
		{name: "null data", body: `{"data": null}`, wantSchema: true, wantPath: "data"},
		{name: "non-object entry", body: `{"data": [42]}`, wantSchema: true, wantPath: "data[0]"},
		{name: "entry without title", body: testutil.SeasonPageBody(noTitle), wantSchema: true, wantPath: "title"},
		{name: "field of wrong type", body: testutil.SeasonPageBody(wrongType), wantSchema: true, wantPath: "data[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSeasonPage([]byte(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}

			var schemaErr *dataset.SchemaError
			isSchema := errors.As(err, &schemaErr)
			if isSchema != tt.wantSchema {
				t.Fatalf("schema error = %v, want %v (err: %v)", isSchema, tt.wantSchema, err)
			}
			if isSchema && schemaErr.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", schemaErr.Path, tt.wantPath)
			}

			if !tt.wantSchema {
				var netErr *NetworkError
				if !errors.As(err, &netErr) || netErr.ErrorClass != ErrorClassDecode {
					t.Errorf("error = %v, want decode NetworkError", err)
				}
			}
		})
	}
}

func TestDecodeSeasonPage_EmptyData(t *testing.T) {
	page, err := DecodeSeasonPage([]byte(testutil.SeasonPageBody()))
	if err != nil {
		t.Fatalf("DecodeSeasonPage() error = %v", err)
	}
	if len(page.Data) != 0 {
		t.Errorf("len(Data) = %d, want 0", len(page.Data))
	}
}
