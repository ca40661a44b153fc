// Package extract walks the seasonal catalog partition by partition and
// accumulates every entry into one dataset.
//
// Partitions are visited strictly in order: years ascending, seasons in the
// configured order, pages 1..N. Requests are sequential and paced by a
// minimum delay.
//
// Example usage:
//
//	client, _ := jikan.New(jikan.DefaultConfig("animelist-etl/1.0"))
//	ex, _ := extract.New(client, extract.DefaultConfig())
//	ds, err := ex.Extract(ctx)
//
// The returned dataset starts with a placeholder row (title "placeholder")
// that seeds the column shape; consumers must drop it. Any failed or
// unparsable page aborts the whole extraction, and nothing accumulated so
// far is returned.
package extract
