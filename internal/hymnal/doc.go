// Package hymnal models the Italian hymn catalog and answers the lookups
// selection needs.
//
// A Catalog is loaded once from the JSON produced by the upstream music
// library API; categories and tags are normalized to lowercase at load time.
// The Index built over it partitions the catalog into the sacramento pool and
// the remaining repertoire for a given liturgical context, applying the
// festive inclusion and exclusion rules in one place.
//
// Everything here is immutable after construction and safe to share across
// request handlers.
package hymnal
