// Package enrich attaches page metadata to feed listings.
//
// Each listing URL is fetched once and its <meta> tags are read for a social
// preview image, a Twitter handle, a description and keywords. Lookups run
// concurrently, one per listing, and never fail the build: any fetch or parse
// problem yields a Result with OutcomeNoMetadata and the listing keeps only
// its table fields.
package enrich
