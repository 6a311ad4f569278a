// Package semantic scores how well one profile's stated preferences describe
// another profile, using text embeddings.
//
// The directional score d(a→b) compares a's preference free text (or, when
// empty, a's own description) with b's description. The pair score is the
// mean of both directions, with cosine similarity mapped from [-1, 1] onto
// [0, 1]. Missing text and any embedding failure yield the neutral score 0.5.
//
// Embeddings are held in an EmbeddingCache keyed by profile and text kind.
// Each entry remembers the content hash of the text it was computed from, so
// an edited description is recomputed on next use.
package semantic
