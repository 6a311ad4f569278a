// Package warmup precomputes profile embeddings in bulk so that scoring a
// population does not pay for one embedder round trip per text.
//
// Texts already cached in memory or in the persistent repository are
// skipped, so a warmup run is idempotent and can simply be re-run after an
// interruption. Batches are embedded with retry and exponential backoff, and
// progress is reported to an io.Writer.
package warmup
