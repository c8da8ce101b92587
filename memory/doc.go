// Package memory extracts, classifies, deduplicates and scores long-term
// memories from free-text chat messages.
//
// Memories are namespaced by (user, character) scope. The consolidation
// pipeline for one message is classify -> embed -> similarity search ->
// merge-or-insert: a near-duplicate (cosine similarity >= 0.9 within the
// scope) is merged into rather than inserted next to, so every scope holds
// at most one record per semantic fact.
//
// Architecture:
//   - Classifier: text -> category + importance (keyword default, LLM
//     strategy substitutable)
//   - Embedder: text -> vector (mock for local/testing, ONNX behind the
//     `onnx` build tag, API embedder in production)
//   - Store: vector storage backend (chromem embedded for local,
//     pgvector for production)
//   - Consolidator: orchestrates the pipeline, owns retry and dedup
package memory
