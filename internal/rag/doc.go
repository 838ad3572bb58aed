// Package rag implements retrieval-augmented question answering over the
// local vector store, with escalation to live web search when the indexed
// corpus lacks sufficient context.
//
// The pipeline is: Retriever (top-K vector search) → Synthesizer (similarity
// cutoff, one LLM call) → Trigger (marker-phrase heuristic) → web fallback.
// Engine ties the stages together and owns the fallback decision; Indexer
// builds the corpus the Retriever searches.
package rag
