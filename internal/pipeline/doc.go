// Package pipeline implements the read and write halves of the content
// pipeline.
//
// Read lists a directory of a storage.Storage, filters it with extended glob
// patterns and lazily yields one parsed document per file. Write returns a
// function that persists one document per call: it names the document,
// ensures the parent directory exists, renders it and writes it.
//
// Both pipelines isolate per-item failures through an OnError hook. The
// default hook returns the error, which stops the pipeline at the first
// failure; a hook returning nil skips the failed item.
package pipeline
