// Package source provides hashstore.Source implementations over files,
// blob stores and in-memory data.
//
// Every source detects zstd, gzip and lz4 framing from the leading magic
// bytes and decompresses transparently, and may be throttled by the IO
// budget of a resource.Controller.
//
//	src := source.File("hashes.txt.zst", source.WithController(rc))
//	info, err := store.Load(ctx, src)
package source
