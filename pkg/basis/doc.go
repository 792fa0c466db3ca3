// Package basis reads Basis Universal (.basis) supercompressed texture
// containers and transcodes their levels to GPU block formats.
//
// A Transcoder wraps one ports.Engine. Its metadata methods can be called
// concurrently at any time. Transcoding happens inside a pass:
//
//	t := basis.New(engine)
//	defer t.Close()
//
//	err := t.Transcode(data, func(p *basis.Prepared) error {
//		blocks, err := p.TranscodeImageLevel(0, 0, basis.TargetBC7RGBA)
//		if err != nil {
//			return err
//		}
//		return upload(blocks)
//	})
//
// Only one pass may be active per Transcoder. A second Prepare fails with
// ErrBusy instead of waiting; use one Transcoder per goroutine for parallel
// work.
//
// Not every target is reachable from every source: RGBA4444 is never
// produced, and UASTC sources cannot reach ATC, FXT1 or PVRTC2. Such
// requests fail with a *FormatError before the engine is called.
package basis
