package main

import (
	"github.com/user/basiskit/pkg/orchestrator"
	"github.com/user/basiskit/pkg/summarizer"
)

// containerInfo converts a run result for the summary.
func containerInfo(r orchestrator.RunResult) summarizer.ContainerInfo {
	c := summarizer.ContainerInfo{
		Path:          r.Path,
		OutputDir:     r.OutputDir,
		Wrapping:      string(r.Wrapping),
		FileBytes:     r.FileBytes,
		BasisBytes:    r.BasisBytes,
		Checksums:     string(r.Checksums),
		ChecksumsOK:   r.ChecksumsOK,
		TranscodeMs:   r.TranscodeDuration.Milliseconds(),
		RawFiles:      r.Export.RawFiles,
		Previews:      r.Export.Previews,
		ContactSheets: r.Export.ContactSheets,
	}
	if r.Err != nil {
		c.Error = r.Err.Error()
	}
	if r.Info.TotalImages > 0 {
		c.Format = r.Info.FormatName
		c.TextureType = r.Info.TextureTypeName
		c.Images = images(r)
	}

	index := make(map[string]int)
	for _, l := range r.Levels {
		name := l.Format.String()
		i, ok := index[name]
		if !ok {
			i = len(c.Outputs)
			index[name] = i
			c.Outputs = append(c.Outputs, summarizer.FormatOutput{Format: name})
		}
		c.Outputs[i].Levels++
		c.Outputs[i].Bytes += int64(len(l.Data))
	}
	for _, s := range r.Skipped {
		c.Skipped = append(c.Skipped, summarizer.SkippedInfo{Format: s.Format.String(), Reason: s.Reason.Error()})
	}
	return c
}

// images lists each image with the size of its top level.
func images(r orchestrator.RunResult) []summarizer.ImageInfo {
	out := make([]summarizer.ImageInfo, 0, r.Info.TotalImages)
	for i := uint32(0); i < r.Info.TotalImages; i++ {
		img := summarizer.ImageInfo{Index: i}
		if int(i) < len(r.Info.ImageMipmapLevels) {
			img.Levels = r.Info.ImageMipmapLevels[i]
		}
		for _, s := range r.Info.Slices {
			if s.ImageIndex == i && s.LevelIndex == 0 {
				img.Width, img.Height = s.OrigWidth, s.OrigHeight
				break
			}
		}
		out = append(out, img)
	}
	return out
}
