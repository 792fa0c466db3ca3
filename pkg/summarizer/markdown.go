package summarizer

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders a Summary as a Markdown report.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate labels.
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		if fn != nil {
			f.translate = fn
		}
	}
}

// WithVersion adds the tool version to the report footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Transcode Summary"))
	fmt.Fprintf(&b, "- %s: %s\n", t("Generated"), s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if s.Engine.Backend != "" {
		decode := t("yes")
		if !s.Engine.CanDecode {
			decode = t("no")
		}
		fmt.Fprintf(&b, "- %s: %s (%s: %s)\n", t("Engine"), s.Engine.Backend, t("block decoding"), decode)
	}
	if len(s.Settings.Formats) > 0 {
		fmt.Fprintf(&b, "- %s: %s\n", t("Formats"), strings.Join(s.Settings.Formats, ", "))
	}
	if s.Settings.Checksums != "" {
		fmt.Fprintf(&b, "- %s: %s\n", t("Checksums"), s.Settings.Checksums)
	}
	if len(s.Settings.DecodeFlags) > 0 {
		fmt.Fprintf(&b, "- %s: %s\n", t("Decode flags"), strings.Join(s.Settings.DecodeFlags, ", "))
	}
	if n := len(s.Containers); n > 1 {
		fmt.Fprintf(&b, "- %s: %d (%s: %d)\n", t("Containers"), n, t("failed"), s.Failed())
	}

	for _, c := range s.Containers {
		f.formatContainer(&b, c)
	}

	if f.version != "" {
		fmt.Fprintf(&b, "\n---\n\n%s basiskit %s\n", t("Generated by"), f.version)
	}
	return b.String()
}

func (f *MarkdownFormatter) formatContainer(b *strings.Builder, c ContainerInfo) {
	t := f.translate

	fmt.Fprintf(b, "\n## %s\n\n", c.Path)
	if c.Error != "" {
		fmt.Fprintf(b, "**%s**: %s\n", t("Failed"), c.Error)
		if c.Format == "" {
			return
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(b, "| %s | %s |\n|---|---|\n", t("Property"), t("Value"))
	fmt.Fprintf(b, "| %s | %s |\n", t("Format"), c.Format)
	fmt.Fprintf(b, "| %s | %s |\n", t("Texture type"), c.TextureType)
	if c.Wrapping != "" && c.Wrapping != "none" {
		fmt.Fprintf(b, "| %s | %s (%s → %s) |\n", t("Compression"), c.Wrapping, formatBytes(c.FileBytes), formatBytes(c.BasisBytes))
	} else {
		fmt.Fprintf(b, "| %s | %s |\n", t("Size"), formatBytes(c.BasisBytes))
	}
	if c.Checksums != "" {
		status := t("OK")
		if c.Checksums == "none" {
			status = t("not checked")
		} else if !c.ChecksumsOK {
			status = t("Mismatch")
		}
		fmt.Fprintf(b, "| %s (%s) | %s |\n", t("Checksums"), c.Checksums, status)
	}
	if c.TranscodeMs > 0 || len(c.Outputs) > 0 {
		fmt.Fprintf(b, "| %s | %d ms |\n", t("Transcode time"), c.TranscodeMs)
	}
	if c.OutputDir != "" {
		fmt.Fprintf(b, "| %s | %s |\n", t("Output"), c.OutputDir)
	}

	if len(c.Images) > 0 {
		fmt.Fprintf(b, "\n### %s\n\n", t("Images"))
		fmt.Fprintf(b, "| # | %s | %s |\n|---|---|---|\n", t("Size"), t("Levels"))
		for _, img := range c.Images {
			fmt.Fprintf(b, "| %d | %dx%d | %d |\n", img.Index, img.Width, img.Height, img.Levels)
		}
	}

	if len(c.Outputs) > 0 {
		fmt.Fprintf(b, "\n### %s\n\n", t("Outputs"))
		fmt.Fprintf(b, "| %s | %s | %s |\n|---|---|---|\n", t("Format"), t("Levels"), t("Size"))
		for _, o := range c.Outputs {
			fmt.Fprintf(b, "| %s | %d | %s |\n", o.Format, o.Levels, formatBytes(o.Bytes))
		}
		fmt.Fprintf(b, "| **%s** | | **%s** |\n", t("Total"), formatBytes(c.TotalOutputBytes()))
	}

	if len(c.Skipped) > 0 {
		fmt.Fprintf(b, "\n### %s\n\n", t("Skipped formats"))
		for _, s := range c.Skipped {
			fmt.Fprintf(b, "- %s: %s\n", s.Format, s.Reason)
		}
	}

	if c.RawFiles+c.Previews+c.ContactSheets > 0 {
		fmt.Fprintf(b, "\n%s: %d %s, %d %s, %d %s\n", t("Written"),
			c.RawFiles, t("raw files"), c.Previews, t("previews"), c.ContactSheets, t("contact sheets"))
	}
}

// formatBytes formats a byte count with binary units.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp < 2; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMG"[exp])
}

var _ Formatter = (*MarkdownFormatter)(nil)
