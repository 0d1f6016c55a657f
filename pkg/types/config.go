// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"runtime"
	"time"
)

// ToolsConfig holds paths to the external conversion engines. Empty values
// resolve through $PATH.
type ToolsConfig struct {
	// Soffice is the LibreOffice binary (pdf-to-word, excel-to-pdf).
	Soffice string `json:"soffice" yaml:"soffice"`

	// Pdftoppm renders PDF pages to images (pdf-to-images, ocr-extract).
	Pdftoppm string `json:"pdftoppm" yaml:"pdftoppm"`

	// Pdftotext extracts embedded text (pdf-to-text, pdf-to-excel).
	Pdftotext string `json:"pdftotext" yaml:"pdftotext"`

	// Pdfinfo probes page counts and dimensions.
	Pdfinfo string `json:"pdfinfo" yaml:"pdfinfo"`

	// Pdfunite concatenates PDFs (merge).
	Pdfunite string `json:"pdfunite" yaml:"pdfunite"`

	// Pdfseparate bursts a PDF into single pages (split --each).
	Pdfseparate string `json:"pdfseparate" yaml:"pdfseparate"`

	// Qpdf extracts page ranges and performs lossless compression.
	Qpdf string `json:"qpdf" yaml:"qpdf"`

	// Ghostscript performs lossy PDF compression (gs).
	Ghostscript string `json:"ghostscript" yaml:"ghostscript"`

	// Tesseract is the OCR engine.
	Tesseract string `json:"tesseract" yaml:"tesseract"`

	// Magick assembles images into PDFs (ImageMagick).
	Magick string `json:"magick" yaml:"magick"`
}

// ConvertConfig holds conversion defaults shared by all operations.
type ConvertConfig struct {
	// DPI is the default raster resolution for page rendering (default 300).
	DPI int `json:"dpi" yaml:"dpi"`

	// CompressDPI is the raster resolution for lossy PDF compression
	// (default 150).
	CompressDPI int `json:"compress_dpi" yaml:"compress_dpi"`

	// Quality is the default JPEG quality for lossy PDF compression
	// (default 80).
	Quality int `json:"quality" yaml:"quality"`

	// MaxPages guards full-document page operations; documents over the
	// limit require an explicit page range (default 100).
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// MaxLossyPages disables the lossy compression pass above this page
	// count (default 500).
	MaxLossyPages int `json:"max_lossy_pages" yaml:"max_lossy_pages"`

	// OCRLanguage is the default tesseract language (default "eng").
	OCRLanguage string `json:"ocr_language" yaml:"ocr_language"`
}

// BatchConfig holds worker pool settings for batch execution.
type BatchConfig struct {
	// Workers is the worker pool size (default min(4, NumCPU)).
	Workers int `json:"workers" yaml:"workers"`

	// JobTimeout bounds a single job's execution (default 10m, 0 = none).
	JobTimeout time.Duration `json:"job_timeout" yaml:"job_timeout"`

	// StagingDir receives downloaded remote sources (default os.TempDir).
	StagingDir string `json:"staging_dir" yaml:"staging_dir"`
}

// HistoryConfig holds job history persistence settings.
type HistoryConfig struct {
	// Enabled turns history recording on (default true for batch surfaces).
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the SQLite database file
	// (default ~/.local/share/pdf-toolkit/history.db).
	Path string `json:"path" yaml:"path"`
}

// WatchConfig holds hot-folder settings.
type WatchConfig struct {
	// Dir is the directory to watch.
	Dir string `json:"dir" yaml:"dir"`

	// Op is the operation submitted for each settled file.
	Op OpKind `json:"op" yaml:"op"`

	// OutputDir receives artifacts (default Dir/converted). Keeping outputs
	// out of the watched directory stops them from being picked up again.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Debounce is the quiet period before a changed file is submitted
	// (default 2s).
	Debounce time.Duration `json:"debounce" yaml:"debounce"`

	// Extensions is the allow-list of source extensions (default .pdf plus
	// recognized image extensions).
	Extensions []string `json:"extensions" yaml:"extensions"`
}

// BusConfig holds NATS settings for distributed execution.
type BusConfig struct {
	// URL is the NATS server address (default nats://127.0.0.1:4222).
	URL string `json:"url" yaml:"url"`

	// SubjectJobs carries submitted JobDescriptors (default pdftoolkit.jobs).
	SubjectJobs string `json:"subject_jobs" yaml:"subject_jobs"`

	// SubjectResults carries JobResults (default pdftoolkit.results).
	SubjectResults string `json:"subject_results" yaml:"subject_results"`

	// Queue is the worker queue group name (default pdftoolkit-workers).
	Queue string `json:"queue" yaml:"queue"`
}

// LogConfig holds daemon logging settings (watch and worker commands).
type LogConfig struct {
	// Format selects the slog handler: "text" or "json" (default text).
	Format string `json:"format" yaml:"format"`

	// Level is the minimum level: debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level"`
}

// Config groups all settings for the pdf-toolkit CLI.
type Config struct {
	Tools   ToolsConfig   `json:"tools" yaml:"tools"`
	Convert ConvertConfig `json:"convert" yaml:"convert"`
	Batch   BatchConfig   `json:"batch" yaml:"batch"`
	History HistoryConfig `json:"history" yaml:"history"`
	Watch   WatchConfig   `json:"watch" yaml:"watch"`
	Bus     BusConfig     `json:"bus" yaml:"bus"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// DefaultConfig returns the baseline configuration before file, environment,
// and flag overrides are applied.
func DefaultConfig() Config {
	workers := runtime.NumCPU()
	if workers > 4 {
		workers = 4
	}
	return Config{
		Tools: ToolsConfig{
			Soffice:     "soffice",
			Pdftoppm:    "pdftoppm",
			Pdftotext:   "pdftotext",
			Pdfinfo:     "pdfinfo",
			Pdfunite:    "pdfunite",
			Pdfseparate: "pdfseparate",
			Qpdf:        "qpdf",
			Ghostscript: "gs",
			Tesseract:   "tesseract",
			Magick:      "magick",
		},
		Convert: ConvertConfig{
			DPI:           300,
			CompressDPI:   150,
			Quality:       80,
			MaxPages:      100,
			MaxLossyPages: 500,
			OCRLanguage:   "eng",
		},
		Batch: BatchConfig{
			Workers:    workers,
			JobTimeout: 10 * time.Minute,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Watch: WatchConfig{
			Op:       OpCompress,
			Debounce: 2 * time.Second,
		},
		Bus: BusConfig{
			URL:            "nats://127.0.0.1:4222",
			SubjectJobs:    "pdftoolkit.jobs",
			SubjectResults: "pdftoolkit.results",
			Queue:          "pdftoolkit-workers",
		},
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
	}
}
