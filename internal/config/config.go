// Package config loads mdp's YAML configuration, merging a file (if any)
// over DefaultConfig(), mirroring mdp.py's DEFAULT_CONFIG dict-merge
// pattern and morfx's internal/config env-default pattern.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ScrubberCategories toggles which block categories the Scrubber removes.
type ScrubberCategories struct {
	AuthorsNotes     bool `yaml:"authors_notes"`
	TranslatorsNotes bool `yaml:"translators_notes"`
	EditorsNotes     bool `yaml:"editors_notes"`
	Navigation       bool `yaml:"navigation"`
	PromosAdsSocial  bool `yaml:"promos_ads_social"`
	LinkFarms        bool `yaml:"link_farms"`
}

// ScrubberKeywords lists the keyword sets driving category detection.
type ScrubberKeywords struct {
	Navigation []string `yaml:"navigation"`
	Promos     []string `yaml:"promos"`
	Watermarks []string `yaml:"watermarks"`
}

// ScrubberWhitelist protects headings matching known chapter/structural text.
type ScrubberWhitelist struct {
	HeadingsKeep []string `yaml:"headings_keep"`
}

// ScrubberConfig mirrors spec.md §6's scrubber.* config keys.
type ScrubberConfig struct {
	Enabled            bool              `yaml:"enabled"`
	Categories         ScrubberCategories `yaml:"categories"`
	Keywords           ScrubberKeywords   `yaml:"keywords"`
	Whitelist          ScrubberWhitelist  `yaml:"whitelist"`
	EdgeBlockWindow    int               `yaml:"edge_block_window"`
	MinCharsToStrip    int               `yaml:"min_chars_to_strip"`
	LinkDensityThresh  float64           `yaml:"link_density_threshold"`
	MoveToAppendix     bool              `yaml:"move_to_appendix"`
}

// PrepassAdvancedConfig mirrors spec.md §6's prepass_advanced.* config keys.
type PrepassAdvancedConfig struct {
	Casing      bool `yaml:"casing"`
	Punctuation bool `yaml:"punctuation"`
	NumbersUnits bool `yaml:"numbers_units"`
	Footnotes   bool `yaml:"footnotes"`
}

// GrammarAssistConfig mirrors spec.md §6's grammar_assist.* config keys.
type GrammarAssistConfig struct {
	Enabled        bool     `yaml:"enabled"`
	APIBase        string   `yaml:"api_base"`
	Language       string   `yaml:"language"`
	SafeCategories []string `yaml:"safe_categories"`
}

// DetectorConfig mirrors spec.md §6's detector.* config keys.
type DetectorConfig struct {
	Enabled          bool     `yaml:"enabled"`
	APIBase          string   `yaml:"api_base"`
	Model            string   `yaml:"model"`
	TimeoutS         int      `yaml:"timeout_s"`
	Retries          int      `yaml:"retries"`
	Temperature      float64  `yaml:"temperature"`
	TopP             float64  `yaml:"top_p"`
	MaxContextTokens int      `yaml:"max_context_tokens"`
	MaxOutputChars   int      `yaml:"max_output_chars"`
	MaxChunkSize     int      `yaml:"max_chunk_size"`
	OverlapSize      int      `yaml:"overlap_size"`
	JSONMaxItems     int      `yaml:"json_max_items"`
	MaxReasonChars   int      `yaml:"max_reason_chars"`
	AllowCategories  []string `yaml:"allow_categories"`
	BlockCategories  []string `yaml:"block_categories"`
	Locale           string   `yaml:"locale"`
}

// ApplyConfig mirrors spec.md §6's apply.* config keys.
type ApplyConfig struct {
	MaxFileGrowthRatio float64 `yaml:"max_file_growth_ratio"`
	RejectDir          string  `yaml:"reject_dir"`
}

// FixerConfig mirrors spec.md §6's fixer.* config keys.
type FixerConfig struct {
	Enabled             bool    `yaml:"enabled"`
	APIBase             string  `yaml:"api_base"`
	Model               string  `yaml:"model"`
	MaxOutputTokens     int     `yaml:"max_output_tokens"`
	Seed                int     `yaml:"seed"`
	NodeMaxGrowthRatio  float64 `yaml:"node_max_growth_ratio"`
	FileMaxGrowthRatio  float64 `yaml:"file_max_growth_ratio"`
	ForbidMarkdownTokens bool   `yaml:"forbid_markdown_tokens"`
	Locale              string  `yaml:"locale"`
}

// Config is mdp's complete configuration tree, loaded from YAML and
// overridable by CLI flags.
type Config struct {
	UnicodeForm        string                `yaml:"unicode_form"`
	NormalizePunctuation bool                `yaml:"normalize_punctuation"`
	QuotesPolicy       string                `yaml:"quotes_policy"`
	DashesPolicy       string                `yaml:"dashes_policy"`
	NBSPHandling       string                `yaml:"nbsp_handling"`
	PrepassAdvanced    PrepassAdvancedConfig `yaml:"prepass_advanced"`
	Scrubber           ScrubberConfig        `yaml:"scrubber"`
	GrammarAssist      GrammarAssistConfig   `yaml:"grammar_assist"`
	Detector           DetectorConfig        `yaml:"detector"`
	Apply              ApplyConfig           `yaml:"apply"`
	Fixer              FixerConfig           `yaml:"fixer"`
	Acronyms           []string              `yaml:"acronyms"`
	RunsBase           string                `yaml:"runs_base"`
}

// DefaultConfig returns mdp's baked-in defaults, mirroring mdp.py's
// DEFAULT_CONFIG dict.
func DefaultConfig() *Config {
	return &Config{
		UnicodeForm:          "NFC",
		NormalizePunctuation: true,
		QuotesPolicy:         "straight",
		DashesPolicy:         "em",
		NBSPHandling:         "space",
		PrepassAdvanced: PrepassAdvancedConfig{
			Casing:       true,
			Punctuation:  true,
			NumbersUnits: true,
			Footnotes:    true,
		},
		Scrubber: ScrubberConfig{
			Enabled: true,
			Categories: ScrubberCategories{
				AuthorsNotes:     true,
				TranslatorsNotes: true,
				EditorsNotes:     true,
				Navigation:       true,
				PromosAdsSocial:  true,
				LinkFarms:        true,
			},
			EdgeBlockWindow:   6,
			MinCharsToStrip:   0,
			LinkDensityThresh: 0.50,
			MoveToAppendix:    false,
		},
		GrammarAssist: GrammarAssistConfig{
			Enabled:        false,
			APIBase:        "http://localhost:8081",
			Language:       "en-US",
			SafeCategories: []string{"TYPOS", "PUNCTUATION", "CASING", "SPACING", "SIMPLE_AGREEMENT"},
		},
		Detector: DetectorConfig{
			Enabled:          true,
			APIBase:          "http://127.0.0.1:1234/v1",
			Model:            "qwen-1_8b-instruct",
			TimeoutS:         8,
			Retries:          1,
			Temperature:      0.2,
			TopP:             0.9,
			MaxContextTokens: 1024,
			MaxOutputChars:   2000,
			MaxChunkSize:     600,
			OverlapSize:      50,
			JSONMaxItems:     16,
			MaxReasonChars:   40,
			Locale:           "en-US",
		},
		Apply: ApplyConfig{
			MaxFileGrowthRatio: 0.01,
			RejectDir:          "",
		},
		Fixer: FixerConfig{
			Enabled:              false,
			APIBase:              "https://api.openai.com/v1",
			Model:                "gpt-4o-mini",
			MaxOutputTokens:      4000,
			Seed:                 0,
			NodeMaxGrowthRatio:   0.20,
			FileMaxGrowthRatio:   0.05,
			ForbidMarkdownTokens: true,
			Locale:               "en-US",
		},
		RunsBase: ".mdp-runs",
	}
}

// LoadFile reads .env (if present) then overlays YAML config from path onto
// DefaultConfig(). A missing path is not an error: the defaults stand alone.
func LoadFile(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// AcronymSet builds a lookup set from Acronyms for prepass casing and
// tiebreak hazard detection to share.
func (c *Config) AcronymSet() map[string]bool {
	set := make(map[string]bool, len(c.Acronyms))
	for _, a := range c.Acronyms {
		set[a] = true
	}
	return set
}
