package config

const (
	defaultPageSize                  = "A4"
	defaultMargin                    = 36
	defaultContinuedHeaderAllowance  = 80
	defaultContainerPaddingAllowance = 40
	defaultColumnGap                 = 24
	defaultTimeoutSeconds            = 60
	defaultConcurrency               = 4
	defaultCacheDir                  = "~/.cache/cookbook/videos"
	defaultStorePath                 = "~/.cache/cookbook/artifacts.db"
	defaultPDFTTLHours               = 168
	defaultLogLevel                  = "info"
	defaultLogFormat                 = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Page: Page{
			Size:         defaultPageSize,
			MarginTop:    defaultMargin,
			MarginRight:  defaultMargin,
			MarginBottom: defaultMargin,
			MarginLeft:   defaultMargin,
		},
		Layout: Layout{
			ContinuedHeaderAllowance:  defaultContinuedHeaderAllowance,
			ContainerPaddingAllowance: defaultContainerPaddingAllowance,
			ColumnGap:                 defaultColumnGap,
		},
		Render: Render{
			HeroPage:       true,
			TimeoutSeconds: defaultTimeoutSeconds,
			Concurrency:    defaultConcurrency,
		},
		Cache: Cache{
			Dir:         defaultCacheDir,
			StorePath:   defaultStorePath,
			PDFTTLHours: defaultPDFTTLHours,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
