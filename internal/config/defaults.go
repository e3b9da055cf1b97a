package config

const (
	defaultDataDir          = "~/.local/share/innario"
	defaultLogDir           = "~/.local/share/innario/logs"
	defaultAPIBind          = "127.0.0.1:8000"
	defaultCatalogPath      = "~/.local/share/innario/italian_hymns_full.json"
	defaultCatalogLanguage  = "ita"
	defaultCatalogBaseURL   = "https://www.churchofjesuschrist.org/media/music/api"
	defaultFetchTimeout     = 30
	defaultTokenTTLMinutes  = 60
	defaultBcryptCost       = 12
	defaultLookbackWeeks    = 5
	defaultRelaxedWeeks     = 3
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Catalog: Catalog{
			Path:         defaultCatalogPath,
			Language:     defaultCatalogLanguage,
			BaseURL:      defaultCatalogBaseURL,
			FetchTimeout: defaultFetchTimeout,
		},
		Auth: Auth{
			TokenTTLMinutes: defaultTokenTTLMinutes,
			BcryptCost:      defaultBcryptCost,
		},
		Selection: Selection{
			LookbackWeeks: defaultLookbackWeeks,
			RelaxedWeeks:  defaultRelaxedWeeks,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
