package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Embedding.Backend == "" {
		cfg.Embedding.Backend = "remote"
	}
	if cfg.Embedding.Endpoint == "" {
		cfg.Embedding.Endpoint = "http://localhost:8091"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 768
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 64
	}
	if cfg.Embedding.TimeoutSeconds == 0 {
		cfg.Embedding.TimeoutSeconds = 30
	}
	if cfg.Cache.Size == 0 {
		cfg.Cache.Size = 100
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 600
	}
	if cfg.Recall.Backend == "" {
		cfg.Recall.Backend = "duckduckgo"
	}
	if cfg.Recall.TimeoutSeconds == 0 {
		cfg.Recall.TimeoutSeconds = 10
	}
	if cfg.Recall.RequestsPerSec == 0 {
		cfg.Recall.RequestsPerSec = 1
	}
	if cfg.Recall.SafeSearch == "" {
		cfg.Recall.SafeSearch = "moderate"
	}
	if cfg.Recall.Region == "" {
		cfg.Recall.Region = "wt-wt"
	}
	if cfg.Fetch.MaxConcurrent == 0 {
		cfg.Fetch.MaxConcurrent = 15
	}
	if cfg.Fetch.TimeoutSeconds == 0 {
		cfg.Fetch.TimeoutSeconds = 5
	}
	if cfg.Fetch.ConnectTimeoutSeconds == 0 {
		cfg.Fetch.ConnectTimeoutSeconds = 2
	}
	if cfg.Fetch.MaxBodyBytes == 0 {
		cfg.Fetch.MaxBodyBytes = 8 << 20
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 20
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 50
	}
	if cfg.Search.OverfetchMultiplier == 0 {
		cfg.Search.OverfetchMultiplier = 2
	}
}
