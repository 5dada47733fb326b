package config

import "github.com/caarlos0/env/v11"

// ServerConfig holds the server's tunables: starting chips, blinds,
// rebuys, seats, timeouts, chat length, rate limits, archive retention and
// collusion scoring. The minimum buy-in multiple is not configured here.
type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	AdminAPIKey string `env:"ADMIN_API_KEY"`

	StartingChips  int64 `env:"STARTING_CHIPS" envDefault:"1000"`
	DefaultSmall   int64 `env:"DEFAULT_SMALL_BLIND" envDefault:"10"`
	DefaultBig     int64 `env:"DEFAULT_BIG_BLIND" envDefault:"20"`
	MaxRebuys      int   `env:"MAX_REBUYS" envDefault:"3"`
	RebuyThreshold int64 `env:"REBUY_THRESHOLD" envDefault:"100"`

	TableMinSeats int `env:"TABLE_MIN_SEATS" envDefault:"2"`
	TableMaxSeats int `env:"TABLE_MAX_SEATS" envDefault:"6"`

	ActionTimeoutMS     int `env:"ACTION_TIMEOUT_MS" envDefault:"15000"`
	ShowdownCooldownMS  int `env:"SHOWDOWN_COOLDOWN_MS" envDefault:"3000"`
	SitOutAutoEvictHand int `env:"SIT_OUT_AUTO_EVICT_HANDS" envDefault:"10"`

	MaxChatBytes int `env:"MAX_CHAT_BYTES" envDefault:"280"`

	RateLimitAuthedPerMin   int `env:"RATE_LIMIT_AUTHED_PER_MIN" envDefault:"60"`
	RateLimitChatPerMin     int `env:"RATE_LIMIT_CHAT_PER_MIN" envDefault:"10"`
	RateLimitRegisterPerMin int `env:"RATE_LIMIT_REGISTER_PER_MIN" envDefault:"5"`
	RateLimitPublicPerMin   int `env:"RATE_LIMIT_PUBLIC_PER_MIN" envDefault:"30"`

	HandArchiveRetention int `env:"HAND_ARCHIVE_RETENTION" envDefault:"50"`

	CollusionMinHands    int     `env:"COLLUSION_MIN_HANDS" envDefault:"5"`
	CollusionFlagScore   float64 `env:"COLLUSION_FLAG_SCORE" envDefault:"0.75"`
	CollusionConfidenceN float64 `env:"COLLUSION_CONFIDENCE_N" envDefault:"20"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
