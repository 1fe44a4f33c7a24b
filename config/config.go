package config

type Config struct {
	Server   Server   `yaml:"server" validate:"required"`
	Database Database `yaml:"storage" validate:"required"`
	Media    Media    `yaml:"media"`
	Sessions Sessions `yaml:"sessions"`
}

type Server struct {
	Port       string `yaml:"port" default:":8080" comment:"Server Port" validate:"required"`
	Env        string `yaml:"env" default:"production" comment:"Server Environment, dev allows running without a database" validate:"required"`
	CorsOrigin string `yaml:"cors_origin" default:"*" comment:"Value of Access-Control-Allow-Origin"`
}

type Database struct {
	DatabaseURL string `yaml:"database_url" comment:"Postgres URL, may be empty in dev to use the in-memory store"`
	RedisURL    string `yaml:"redis_url" comment:"Redis URL used for sessions, may be empty in dev"`
}

type Media struct {
	Bucket  string `yaml:"bucket" comment:"Google Cloud Storage bucket for uploaded photos, uploads are disabled if empty"`
	BaseURL string `yaml:"base_url" comment:"Public URL prefix for uploaded photos, defaults to the bucket's public URL"`
}

type Sessions struct {
	TTLHours int `yaml:"ttl_hours" default:"720" comment:"Session lifetime in hours" validate:"gte=0"`
}
