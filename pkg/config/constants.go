package config

// EnvPrefix is passed to envconfig; variables carry explicit names so the
// prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv = "FARMDIRECT_APP_ENV"
	EnvDBDSN  = "FARMDIRECT_DB_DSN"
	EnvDBHost = "FARMDIRECT_DB_HOST"
	EnvDBUser = "FARMDIRECT_DB_USER"
	EnvDBName = "FARMDIRECT_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
