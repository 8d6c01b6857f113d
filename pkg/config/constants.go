package config

const (
	EnvPrefix = "STOCKBAR"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "STOCKBAR_DB_DSN"
	EnvDBHost = "STOCKBAR_DB_HOST"
	EnvDBUser = "STOCKBAR_DB_USER"
	EnvDBName = "STOCKBAR_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
