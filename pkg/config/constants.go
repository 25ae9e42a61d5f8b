package config

// EnvPrefix is the envconfig prefix; variable names already carry the
// SAHULAT_ prefix explicitly so the processing prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)
