package config

const (
	EnvPrefix = "banca"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	FulfillmentOrder    = "order"
	FulfillmentWhatsApp = "whatsapp"

	EnvDBDSN  = "BANCA_DB_DSN"
	EnvDBHost = "BANCA_DB_HOST"
	EnvDBUser = "BANCA_DB_USER"
	EnvDBName = "BANCA_DB_NAME"

	EnvWhatsAppNumber = "BANCA_CHECKOUT_WHATSAPP_NUMBER"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
