package domain

type Config struct {
	FQDN            string `yaml:"fqdn"`
	Issuer          string `yaml:"issuer"`
	SigningKey      string `yaml:"signingKey"`
	RPCURL          string `yaml:"rpcUrl"`
	ContractAddress string `yaml:"contractAddress"`
}
