package config

import (
	"os"
)

type DynamoConfig struct {
	TableName  string
	TtlMinutes int
}

func (c *DynamoConfig) Enabled() bool {
	return c.TableName != ""
}

// GetDynamoConfig never requires the table; exchange recording is off when
// DYNAMO_TABLE_NAME is empty.
func GetDynamoConfig() (*DynamoConfig, error) {
	ttl, err := getIntEnv("DYNAMO_TTL_MINUTES", 7*24*60)
	if err != nil {
		return nil, err
	}

	return &DynamoConfig{
		TableName:  os.Getenv("DYNAMO_TABLE_NAME"),
		TtlMinutes: ttl,
	}, nil
}
