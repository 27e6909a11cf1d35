package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestCreateNewConfig_Defaults(t *testing.T) {
	for _, k := range []string{"SERVICE_PORT", "STORE", "STORE_TIMEOUT", "LOG_LEVEL", "BROKER_PARTITION", "BROKER_ADDRESS"} {
		t.Setenv(k, "")
	}

	conf := CreateNewConfig()
	assert.Equal(t, "9091", conf.ServicePort)
	assert.Equal(t, StoreMemory, conf.Store)
	assert.Equal(t, 3*time.Second, conf.StoreTimeout)
	assert.Equal(t, zerolog.InfoLevel, conf.LogLevel)
	assert.Equal(t, 0, conf.KafkaConfig.BrokerPartition)
	assert.Empty(t, conf.KafkaConfig.BrokerAddress)
}

func TestCreateNewConfig_FromEnv(t *testing.T) {
	t.Setenv("SERVICE_PORT", "8080")
	t.Setenv("STORE", StorePostgres)
	t.Setenv("STORE_TIMEOUT", "250ms")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BROKER_PARTITION", "2")
	t.Setenv("DB_HOST", "db")

	conf := CreateNewConfig()
	assert.Equal(t, "8080", conf.ServicePort)
	assert.Equal(t, StorePostgres, conf.Store)
	assert.Equal(t, 250*time.Millisecond, conf.StoreTimeout)
	assert.Equal(t, zerolog.DebugLevel, conf.LogLevel)
	assert.Equal(t, 2, conf.KafkaConfig.BrokerPartition)
	assert.Equal(t, "db", conf.PostgreSQLConfig.DBHost)
}
