package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
server:
  http_port: 8080
  grpc_port: 9090
storage:
  type: memory
jwt:
  secret: ` + testSecret + `
`))
	require.NoError(t, err)

	assert.Equal(t, StrategySaga, cfg.Reservation.Strategy)
	assert.Equal(t, 3*time.Second, cfg.Reservation.StoreTimeout())
	assert.Equal(t, 3*time.Second, cfg.Reservation.CompensationTimeout())
	assert.Equal(t, 15*time.Minute, cfg.Reservation.StrandedGrace())
	assert.False(t, cfg.Reservation.ForbidSelfBooking)
	assert.Equal(t, "0 */5 * * * *", cfg.Scheduler.ReleaseStranded)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ":8080", cfg.GetHTTPAddress())
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{"MissingSecret", "server: {http_port: 8080}\nstorage: {type: memory}\n", "JWT secret is required"},
		{"BadPort", "server: {http_port: 0}\nstorage: {type: memory}\njwt: {secret: " + testSecret + "}\n", "invalid http port"},
		{"PostgresNeedsHost", "server: {http_port: 8080}\njwt: {secret: " + testSecret + "}\n", "database host is required"},
		{"UnknownStrategy", "server: {http_port: 8080}\nstorage: {type: memory}\njwt: {secret: " + testSecret + "}\nreservation: {strategy: optimistic}\n", "unknown reservation strategy"},
		{"SamePorts", "server: {http_port: 8080, grpc_port: 8080}\nstorage: {type: memory}\njwt: {secret: " + testSecret + "}\n", "ports must differ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  http_port: 8080
database:
  host: db.internal
  user: agrirent
  database: agrirent
jwt:
  secret: `+testSecret+`
`), 0o600))

	t.Setenv("DB_HOST", "localhost")
	t.Setenv("RESERVATION_STRATEGY", StrategyTransaction)
	t.Setenv("RESERVATION_FORBID_SELF_BOOKING", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, StrategyTransaction, cfg.Reservation.Strategy)
	assert.True(t, cfg.Reservation.ForbidSelfBooking)
	assert.Equal(t, "postgres://agrirent:@localhost:5432/agrirent?sslmode=disable", cfg.GetDatabaseConnectionString())
}

func TestGetSecurityLevel(t *testing.T) {
	assert.Equal(t, SecurityPublic, GetSecurityLevel(RouteSearchEquipment))
	assert.Equal(t, SecurityAccess, GetSecurityLevel(RouteReserve))
	assert.Equal(t, SecurityAdmin, GetSecurityLevel(RouteConsistencyReport))
	assert.Equal(t, SecurityPublic, GetSecurityLevel("/agrirent.v1.ReservationService/IsBookable"))
	assert.Equal(t, SecurityAccess, GetSecurityLevel("/agrirent.v1.Unknown/Method"))
}
