package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App   AppConfig
	Store StoreConfig
	JWT   JWTConfig
	HTTP  HTTPConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, production
	Name     string
	LogLevel string
}

// Drivers de almacenamiento soportados.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// StoreConfig dónde vive la base de datos. Por defecto un archivo SQLite bajo data/.
// Con Driver=postgres se usa DatabaseURL.
type StoreConfig struct {
	Driver      string
	Path        string
	DatabaseURL string
}

// JWTConfig configuración de los tokens de la puerta de acceso.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del adaptador HTTP local.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load lee la configuración desde variables de entorno y, si existen, .env o config.env.
// Las env vars tienen prioridad.
func Load() (*Config, error) {
	// godotenv no pisa variables ya definidas en el entorno.
	_ = godotenv.Load(".env")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // opcional

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "inventario-pos"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(getString(v, "STORE_DRIVER", DriverSQLite)),
			Path:        getString(v, "STORE_PATH", "data/inventario.db"),
			DatabaseURL: getString(v, "DATABASE_URL", ""),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 30),
			Issuer:     getString(v, "JWT_ISSUER", "inventario-pos"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "127.0.0.1"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
	}

	switch cfg.Store.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.Store.DatabaseURL == "" {
			return nil, fmt.Errorf("config: STORE_DRIVER=postgres requiere DATABASE_URL")
		}
	default:
		return nil, fmt.Errorf("config: STORE_DRIVER desconocido %q", cfg.Store.Driver)
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
