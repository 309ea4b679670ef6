// config.go
package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	MongoURI    string
	MongoDBName string
	AuthURL     string
	RabbitURL   string
	Port        string
}

func Load() *Config {
	// Local development reads a .env file; in containers the vars are set
	// directly and the file is simply absent.
	_ = godotenv.Load()

	return &Config{
		Env:         getEnv("APP_ENV", "dev"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://host.docker.internal:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "bottle_order_db"),
		AuthURL:     getEnv("AUTH_URL", "http://host.docker.internal:3000"),
		RabbitURL:   getEnv("RABBIT_URL", "amqp://host.docker.internal"),
		Port:        getEnv("PORT", "8080"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
