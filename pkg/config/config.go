package config

import "os"

type Config struct {
	Port                    string
	Env                     string
	BaseURL                 string
	FirebaseCredentialsPath string
	PostgresConnStr         string
	MongoURI                string
	JWTSecret               string
	ChapaSecretKey          string
	ChapaBaseURL            string
	SweepSchedule           string
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		BaseURL:                 getEnv("BASE_URL", "http://localhost:8080"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		ChapaSecretKey:          getEnv("CHAPA_SECRET_KEY", ""),
		ChapaBaseURL:            getEnv("CHAPA_BASE_URL", "https://api.chapa.co"),
		SweepSchedule:           getEnv("SWEEP_SCHEDULE", "*/5 * * * *"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
