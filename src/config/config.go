package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

// IntentTTL bounds how long a payment intent waits for gateway
// confirmation before the cache drops it.
func IntentTTL() time.Duration {
	ttl := os.Getenv("INTENT_TTL_SECONDS")
	secs, err := strconv.Atoi(ttl)
	if err != nil || secs <= 0 {
		return 1 * time.Hour
	}
	return time.Duration(secs) * time.Second
}

// GatewayTimeout bounds every outbound gateway call. A timeout is a
// transient failure, never evidence of non-payment.
func GatewayTimeout() time.Duration {
	t := os.Getenv("GATEWAY_TIMEOUT_SECONDS")
	secs, err := strconv.Atoi(t)
	if err != nil || secs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(secs) * time.Second
}

func Currency() string {
	cur := os.Getenv("PAYMENT_CURRENCY")
	if cur == "" {
		return "usd"
	}
	return cur
}

// QRSecret is the AES key used to seal ticket QR payloads, hex-encoded in
// the environment.
func QRSecret() ([]byte, error) {
	keyEnv := os.Getenv("API_QRC_SECRET")
	key, err := hex.DecodeString(keyEnv)
	if err != nil {
		return nil, err
	}
	return key, nil
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"
