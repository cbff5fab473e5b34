package models

// Represents credentials for the candle database. Should be loaded from AWS
// secrets or a local file.
type Secret struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
}
