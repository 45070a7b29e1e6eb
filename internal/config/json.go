package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] in the JSON file layout.
type StructuredJSONConfig struct {
	App struct {
		Pepper                string   `json:"pepper"`
		SessionSignKey        string   `json:"session_sign_key"`
		SessionIssuer         string   `json:"session_issuer"`
		SessionDuration       Duration `json:"session_duration"`
		BaseURL               string   `json:"base_url"`
		TOTPIssuer            string   `json:"totp_issuer"`
		PasswordBlacklistPath string   `json:"password_blacklist_path"`
		LoginLogPath          string   `json:"login_log_path"`
		Environment           string   `json:"environment"`
	} `json:"app,omitempty"`

	Admin struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"admin,omitempty"`

	Mail struct {
		APIKey   string   `json:"api_key"`
		Domain   string   `json:"domain"`
		Region   string   `json:"region"`
		FromName string   `json:"from_name"`
		Timeout  Duration `json:"timeout"`
	} `json:"mail,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`

		Redis struct {
			Address  string `json:"address"`
			Password string `json:"password"`
			DB       int    `json:"db"`
		} `json:"redis,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		GRPCAddress    string   `json:"grpc_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			Pepper:                jsonCfg.App.Pepper,
			SessionSignKey:        jsonCfg.App.SessionSignKey,
			SessionIssuer:         jsonCfg.App.SessionIssuer,
			SessionDuration:       time.Duration(jsonCfg.App.SessionDuration),
			BaseURL:               jsonCfg.App.BaseURL,
			TOTPIssuer:            jsonCfg.App.TOTPIssuer,
			PasswordBlacklistPath: jsonCfg.App.PasswordBlacklistPath,
			LoginLogPath:          jsonCfg.App.LoginLogPath,
			Environment:           jsonCfg.App.Environment,
		},
		Admin: Admin{
			Email:    jsonCfg.Admin.Email,
			Password: jsonCfg.Admin.Password,
		},
		Mail: Mail{
			APIKey:   jsonCfg.Mail.APIKey,
			Domain:   jsonCfg.Mail.Domain,
			Region:   jsonCfg.Mail.Region,
			FromName: jsonCfg.Mail.FromName,
			Timeout:  time.Duration(jsonCfg.Mail.Timeout),
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
			Redis: Redis{
				Address:  jsonCfg.Storage.Redis.Address,
				Password: jsonCfg.Storage.Redis.Password,
				DB:       jsonCfg.Storage.Redis.DB,
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			GRPCAddress:    jsonCfg.Server.GRPCAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
