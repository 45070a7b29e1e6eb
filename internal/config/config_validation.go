// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"
)

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	if cfg.App.Pepper == "" || cfg.App.SessionSignKey == "" || cfg.App.SessionDuration <= 0 {
		return ErrInvalidAppConfigs
	}

	if !strings.HasPrefix(cfg.App.BaseURL, "http://") && !strings.HasPrefix(cfg.App.BaseURL, "https://") {
		return fmt.Errorf("%w: base url must be absolute", ErrInvalidAppConfigs)
	}

	if (cfg.Admin.Email == "") != (cfg.Admin.Password == "") {
		return ErrInvalidAdminConfigs
	}

	if cfg.Mail.APIKey != "" && cfg.Mail.Domain == "" {
		return ErrInvalidMailConfigs
	}

	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout <= 0 {
		return ErrInvalidServerConfigs
	}

	return nil
}
