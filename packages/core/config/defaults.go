package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:     "", // no limit
		Proxy:       "",
		ValidateSSL: BoolPtr(true),
		UserAgent:   "",
		NoColor:     BoolPtr(false),
		AssumeYes:   BoolPtr(false),
		HistoryDB:   "",
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	return c.Timeout == "" &&
		c.Proxy == "" &&
		c.GetValidateSSL() &&
		c.UserAgent == "" &&
		!c.GetNoColor() &&
		!c.GetAssumeYes() &&
		c.HistoryDB == ""
}
