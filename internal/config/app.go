package config

// AppConfig bundles every env-driven knob the server binary reads.
type AppConfig struct {
	Server ServerConfig
	Log    LogConfig
}

func LoadApp() (AppConfig, error) {
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{Server: serverCfg, Log: logCfg}, nil
}
