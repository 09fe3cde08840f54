package config

type AppConfig struct {
	Server ServerConfig
	Log    LogConfig
	Limits LimitsConfig
	Notify NotifyConfig
	Jobs   JobsConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	limitsCfg, err := LoadLimits()
	if err != nil {
		return AppConfig{}, err
	}
	notifyCfg, err := LoadNotify()
	if err != nil {
		return AppConfig{}, err
	}
	jobsCfg, err := LoadJobs()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server: serverCfg,
		Log:    logCfg,
		Limits: limitsCfg,
		Notify: notifyCfg,
		Jobs:   jobsCfg,
	}, nil
}
