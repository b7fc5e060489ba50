package config

const (
	defaultOPALTable      = "data/opal_opac.dat"
	defaultLA08Table      = "data/la08_opac.dat"
	defaultLA08Sets       = "data/la08_sets.dat"
	defaultOutputPath     = "largerT_opacity.dat"
	defaultPlotPath       = "opacity_comparison.png"
	defaultX              = 0.7
	defaultZ              = 0.02
	defaultSpliceT        = 3.8
	defaultMinSpliceT     = 3.6
	defaultMaxSpliceT     = 3.9
	defaultSentinel       = 9.999
	defaultProgressEvery  = 5
	defaultOracleBinary   = "./opal"
	defaultOracleDir      = "."
	defaultBuildCommand   = "make"
	defaultOracleTimeout  = 30
	defaultCachePath      = "~/.cache/opacsplice/oracle.db"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultConfigLocation = "~/.config/opacsplice/config.toml"
	projectConfigName     = "opacsplice.toml"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Inputs: Inputs{
			OPALTable: defaultOPALTable,
			LA08Table: defaultLA08Table,
			LA08Sets:  defaultLA08Sets,
		},
		Output: Output{
			Path:     defaultOutputPath,
			PlotPath: defaultPlotPath,
		},
		Composition: Composition{
			X: defaultX,
			Z: defaultZ,
		},
		Splice: Splice{
			Temperature:    defaultSpliceT,
			MinTemperature: defaultMinSpliceT,
			MaxTemperature: defaultMaxSpliceT,
			Sentinel:       defaultSentinel,
			ProgressEvery:  defaultProgressEvery,
		},
		Oracle: Oracle{
			Binary:         defaultOracleBinary,
			Dir:            defaultOracleDir,
			BuildCommand:   defaultBuildCommand,
			TimeoutSeconds: defaultOracleTimeout,
		},
		Cache: Cache{
			Enabled: false,
			Path:    defaultCachePath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
