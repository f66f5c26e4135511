// Package config loads colkit configuration from YAML.
//
// A single Config carries every section: map and batch defaults, display
// limits, the sampling seed, cell loading, logging and tracing. Missing
// sections keep the values from Default.
//
//	# colkit.yaml
//	map:
//	  batch_size: 32
//	  workers: 4
//	cells:
//	  root: ${DATA_ROOT}
//	logging:
//	  level: info
//
// References of the form ${VAR_NAME} are replaced with the environment value
// before parsing; unset variables become empty strings.
package config
