// Package config manages the climateir configuration file.
//
// The file is YAML and lists the air conditioners to drive, each with its
// handset model, the sink its pulse programs go to and an optional minimum
// interval between transmissions. It also carries the HTTP server and logging
// settings.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/climateir/config.yaml or $HOME/.config/climateir/config.yaml
//   - macOS: $HOME/.config/climateir/config.yaml
//   - Windows: %LOCALAPPDATA%\climateir\config.yaml
//
// # Example
//
//	version: 1
//	devices:
//	  bedroom:
//	    model: CKP
//	    min_interval: 2s
//	    sink:
//	      type: mqtt
//	      mqtt:
//	        broker: tcp://localhost:1883
//	server:
//	  listen: ":8080"
//	  advertise: true
//
// Toggle-power models (CKP) cannot be told "off", only "toggle". Their last
// known state is kept in power_on and rewritten by SetPowerState, so the
// state survives restarts. Saves are atomic (temporary file and rename).
package config
